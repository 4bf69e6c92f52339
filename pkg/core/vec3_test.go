package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func assertVecNear(t *testing.T, expected, actual Vec3, delta float64) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, delta, "X component of %v", actual)
	assert.InDelta(t, expected.Y, actual.Y, delta, "Y component of %v", actual)
	assert.InDelta(t, expected.Z, actual.Z, delta, "Z component of %v", actual)
}

func TestVec3_Reflect(t *testing.T) {
	tests := []struct {
		name     string
		vector   Vec3
		normal   Vec3
		expected Vec3
	}{
		{"along normal", NewVec3(0, 1, 0), NewVec3(0, 1, 0), NewVec3(0, 1, 0)},
		{"45 degrees", NewVec3(1, 1, 0), NewVec3(0, 1, 0), NewVec3(-1, 1, 0)},
		{"tangent", NewVec3(0, 0, 1), NewVec3(0, 1, 0), NewVec3(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVecNear(t, tt.expected, tt.vector.Reflect(tt.normal), tolerance)
		})
	}
}

func TestVec3_Refract(t *testing.T) {
	up := NewVec3(0, 1, 0)

	t.Run("normal incidence passes straight through", func(t *testing.T) {
		dir, ok := up.Refract(up, 1/1.5)
		require.True(t, ok)
		assertVecNear(t, NewVec3(0, -1, 0), dir.Negate(), tolerance)
	})

	t.Run("oblique entry obeys snell", func(t *testing.T) {
		view := NewVec3(1, 1, 0).Normalize()
		dir, ok := view.Refract(up, 1/1.5)
		require.True(t, ok)

		transmitted := dir.Negate()
		sinI := view.X
		assert.InDelta(t, 1.0, transmitted.Length(), 1e-9)
		assert.InDelta(t, -sinI/1.5, transmitted.X, 1e-9)
		assert.Less(t, transmitted.Y, 0.0)
	})

	t.Run("viewer behind the normal inverts the ratio", func(t *testing.T) {
		view := NewVec3(1, -1, 0).Normalize()
		dir, ok := view.Refract(up, 1.5)
		require.True(t, ok)

		transmitted := dir.Negate()
		assert.InDelta(t, -view.X/1.5, transmitted.X, 1e-9)
		assert.Greater(t, transmitted.Y, 0.0)
	})

	t.Run("total internal reflection", func(t *testing.T) {
		view := NewVec3(1, 0.2, 0).Normalize()
		_, ok := view.Refract(up, 1.5)
		assert.False(t, ok)
	})
}

func TestVec3_NormalSpace(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 1, 0),
		NewVec3(1, 0, 0),
		NewVec3(0, 0, -1),
		NewVec3(1, 2, 3).Normalize(),
		NewVec3(-3, 0.5, 0.1).Normalize(),
	}

	for _, n := range normals {
		tangent, bitangent := n.NormalSpace()
		assert.InDelta(t, 1.0, tangent.Length(), 1e-9, "tangent of %v", n)
		assert.InDelta(t, 1.0, bitangent.Length(), 1e-9, "bitangent of %v", n)
		assert.InDelta(t, 0.0, tangent.Dot(n), 1e-9)
		assert.InDelta(t, 0.0, bitangent.Dot(n), 1e-9)
		assert.InDelta(t, 0.0, tangent.Dot(bitangent), 1e-9)
	}
}

func TestVec3_GetSet(t *testing.T) {
	v := NewVec3(1, 2, 3)
	for axis, expected := range []float64{1, 2, 3} {
		assert.Equal(t, expected, v.Get(axis))
	}

	v.Set(0, 7)
	v.Set(1, 8)
	v.Set(2, 9)
	assert.Equal(t, NewVec3(7, 8, 9), v)

	v.Set(5, 100)
	assert.Equal(t, NewVec3(7, 8, 9), v, "out of range axis must be ignored")
}

func TestVec3_Normalize(t *testing.T) {
	assert.Equal(t, Vec3{}, Vec3{}.Normalize(), "zero vector must stay finite")
	assertVecNear(t, NewVec3(0.6, 0.8, 0), NewVec3(3, 4, 0).Normalize(), tolerance)
}

func TestVec3_Luminance(t *testing.T) {
	assert.InDelta(t, 1.0, Splat(1).Luminance(), 1e-12)
	assert.InDelta(t, 0.7152, NewVec3(0, 1, 0).Luminance(), 1e-12)
}

func TestVec3_ComponentHelpers(t *testing.T) {
	v := NewVec3(-1, 4, 9)
	assert.Equal(t, 9.0, v.MaxComponent())
	assert.Equal(t, NewVec3(0, 1, 1), v.Clamp(0, 1))
	assertVecNear(t, NewVec3(1, 2, 3), NewVec3(1, 4, 9).Sqrt(), tolerance)
	assertVecNear(t, NewVec3(1, math.E, 1/math.E), NewVec3(0, 1, -1).Exp(), tolerance)
	assertVecNear(t, NewVec3(0.5, 2, 3), NewVec3(1, 4, 9).DivideVec(NewVec3(2, 2, 3)), tolerance)
}

func TestRay_InverseDirection(t *testing.T) {
	ray := NewRay(Vec3{}, NewVec3(2, -4, 0))
	inv := ray.InverseDirection()
	assert.Equal(t, 0.5, inv.X)
	assert.Equal(t, -0.25, inv.Y)
	assert.True(t, math.IsInf(inv.Z, 1))
	assertVecNear(t, NewVec3(4, -8, 0), ray.At(2), tolerance)
}
