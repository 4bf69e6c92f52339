package geometry

import (
	"testing"

	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitTriangle() *Triangle {
	red := material.NewDiffuse(core.NewVec3(1, 0, 0))
	green := material.NewDiffuse(core.NewVec3(0, 1, 0))
	blue := material.NewDiffuse(core.NewVec3(0, 0, 1))
	tri := NewTriangle(
		[3]core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)},
		[3]core.Vec3{core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1)},
		[3]*material.Material{red, green, blue},
	)
	tri.UV = [3]core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	return tri
}

func TestTriangle_Intersect_HandComputed(t *testing.T) {
	tri := unitTriangle()
	ray := core.NewRay(core.NewVec3(0.2, 0.3, 1), core.NewVec3(0, 0, -1))

	hit, ok := tri.Intersect(ray, testTolerance, nil)
	require.True(t, ok)

	// With UVs equal to the barycentric axes, the interpolated UV is (u, v)
	assert.InDelta(t, 1.0, hit.T, 1e-12)
	assert.InDelta(t, 0.2, hit.UV.X, 1e-12)
	assert.InDelta(t, 0.3, hit.UV.Y, 1e-12)
	assert.InDelta(t, 0.0, hit.Position.Subtract(core.NewVec3(0.2, 0.3, 0)).Length(), 1e-12)

	// Material weights are (1-u-v, u, v)
	assert.InDelta(t, 0.5, hit.Material.Diffuse.X, 1e-12)
	assert.InDelta(t, 0.2, hit.Material.Diffuse.Y, 1e-12)
	assert.InDelta(t, 0.3, hit.Material.Diffuse.Z, 1e-12)
}

func TestTriangle_Intersect_Misses(t *testing.T) {
	tri := unitTriangle()
	down := core.NewVec3(0, 0, -1)

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{"u below zero", core.NewRay(core.NewVec3(-0.1, 0.3, 1), down)},
		{"v below zero", core.NewRay(core.NewVec3(0.2, -0.1, 1), down)},
		{"u plus v above one", core.NewRay(core.NewVec3(0.6, 0.6, 1), down)},
		{"parallel to plane", core.NewRay(core.NewVec3(-1, 0.2, 0), core.NewVec3(1, 0, 0))},
		{"behind origin", core.NewRay(core.NewVec3(0.2, 0.3, -1), down)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tri.Intersect(tt.ray, testTolerance, nil)
			assert.False(t, ok)
		})
	}
}

func TestTriangle_Intersect_BackFaceAndVeto(t *testing.T) {
	tri := unitTriangle()

	up := core.NewRay(core.NewVec3(0.2, 0.3, -1), core.NewVec3(0, 0, 1))
	hit, ok := tri.Intersect(up, testTolerance, nil)
	require.True(t, ok, "triangles are two sided")
	assert.InDelta(t, 1.0, hit.T, 1e-12)

	_, ok = tri.Intersect(up, testTolerance, rejectAll{})
	assert.False(t, ok)
}

func TestTriangle_InterpolatedNormalIsUnit(t *testing.T) {
	mat := material.NewDiffuse(core.Splat(1))
	tri := NewTriangle(
		[3]core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)},
		[3]core.Vec3{core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 1).Normalize(), core.NewVec3(0, 1, 1).Normalize()},
		[3]*material.Material{mat, mat, mat},
	)
	hit, ok := tri.Intersect(core.NewRay(core.NewVec3(0.3, 0.3, 1), core.NewVec3(0, 0, -1)), testTolerance, nil)
	require.True(t, ok)
	assert.InDelta(t, 1.0, hit.Normal.Length(), 1e-12)
	assert.Greater(t, hit.Normal.X, 0.0)
	assert.Greater(t, hit.Normal.Y, 0.0)
}

func TestTriangle_BoundsMidpoint(t *testing.T) {
	tri := unitTriangle()
	assert.Equal(t, core.NewVec3(0, 0, 0), tri.Bounds().Min)
	assert.Equal(t, core.NewVec3(1, 1, 0), tri.Bounds().Max)
	assert.InDelta(t, 0.0, tri.Midpoint().Subtract(core.NewVec3(1.0/3, 1.0/3, 0)).Length(), 1e-12)
}

func TestFaceNormal_ClockwiseWinding(t *testing.T) {
	n := FaceNormal(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0))
	assert.Equal(t, core.NewVec3(0, 0, 1), n)

	flat := NewFlatTriangle(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), material.NewDiffuse(core.Splat(1)))
	assert.Equal(t, core.NewVec3(0, 0, -1), flat.N[0])
	assert.Same(t, flat.M[0], flat.M[2])
}

func TestTriangle_SetSubsurface(t *testing.T) {
	tri := unitTriangle()
	profile := bssrdf.NewProfile(core.Splat(0.01), core.Splat(1), 0, 1.3)
	tri.SetSubsurface(profile)
	for _, m := range tri.M {
		assert.Same(t, profile, m.Subsurface)
	}

	hit, ok := tri.Intersect(core.NewRay(core.NewVec3(0.2, 0.3, 1), core.NewVec3(0, 0, -1)), testTolerance, nil)
	require.True(t, ok)
	assert.Same(t, profile, hit.Material.Subsurface)
}
