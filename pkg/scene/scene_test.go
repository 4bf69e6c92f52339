package scene

import (
	"errors"
	"testing"

	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/lights"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeSpheres builds spheres at z = 0, -5 and -10 along the -Z axis
func threeSpheres(t *testing.T) *Scene {
	t.Helper()
	s := New(core.TracerConfig{})
	for i, name := range []string{"near", "middle", "far"} {
		s.addSphere(name, core.NewVec3(0, 0, float64(-5*i)), 1, material.NewDiffuse(core.Splat(1)))
	}
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 5, 0), core.Splat(1)))
	s.Build()
	return s
}

var alongZ = core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

func TestScene_AddObjectIndexes(t *testing.T) {
	s := threeSpheres(t)

	require.Len(t, s.Objects, 3)
	require.Equal(t, 3, s.PrimitiveCount())
	assert.Len(t, s.Materials, 3)
	for i, p := range s.Primitives {
		assert.Equal(t, i, p.ObjectIndex())
	}
	assert.True(t, s.Built())
	assert.Equal(t, core.DefaultTracerConfig(), s.Config, "zero config takes the defaults")
}

func TestScene_ClosestIntersection(t *testing.T) {
	s := threeSpheres(t)

	hit, object, ok := s.ClosestIntersection(alongZ)
	require.True(t, ok)
	assert.Equal(t, "near", object.Name)
	assert.InDelta(t, 4.0, hit.T, 1e-9)

	linearHit, linearObject, ok := s.LinearClosestIntersection(alongZ)
	require.True(t, ok)
	assert.Same(t, object, linearObject)
	assert.InDelta(t, hit.T, linearHit.T, 1e-12)

	stats, ok := s.TreeStats()
	assert.True(t, ok)
	assert.Equal(t, 3, stats.Primitives)
}

func TestScene_UnbuiltQueries(t *testing.T) {
	s := New(core.DefaultTracerConfig())
	s.addSphere("ball", core.Vec3{}, 1, material.NewDiffuse(core.Splat(1)))

	_, _, ok := s.ClosestIntersection(alongZ)
	assert.False(t, ok)
	assert.Equal(t, core.Splat(1), s.TraceShadow(alongZ, 100))
	assert.False(t, s.Built())
}

func TestScene_LinearScan(t *testing.T) {
	s := threeSpheres(t)
	s.UseLinearScan(true)
	assert.False(t, s.Built())
	s.Build()

	_, object, ok := s.ClosestIntersection(alongZ)
	require.True(t, ok)
	assert.Equal(t, "near", object.Name)

	_, ok = s.TreeStats()
	assert.False(t, ok)
}

func TestScene_RemoveObject(t *testing.T) {
	s := threeSpheres(t)

	require.NoError(t, s.RemoveObject(0))

	require.Len(t, s.Objects, 2)
	assert.Equal(t, 2, s.PrimitiveCount())
	for i, p := range s.Primitives {
		assert.Equal(t, i, p.ObjectIndex(), "back-references are re-indexed")
		assert.Same(t, s.Objects[i].Primitives[0], p)
	}

	hit, object, ok := s.ClosestIntersection(alongZ)
	require.True(t, ok, "tree was rebuilt")
	assert.Equal(t, "middle", object.Name)
	assert.InDelta(t, 9.0, hit.T, 1e-9)

	err := s.RemoveObject(2)
	assert.True(t, errors.Is(err, ErrObjectIndex))
}

func TestScene_SetObjectShaders(t *testing.T) {
	s := threeSpheres(t)

	cutout := material.NewCheckerboardIntersectionShader(4, 4)
	require.NoError(t, s.SetObjectShaders(1, material.GlassColorShader{}, cutout))
	assert.Equal(t, material.GlassColorShader{}, s.Objects[1].ColorShader)
	assert.Same(t, cutout, s.Objects[1].IntersectionShader)

	assert.ErrorIs(t, s.SetObjectShaders(-1, nil, nil), ErrObjectIndex)
}

func TestScene_SetObjectSubsurface(t *testing.T) {
	s := threeSpheres(t)
	profile := bssrdf.NewProfile(core.Splat(0.01), core.Splat(1), 0, 1.3)

	require.NoError(t, s.SetObjectSubsurface(2, profile))
	hit, _, ok := s.ClosestIntersection(core.NewRay(core.NewVec3(0, 0, -20), core.NewVec3(0, 0, 1)))
	require.True(t, ok)
	assert.Same(t, profile, hit.Material.Subsurface)

	sphere := s.Objects[0].Primitives[0].(*geometry.Sphere)
	assert.Nil(t, sphere.Material.Subsurface)

	assert.ErrorIs(t, s.SetObjectSubsurface(3, profile), ErrObjectIndex)
}

func TestScene_RemoveLight(t *testing.T) {
	s := threeSpheres(t)
	s.AddLight(lights.NewDirectionalLight(core.NewVec3(0, -1, 0), core.Splat(1)))
	s.Build()
	require.Equal(t, 2, s.LightSampler.Count())

	require.NoError(t, s.RemoveLight(0))
	assert.Equal(t, 1, s.LightSampler.Count())
	assert.Equal(t, lights.LightTypeDirectional, s.Lights[0].Type())

	assert.ErrorIs(t, s.RemoveLight(1), ErrLightIndex)
}

func TestScene_Bounds(t *testing.T) {
	s := threeSpheres(t)
	bounds := s.Bounds()
	assert.Equal(t, core.NewVec3(-1, -1, -11), bounds.Min)
	assert.Equal(t, core.NewVec3(1, 1, 1), bounds.Max)

	assert.Equal(t, core.AABB{}, New(core.TracerConfig{}).Bounds())
}
