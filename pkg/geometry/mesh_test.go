package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadVertices() []core.Vec3 {
	return []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}
}

func TestNewTriangleMesh_FaceNormalsAndQuadUV(t *testing.T) {
	mat := material.NewDiffuse(core.Splat(1))
	object, err := NewTriangleMesh("quad", quadVertices(), []int{0, 1, 2, 0, 2, 3}, mat, nil)
	require.NoError(t, err)
	require.Len(t, object.Primitives, 2)

	first := object.Primitives[0].(*Triangle)
	second := object.Primitives[1].(*Triangle)

	assert.Equal(t, FaceNormal(first.V[0], first.V[1], first.V[2]), first.N[0])
	assert.Equal(t, [3]core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, first.UV)
	assert.Equal(t, [3]core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, second.UV)
	assert.Same(t, mat, first.M[2])
	assert.Equal(t, DefaultIndexOfRefraction, object.IndexOfRefraction)
}

func TestNewTriangleMesh_PerVertexData(t *testing.T) {
	red := material.NewDiffuse(core.NewVec3(1, 0, 0))
	blue := material.NewDiffuse(core.NewVec3(0, 0, 1))
	options := &MeshOptions{
		Normals: []core.Vec3{
			core.NewVec3(0, 0, 2), core.NewVec3(0, 0, 2), core.NewVec3(0, 0, 2), core.NewVec3(0, 0, 2),
		},
		Materials: []*material.Material{red, red, blue, blue},
	}

	object, err := NewTriangleMesh("quad", quadVertices(), []int{0, 1, 2}, nil, options)
	require.NoError(t, err)

	tri := object.Primitives[0].(*Triangle)
	assert.Equal(t, core.NewVec3(0, 0, 1), tri.N[1], "per-vertex normals are normalized")
	assert.Same(t, red, tri.M[0])
	assert.Same(t, blue, tri.M[2])
}

func TestNewTriangleMesh_Rotation(t *testing.T) {
	center := core.NewVec3(0.5, 0.5, 0)
	options := &MeshOptions{Rotation: &core.Vec3{Y: math.Pi}, Center: &center}

	object, err := NewTriangleMesh("quad", quadVertices(), []int{0, 1, 2}, nil, options)
	require.NoError(t, err)

	tri := object.Primitives[0].(*Triangle)
	assert.InDelta(t, 1.0, tri.V[0].X, 1e-12)
	assert.InDelta(t, 0.0, tri.V[1].X, 1e-12)
}

func TestNewTriangleMesh_Errors(t *testing.T) {
	tests := []struct {
		name    string
		faces   []int
		options *MeshOptions
	}{
		{"partial face", []int{0, 1}, nil},
		{"index out of range", []int{0, 1, 4}, nil},
		{"negative index", []int{0, -1, 2}, nil},
		{"normal count", []int{0, 1, 2}, &MeshOptions{Normals: []core.Vec3{{}}}},
		{"material count", []int{0, 1, 2}, &MeshOptions{Materials: []*material.Material{nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTriangleMesh("bad", quadVertices(), tt.faces, nil, tt.options)
			assert.Error(t, err)
		})
	}
}
