package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// MeshOptions contains optional per-vertex data for triangle mesh creation
type MeshOptions struct {
	Normals   []core.Vec3          // Optional per-vertex normals, normalized on use
	Materials []*material.Material // Optional per-vertex materials
	Rotation  *core.Vec3           // Optional Euler rotation (radians) applied to vertices and normals
	Center    *core.Vec3           // Optional center point for rotation
}

// NewTriangleMesh creates an object from indexed triangles.
// vertices: array of 3D points
// faces: array of triangle indices (each group of 3 indices forms a triangle)
// mat: material shared by every vertex unless options.Materials is set
// options: optional parameters (can be nil for basic mesh)
//
// Without per-vertex normals each triangle uses its face normal, which assumes
// clockwise winding. Texture coordinates alternate between the two halves of
// the unit square so consecutive triangle pairs map onto quads.
func NewTriangleMesh(name string, vertices []core.Vec3, faces []int, mat *material.Material, options *MeshOptions) (*Object, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face indices must be a multiple of 3, got %d", len(faces))
	}
	if options == nil {
		options = &MeshOptions{}
	}
	if options.Normals != nil && len(options.Normals) != len(vertices) {
		return nil, fmt.Errorf("got %d normals for %d vertices", len(options.Normals), len(vertices))
	}
	if options.Materials != nil && len(options.Materials) != len(vertices) {
		return nil, fmt.Errorf("got %d materials for %d vertices", len(options.Materials), len(vertices))
	}

	positions := vertices
	normals := options.Normals
	if options.Rotation != nil {
		center := core.Vec3{}
		if options.Center != nil {
			center = *options.Center
		}
		positions = make([]core.Vec3, len(vertices))
		for i, vertex := range vertices {
			positions[i] = rotateVertex(vertex.Subtract(center), *options.Rotation).Add(center)
		}
		if normals != nil {
			normals = make([]core.Vec3, len(options.Normals))
			for i, n := range options.Normals {
				normals[i] = rotateVertex(n, *options.Rotation)
			}
		}
	}

	object := NewObject(name)
	for i := 0; i < len(faces); i += 3 {
		idx := [3]int{faces[i], faces[i+1], faces[i+2]}
		for _, j := range idx {
			if j < 0 || j >= len(positions) {
				return nil, fmt.Errorf("face %d: vertex index %d out of bounds", i/3, j)
			}
		}

		v := [3]core.Vec3{positions[idx[0]], positions[idx[1]], positions[idx[2]]}
		var n [3]core.Vec3
		if normals != nil {
			for k, j := range idx {
				n[k] = normals[j].Normalize()
			}
		} else {
			face := FaceNormal(v[0], v[1], v[2])
			n = [3]core.Vec3{face, face, face}
		}

		m := [3]*material.Material{mat, mat, mat}
		if options.Materials != nil {
			for k, j := range idx {
				m[k] = options.Materials[j]
			}
		}

		object.Add(NewTriangle(v, n, m))
	}

	object.QuadTextureMap()
	return object, nil
}

// rotateVertex applies rotations around X, then Y, then Z
func rotateVertex(vertex, rotation core.Vec3) core.Vec3 {
	// Rotation around X axis
	if rotation.X != 0 {
		cos := math.Cos(rotation.X)
		sin := math.Sin(rotation.X)
		y := vertex.Y*cos - vertex.Z*sin
		z := vertex.Y*sin + vertex.Z*cos
		vertex = core.NewVec3(vertex.X, y, z)
	}

	// Rotation around Y axis
	if rotation.Y != 0 {
		cos := math.Cos(rotation.Y)
		sin := math.Sin(rotation.Y)
		x := vertex.X*cos + vertex.Z*sin
		z := -vertex.X*sin + vertex.Z*cos
		vertex = core.NewVec3(x, vertex.Y, z)
	}

	// Rotation around Z axis
	if rotation.Z != 0 {
		cos := math.Cos(rotation.Z)
		sin := math.Sin(rotation.Z)
		x := vertex.X*cos - vertex.Y*sin
		y := vertex.X*sin + vertex.Y*cos
		vertex = core.NewVec3(x, y, vertex.Z)
	}

	return vertex
}
