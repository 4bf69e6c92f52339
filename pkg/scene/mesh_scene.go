package scene

import (
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/lights"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// NewMeshScene creates a scene showcasing triangle mesh geometry: a checkerboard
// cutout box, a glass pyramid and a subsurface icosahedron
func NewMeshScene(opts Options) *Scene {
	s := New(opts.Config)
	s.Camera = geometry.NewCamera(opts.CameraConfig(geometry.CameraConfig{
		Position:      core.NewVec3(0, 2, 6),
		ViewDirection: core.NewVec3(0, -1, -6),
		Up:            core.NewVec3(0, 1, 0),
		VerticalFOV:   degrees(45),
		FocalDistance: 6,
	}))

	s.addGroundQuad(core.NewVec3(0, 0, 0), 40, material.NewDiffuse(core.Splat(0.7)))

	box := s.addBox(core.NewVec3(-2, 0.5, 0), core.NewVec3(1, 1, 1), core.NewVec3(0, math.Pi/6, 0),
		glossy(core.NewVec3(0.8, 0.2, 0.2), 0.3, 0.4))
	box.IntersectionShader = material.NewCheckerboardIntersectionShader(4, 4)

	s.addPyramid(core.NewVec3(0, 1, 0), 1.5, 2.0, core.NewVec3(0, math.Pi/4, 0), glass())

	ico := s.addIcosahedron(core.NewVec3(2, 0.8, 0), 0.8, core.NewVec3(0, math.Pi/3, 0),
		glossy(core.Splat(1), 0.1, 0.3))
	ico.SphericalTextureMap()
	ico.SetSubsurface(builtinProfile("apple"))

	s.AddLight(lights.NewPointLight(core.NewVec3(2, 6, 3), core.NewVec3(3, 2.8, 2.5)))
	s.AddLight(lights.NewPointLight(core.NewVec3(-3, 4, 2), core.NewVec3(1.2, 1.4, 1.6)))
	return s
}

// addBox adds a triangle mesh box
func (s *Scene) addBox(center, size, rotation core.Vec3, mat *material.Material) *geometry.Object {
	halfSize := size.Multiply(0.5)
	vertices := []core.Vec3{
		center.Add(core.NewVec3(-halfSize.X, -halfSize.Y, -halfSize.Z)), // 0: left-bottom-back
		center.Add(core.NewVec3(+halfSize.X, -halfSize.Y, -halfSize.Z)), // 1: right-bottom-back
		center.Add(core.NewVec3(+halfSize.X, +halfSize.Y, -halfSize.Z)), // 2: right-top-back
		center.Add(core.NewVec3(-halfSize.X, +halfSize.Y, -halfSize.Z)), // 3: left-top-back
		center.Add(core.NewVec3(-halfSize.X, -halfSize.Y, +halfSize.Z)), // 4: left-bottom-front
		center.Add(core.NewVec3(+halfSize.X, -halfSize.Y, +halfSize.Z)), // 5: right-bottom-front
		center.Add(core.NewVec3(+halfSize.X, +halfSize.Y, +halfSize.Z)), // 6: right-top-front
		center.Add(core.NewVec3(-halfSize.X, +halfSize.Y, +halfSize.Z)), // 7: left-top-front
	}

	// Two triangles per face, ordered so each pair maps onto one texture quad
	faces := []int{
		0, 1, 2, 0, 2, 3, // back (Z-)
		4, 6, 5, 4, 7, 6, // front (Z+)
		0, 3, 7, 0, 7, 4, // left (X-)
		1, 5, 6, 1, 6, 2, // right (X+)
		0, 4, 5, 0, 5, 1, // bottom (Y-)
		3, 2, 6, 3, 6, 7, // top (Y+)
	}

	return s.addMesh("box", vertices, faces, mat, &geometry.MeshOptions{Rotation: &rotation, Center: &center})
}

// addPyramid adds a square-based triangle mesh pyramid
func (s *Scene) addPyramid(center core.Vec3, baseSize, height float64, rotation core.Vec3, mat *material.Material) *geometry.Object {
	halfBase := baseSize * 0.5
	halfHeight := height * 0.5

	vertices := []core.Vec3{
		center.Add(core.NewVec3(-halfBase, -halfHeight, -halfBase)), // 0: left-back
		center.Add(core.NewVec3(+halfBase, -halfHeight, -halfBase)), // 1: right-back
		center.Add(core.NewVec3(+halfBase, -halfHeight, +halfBase)), // 2: right-front
		center.Add(core.NewVec3(-halfBase, -halfHeight, +halfBase)), // 3: left-front
		center.Add(core.NewVec3(0, +halfHeight, 0)),                 // 4: apex
	}

	faces := []int{
		0, 2, 1, 0, 3, 2, // base
		0, 1, 4, // back
		1, 2, 4, // right
		2, 3, 4, // front
		3, 0, 4, // left
	}

	return s.addMesh("pyramid", vertices, faces, mat, &geometry.MeshOptions{Rotation: &rotation, Center: &center})
}

// addIcosahedron adds a 20-sided triangle mesh
func (s *Scene) addIcosahedron(center core.Vec3, radius float64, rotation core.Vec3, mat *material.Material) *geometry.Object {
	phi := (1.0 + math.Sqrt(5)) / 2.0
	scale := radius / math.Sqrt(1+phi*phi)

	base := []core.Vec3{
		{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
		{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
		{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
	}
	vertices := make([]core.Vec3, len(base))
	for i, v := range base {
		vertices[i] = center.Add(v.Multiply(scale))
	}

	faces := []int{
		// 5 faces around point 0
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		// 5 adjacent faces
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		// 5 faces around point 3
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		// 5 adjacent faces
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	return s.addMesh("icosahedron", vertices, faces, mat, &geometry.MeshOptions{Rotation: &rotation, Center: &center})
}
