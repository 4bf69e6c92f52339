package scene

import (
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/lights"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// NewSubsurfaceScene creates the default scene: three translucent spheres using
// measured profiles, a glass ball and a checkerboard floor
func NewSubsurfaceScene(opts Options) *Scene {
	s := New(opts.Config)
	s.Camera = geometry.NewCamera(opts.CameraConfig(geometry.CameraConfig{
		Position:      core.NewVec3(0, 8, 32),
		ViewDirection: core.NewVec3(0, -0.2, -1),
		Up:            core.NewVec3(0, 1, 0),
		VerticalFOV:   degrees(40),
		FocalDistance: 32,
	}))

	ground := s.addGroundQuad(core.NewVec3(0, 0, 0), 80, material.NewDiffuse(core.Splat(0.6)))
	ground.ColorShader = material.NewCheckerboardColorShader(8, 8)

	for i, name := range []string{"marble", "skin", "ketchup"} {
		ball := s.addSphere(name, core.NewVec3(float64(i-1)*10, 4, 0), 4, glossy(core.Splat(1), 0.2, 0.5))
		ball.SetSubsurface(builtinProfile(name))
	}

	glassBall := s.addSphere("glass", core.NewVec3(5, 2.5, 9), 2.5, glass())
	glassBall.IndexOfRefraction = 1.5

	s.AddLight(lights.NewPointLight(core.NewVec3(-6, 20, 18), core.Splat(6)))
	s.AddLight(lights.NewDirectionalLight(core.NewVec3(1, -1, -1), core.Splat(0.4)))
	return s
}

// NewCornellScene creates a Cornell box built from triangles holding a potato
// sphere and a glass sphere, lit from just below the ceiling
func NewCornellScene(opts Options) *Scene {
	s := New(opts.Config)
	s.Camera = geometry.NewCamera(opts.CameraConfig(geometry.CameraConfig{
		Position:      core.NewVec3(0, 5, -19),
		ViewDirection: core.NewVec3(0, 0, 1),
		Up:            core.NewVec3(0, 1, 0),
		VerticalFOV:   degrees(38),
		FocalDistance: 19,
	}))

	white := material.NewDiffuse(core.Splat(0.73))
	red := material.NewDiffuse(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewDiffuse(core.NewVec3(0.12, 0.45, 0.15))

	// Box corners, open toward the camera at z=-5
	p := func(x, y, z float64) core.Vec3 { return core.NewVec3(x*5, y*10, z*5) }
	wall := func(name string, mat *material.Material, corners ...core.Vec3) {
		s.addMesh(name, corners, []int{0, 1, 2, 0, 2, 3}, mat, nil)
	}
	wall("floor", white, p(-1, 0, -1), p(-1, 0, 1), p(1, 0, 1), p(1, 0, -1))
	wall("ceiling", white, p(-1, 1, -1), p(1, 1, -1), p(1, 1, 1), p(-1, 1, 1))
	wall("back", white, p(-1, 0, 1), p(-1, 1, 1), p(1, 1, 1), p(1, 0, 1))
	wall("left", red, p(-1, 0, -1), p(-1, 1, -1), p(-1, 1, 1), p(-1, 0, 1))
	wall("right", green, p(1, 0, -1), p(1, 0, 1), p(1, 1, 1), p(1, 1, -1))

	potato := s.addSphere("potato", core.NewVec3(-2.2, 2, 1.5), 2, glossy(core.Splat(1), 0.1, 0.3))
	potato.SetSubsurface(builtinProfile("potato"))

	s.addSphere("glass", core.NewVec3(2.3, 1.8, -1), 1.8, glass())

	s.AddLight(lights.NewPointLight(core.NewVec3(0, 9.5, 0), core.Splat(3)))
	return s
}
