package scene

import (
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/lights"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// NewTextureScene creates a scene demonstrating the shader hooks: an image
// texture on the floor, a glass shaded sphere and a checkerboard cutout sphere
func NewTextureScene(opts Options) *Scene {
	s := New(opts.Config)
	s.Camera = geometry.NewCamera(opts.CameraConfig(geometry.CameraConfig{
		Position:      core.NewVec3(0, 2, 10),
		ViewDirection: core.NewVec3(0, -2, -10),
		Up:            core.NewVec3(0, 1, 0),
		VerticalFOV:   degrees(50),
		FocalDistance: 10,
	}))

	floor := s.addGroundQuad(core.NewVec3(0, 0, 0), 12, material.NewDiffuse(core.Splat(1)))
	checkerboard := material.NewCheckerboardTexture(256, 256, 32,
		core.NewVec3(0.9, 0.9, 0.9),
		core.NewVec3(0.2, 0.2, 0.8),
	)
	floor.ColorShader = material.NewTextureColorShader(checkerboard)

	glassBall := s.addSphere("glass", core.NewVec3(-1.5, 1, 0), 1, material.NewDiffuse(core.Splat(1)))
	glassBall.ColorShader = material.GlassColorShader{}

	cutout := s.addSphere("cutout", core.NewVec3(1.5, 1, 0), 1, glossy(core.NewVec3(0.9, 0.6, 0.2), 0.4, 0.6))
	cutout.ColorShader = material.NewCheckerboardColorShader(12, 6)
	cutout.IntersectionShader = material.NewCheckerboardIntersectionShader(12, 6)

	s.AddLight(lights.NewPointLight(core.NewVec3(0, 6, 6), core.Splat(4)))
	return s
}
