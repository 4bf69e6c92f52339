package scene

import (
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/lights"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// Convert from OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a scene with a grid of glossy spheres. Hue varies
// along X and chroma along Z, which makes the tree build a useful benchmark.
func NewSphereGridScene(opts Options) *Scene {
	s := New(opts.Config)
	s.Camera = geometry.NewCamera(opts.CameraConfig(geometry.CameraConfig{
		Position:      core.NewVec3(4.5, 6, 18),
		ViewDirection: core.NewVec3(0, 0.8, 4.5).Subtract(core.NewVec3(0, 6, 18)),
		Up:            core.NewVec3(0, 1, 0),
		VerticalFOV:   degrees(40),
		FocalDistance: 14,
	}))

	s.addGroundQuad(core.NewVec3(4.5, 0, 4.5), 60, material.NewDiffuse(core.Splat(0.5)))

	gridSize := 20

	// Fit the grid into a 9x9 area regardless of its resolution
	targetArea := 9.0
	spacing := targetArea / float64(gridSize-1)
	sphereRadius := math.Max(0.02, math.Min(0.35, spacing*0.35))

	baseLightness := 0.65
	minChroma := 0.05
	maxChroma := 0.25

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5

			hue := (float64(i) / float64(gridSize-1)) * 360.0
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)

			// Vary the highlight slightly across the grid
			specular := 0.3 + 0.2*float64((i+j)%3)/2.0
			mat := glossy(oklchToRGB(lightness, chroma, hue), specular, 0.6)

			s.addSphere("sphere", core.NewVec3(x, sphereRadius, z), sphereRadius, mat)
		}
	}

	s.AddLight(lights.NewPointLight(core.NewVec3(20, 25, 20), core.Splat(20)))
	s.AddLight(lights.NewDirectionalLight(core.NewVec3(-0.3, -1, -0.5), core.Splat(0.5)))
	return s
}
