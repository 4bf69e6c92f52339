package material

import (
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
)

// ColorShader edits the material of a hit before lighting is computed
type ColorShader interface {
	Shade(hit *HitData)
}

// IntersectionShader decides whether an intersection is kept, allowing cutouts
type IntersectionShader interface {
	Accept(hit *HitData) bool
}

// checker reports whether uv falls on an even cell of a sizeU x sizeV checkerboard
func checker(uv core.Vec2, sizeU, sizeV float64) bool {
	return int(math.Floor(uv.X*sizeU)+math.Floor(uv.Y*sizeV))%2 == 0
}

// CheckerboardColorShader alternates between two diffuse colors in UV space
type CheckerboardColorShader struct {
	SizeU, SizeV float64
	Even, Odd    core.Vec3
}

// NewCheckerboardColorShader creates the classic light/dark grey checkerboard
func NewCheckerboardColorShader(sizeU, sizeV float64) *CheckerboardColorShader {
	return &CheckerboardColorShader{
		SizeU: sizeU,
		SizeV: sizeV,
		Even:  core.Splat(0.7),
		Odd:   core.Splat(0.1),
	}
}

// Shade replaces the diffuse color with the checker cell color
func (c *CheckerboardColorShader) Shade(hit *HitData) {
	if checker(hit.UV, c.SizeU, c.SizeV) {
		hit.Material.Diffuse = c.Even
	} else {
		hit.Material.Diffuse = c.Odd
	}
}

// CheckerboardIntersectionShader keeps only the even cells of a checkerboard
type CheckerboardIntersectionShader struct {
	SizeU, SizeV float64
}

// NewCheckerboardIntersectionShader creates a checkerboard cutout
func NewCheckerboardIntersectionShader(sizeU, sizeV float64) *CheckerboardIntersectionShader {
	return &CheckerboardIntersectionShader{SizeU: sizeU, SizeV: sizeV}
}

// Accept keeps the hit when it lands on an even cell
func (c *CheckerboardIntersectionShader) Accept(hit *HitData) bool {
	return checker(hit.UV, c.SizeU, c.SizeV)
}

// GlassColorShader overrides the material with a fixed tinted glass
type GlassColorShader struct{}

// Shade applies the glass parameters
func (GlassColorShader) Shade(hit *HitData) {
	hit.Material.Transparency = 0.714286
	hit.Material.Shininess = 0.787037
	hit.Material.Specular = core.Splat(0.357143)
	hit.Material.Diffuse = core.NewVec3(0.194609, 0.192348, 0.204082)
}
