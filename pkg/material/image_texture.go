package material

import (
	"github.com/df07/go-subsurface-raytracer/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x]
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Evaluate samples the texture with nearest-neighbor filtering. U runs left to
// right and V top to bottom; coordinates outside [0,1] are clamped to the edge.
func (t *ImageTexture) Evaluate(uv core.Vec2) core.Vec3 {
	x := int(uv.X * float64(t.Width-1))
	y := int(uv.Y * float64(t.Height-1))

	x = max(min(x, t.Width-1), 0)
	y = max(min(y, t.Height-1), 0)

	return t.Pixels[y*t.Width+x]
}

// TextureColorShader replaces the diffuse color with a texture lookup
type TextureColorShader struct {
	Texture *ImageTexture
}

// NewTextureColorShader wraps a texture as a color shader
func NewTextureColorShader(texture *ImageTexture) *TextureColorShader {
	return &TextureColorShader{Texture: texture}
}

// Shade looks up the diffuse color at the hit's UV
func (s *TextureColorShader) Shade(hit *HitData) {
	hit.Material.Diffuse = s.Texture.Evaluate(hit.UV)
}

// NewCheckerboardTexture creates a procedural checkerboard pattern texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *ImageTexture {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Determine which check we're in
			checkX := x / checkSize
			checkY := y / checkSize

			var color core.Vec3
			if (checkX+checkY)%2 == 0 {
				color = color1
			} else {
				color = color2
			}

			pixels[y*width+x] = color
		}
	}

	return NewImageTexture(width, height, pixels)
}
