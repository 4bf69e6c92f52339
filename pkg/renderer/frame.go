package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
)

// Frame is a linear RGB pixel buffer. Workers write disjoint tiles, so no
// locking is needed.
type Frame struct {
	Width, Height int
	pixels        []core.Vec3
}

// NewFrame allocates a black frame
func NewFrame(width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidFrameSize, width, height)
	}
	return &Frame{
		Width:  width,
		Height: height,
		pixels: make([]core.Vec3, width*height),
	}, nil
}

// At returns the linear color of pixel (x, y)
func (f *Frame) At(x, y int) core.Vec3 {
	return f.pixels[y*f.Width+x]
}

// Set stores the linear color of pixel (x, y)
func (f *Frame) Set(x, y int, c core.Vec3) {
	f.pixels[y*f.Width+x] = c
}

// Image clamps every pixel to [0,1] and quantizes it to 8 bits per channel
func (f *Frame) Image() *image.RGBA {
	return f.SubImage(image.Rect(0, 0, f.Width, f.Height))
}

// SubImage converts the pixels inside bounds. The result is positioned at the
// origin.
func (f *Frame) SubImage(bounds image.Rectangle) *image.RGBA {
	bounds = bounds.Intersect(image.Rect(0, 0, f.Width, f.Height))
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, ToRGBA(f.At(x, y)))
		}
	}
	return img
}

// AverageLuminance returns the mean Rec. 709 luminance of the clamped frame
func (f *Frame) AverageLuminance() float64 {
	var total float64
	for _, c := range f.pixels {
		total += c.Clamp(0, 1).Luminance()
	}
	return total / float64(len(f.pixels))
}

// ToRGBA converts a linear color to an opaque 8-bit color without gamma
func ToRGBA(c core.Vec3) color.RGBA {
	c = c.Clamp(0, 1)
	return color.RGBA{
		R: uint8(255 * c.X),
		G: uint8(255 * c.Y),
		B: uint8(255 * c.Z),
		A: 255,
	}
}
