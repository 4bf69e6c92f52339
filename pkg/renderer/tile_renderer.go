package renderer

import "github.com/df07/go-subsurface-raytracer/pkg/core"

// TileRenderer renders the pixels of a tile with an integrator
type TileRenderer struct {
	integrator *Integrator
}

// NewTileRenderer creates a tile renderer for the given integrator
func NewTileRenderer(integrator *Integrator) *TileRenderer {
	return &TileRenderer{integrator: integrator}
}

// RenderTile traces every pixel of tile into frame and returns the number of
// camera rays traced
func (tr *TileRenderer) RenderTile(tile *Tile, frame *Frame) int {
	sampler := core.NewRandomSampler(tile.Random)
	bounds := tile.Bounds

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			frame.Set(i, j, tr.integrator.PixelColor(i, j, sampler, nil))
		}
	}

	return bounds.Dx() * bounds.Dy() * tr.integrator.SamplesPerPixel()
}
