package renderer

import (
	"context"
	"errors"
	"image"
	"math"
	"sync"
	"testing"

	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/lights"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
	"github.com/df07/go-subsurface-raytracer/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litSphereScene() *scene.Scene {
	s := newTestScene()
	addSphere(s, "ball", core.Vec3{}, 1, material.NewDiffuse(core.Splat(1)))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 0, 5), core.Splat(1)))
	return s
}

func TestNewTileGrid(t *testing.T) {
	width, height, tileSize := 400, 225, 64
	tiles := NewTileGrid(width, height, tileSize, 1)

	require.Len(t, tiles, 7*4)

	// Tiles cover the image without gaps or overlaps
	covered := make([][]int, height)
	for y := range covered {
		covered[y] = make([]int, width)
	}
	for i, tile := range tiles {
		assert.Equal(t, i, tile.ID)
		for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
			for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
				covered[y][x]++
			}
		}
	}
	for y := range covered {
		for x := range covered[y] {
			require.Equal(t, 1, covered[y][x], "pixel (%d,%d)", x, y)
		}
	}

	last := tiles[len(tiles)-1]
	assert.Equal(t, image.Rect(384, 192, 400, 225), last.Bounds)
}

func TestNewTileGrid_Deterministic(t *testing.T) {
	a := NewTileGrid(64, 64, 16, 7)
	b := NewTileGrid(64, 64, 16, 7)
	c := NewTileGrid(64, 64, 16, 8)

	assert.Equal(t, a[3].Random.Float64(), b[3].Random.Float64())
	assert.NotEqual(t, a[0].Random.Float64(), a[1].Random.Float64())
	assert.NotEqual(t, b[5].Random.Float64(), c[5].Random.Float64())
}

func TestNewTileGrid_SingleTile(t *testing.T) {
	tiles := NewTileGrid(30, 20, 0, 1)
	require.Len(t, tiles, 1)
	assert.Equal(t, image.Rect(0, 0, 30, 20), tiles[0].Bounds)
}

func TestFrame(t *testing.T) {
	_, err := NewFrame(0, 10)
	assert.ErrorIs(t, err, ErrInvalidFrameSize)

	frame, err := NewFrame(3, 2)
	require.NoError(t, err)
	frame.Set(2, 1, core.NewVec3(2, -1, 0.5))
	frame.Set(0, 0, core.Splat(1))

	assert.Equal(t, core.NewVec3(2, -1, 0.5), frame.At(2, 1), "frame keeps linear values")

	img := frame.Image()
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, ToRGBA(core.NewVec3(2, -1, 0.5)), img.RGBAAt(2, 1))
	assert.Equal(t, uint8(255), img.RGBAAt(2, 1).R)
	assert.Equal(t, uint8(0), img.RGBAAt(2, 1).G)
	assert.Equal(t, uint8(127), img.RGBAAt(2, 1).B)
	assert.Equal(t, uint8(255), img.RGBAAt(1, 0).A)

	sub := frame.SubImage(image.Rect(2, 1, 3, 2))
	assert.Equal(t, image.Rect(0, 0, 1, 1), sub.Bounds())
	assert.Equal(t, img.RGBAAt(2, 1), sub.RGBAAt(0, 0))

	// White, clamped (1,0,0.5) and four black pixels
	expected := (1 + core.NewVec3(1, 0, 0.5).Luminance()) / 6
	assert.InDelta(t, expected, frame.AverageLuminance(), 1e-12)
}

func TestNewFrameRenderer_Errors(t *testing.T) {
	options := DefaultOptions()
	options.Width = 0
	_, err := NewFrameRenderer(litSphereScene(), options)
	assert.ErrorIs(t, err, ErrInvalidFrameSize)

	options = DefaultOptions()
	options.SamplesPerPixel = 5
	_, err = NewFrameRenderer(litSphereScene(), options)
	assert.ErrorIs(t, err, ErrInvalidSampleCount)
}

func TestFrameRenderer_Render(t *testing.T) {
	options := Options{Width: 16, Height: 16, SamplesPerPixel: 1, TileSize: 4, NumWorkers: 3, Seed: 5}
	fr, err := NewFrameRenderer(litSphereScene(), options)
	require.NoError(t, err)

	var updates []TileUpdate
	frame, stats, err := fr.Render(context.Background(), func(u TileUpdate) {
		updates = append(updates, u)
	})
	require.NoError(t, err)

	assert.Equal(t, 16, stats.Tiles)
	assert.Equal(t, 0, stats.SkippedTiles)
	assert.Equal(t, 3, stats.Workers)
	assert.Equal(t, 256, stats.TotalSamples)
	assert.Greater(t, stats.AverageLuminance, 0.0)

	require.Len(t, updates, 16)
	seen := make(map[int]bool)
	for _, u := range updates {
		assert.Equal(t, 16, u.TotalTiles)
		seen[u.Completed] = true
	}
	assert.Len(t, seen, 16, "each completion count is reported once")

	center := frame.At(8, 8)
	assert.Greater(t, center.X, 0.5)
	assert.Equal(t, core.Vec3{}, frame.At(0, 0))
	assert.Equal(t, core.Vec3{}, frame.At(15, 15))

	table := stats.Table()
	assert.Contains(t, table, "16x16")
	assert.Contains(t, table, "TOTAL")
}

func TestFrameRenderer_DeterministicAcrossWorkerCounts(t *testing.T) {
	preset, err := bssrdf.LookupPreset("skin")
	require.NoError(t, err)

	render := func(workers int) *Frame {
		s := newTestScene()
		addSphere(s, "skin", core.Vec3{}, 1, &material.Material{Diffuse: core.Splat(1), Subsurface: preset.Profile()})
		s.AddLight(lights.NewPointLight(core.NewVec3(2, 2, 5), core.Splat(1)))
		s.Config.SubsurfaceSamples = 4

		fr, err := NewFrameRenderer(s, Options{Width: 16, Height: 16, SamplesPerPixel: 2, TileSize: 5, NumWorkers: workers, Seed: 9})
		require.NoError(t, err)
		frame, _, err := fr.Render(context.Background(), nil)
		require.NoError(t, err)
		return frame
	}

	a, b := render(1), render(4)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := a.At(x, y)
			require.Equal(t, c, b.At(x, y), "pixel (%d,%d)", x, y)
			require.False(t, math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsNaN(c.Z))
		}
	}
}

func TestFrameRenderer_CancelledBeforeStart(t *testing.T) {
	fr, err := NewFrameRenderer(litSphereScene(), Options{Width: 8, Height: 8, SamplesPerPixel: 1, TileSize: 4})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frame, _, err := fr.Render(ctx, nil)
	assert.Nil(t, frame)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
}

// stopShader cancels the render the first time it shades a hit
type stopShader struct {
	once   *sync.Once
	fr     *FrameRenderer
	cancel context.CancelFunc
}

func (s stopShader) Shade(*material.HitData) {
	s.once.Do(func() {
		s.cancel()
		s.fr.Stop()
	})
}

func TestFrameRenderer_CancelSkipsRemainingTiles(t *testing.T) {
	s := newTestScene()
	ball := addSphere(s, "ball", core.Vec3{}, 1, material.NewDiffuse(core.Splat(1)))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 0, 5), core.Splat(1)))

	fr, err := NewFrameRenderer(s, Options{Width: 16, Height: 16, SamplesPerPixel: 4, TileSize: 1, NumWorkers: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ball.ColorShader = stopShader{once: &sync.Once{}, fr: fr, cancel: cancel}

	// One worker checks the stop flag before each tile, so every tile after
	// the first sphere hit is skipped.
	frame, stats, err := fr.Render(ctx, nil)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, frame, "the partial frame is returned")
	assert.Greater(t, stats.SkippedTiles, 0)
	assert.Less(t, stats.TotalSamples, 16*16*4)
	assert.Equal(t, 16*16, stats.Tiles)
}

// panicShader fails the tile that shades it
type panicShader struct{}

func (panicShader) Shade(*material.HitData) { panic("shader exploded") }

func TestFrameRenderer_WorkerPanicFailsRender(t *testing.T) {
	s := newTestScene()
	ball := addSphere(s, "ball", core.Vec3{}, 1, material.NewDiffuse(core.Splat(1)))
	ball.ColorShader = panicShader{}

	fr, err := NewFrameRenderer(s, Options{Width: 16, Height: 16, SamplesPerPixel: 1, TileSize: 8, NumWorkers: 2})
	require.NoError(t, err)

	frame, _, err := fr.Render(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, frame)
	assert.Contains(t, err.Error(), "shader exploded")
	assert.False(t, errors.Is(err, ErrInterrupted))
}

func TestFrameRenderer_RenderTwice(t *testing.T) {
	fr, err := NewFrameRenderer(litSphereScene(), Options{Width: 8, Height: 8, SamplesPerPixel: 1, TileSize: 4, NumWorkers: 2})
	require.NoError(t, err)

	first, _, err := fr.Render(context.Background(), nil)
	require.NoError(t, err)
	second, _, err := fr.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)

}
