package renderer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/df07/go-subsurface-raytracer/pkg/log"
	"github.com/df07/go-subsurface-raytracer/pkg/scene"
)

var logger = log.New("renderer")

// Options configures a frame render
type Options struct {
	Width           int
	Height          int
	SamplesPerPixel int
	TileSize        int   // Edge length of the square tiles; 0 renders a single tile
	NumWorkers      int   // Number of parallel workers (0 = use CPU count)
	Seed            int64 // Seeds the sample patterns and every tile's random source
}

// DefaultOptions returns sensible default values
func DefaultOptions() Options {
	return Options{
		Width:           640,
		Height:          480,
		SamplesPerPixel: 4,
		TileSize:        32,
		NumWorkers:      0,
		Seed:            1,
	}
}

// TileUpdate describes a completed tile for progress callbacks
type TileUpdate struct {
	Tile       *Tile
	Completed  int // Tiles completed so far
	TotalTiles int
}

// FrameRenderer renders a scene into a frame with a pool of tile workers
type FrameRenderer struct {
	scene      *scene.Scene
	options    Options
	integrator *Integrator
	stop       atomic.Bool
}

// NewFrameRenderer validates options and prepares the integrator. The scene is
// built if needed and must not be mutated while a render runs.
func NewFrameRenderer(s *scene.Scene, options Options) (*FrameRenderer, error) {
	if options.Width <= 0 || options.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidFrameSize, options.Width, options.Height)
	}
	integrator, err := NewIntegrator(s, options.Width, options.SamplesPerPixel, options.Seed)
	if err != nil {
		return nil, err
	}
	return &FrameRenderer{
		scene:      s,
		options:    options,
		integrator: integrator,
	}, nil
}

// Integrator returns the integrator shared by the workers
func (fr *FrameRenderer) Integrator() *Integrator {
	return fr.integrator
}

// Stop asks a running render to finish the tiles in progress and return
// ErrInterrupted
func (fr *FrameRenderer) Stop() {
	fr.stop.Store(true)
}

// Render traces every tile and returns the finished frame. onTile, if not nil,
// is called from the calling goroutine as each tile completes. Cancelling ctx
// or calling Stop skips the remaining tiles.
func (fr *FrameRenderer) Render(ctx context.Context, onTile func(TileUpdate)) (*Frame, RenderStats, error) {
	fr.stop.Store(false)
	if err := ctx.Err(); err != nil {
		return nil, RenderStats{}, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	frame, err := NewFrame(fr.options.Width, fr.options.Height)
	if err != nil {
		return nil, RenderStats{}, err
	}

	tiles := NewTileGrid(fr.options.Width, fr.options.Height, fr.options.TileSize, fr.options.Seed)
	pool := NewWorkerPool(fr.integrator, len(tiles), fr.options.NumWorkers, &fr.stop)

	stopWatch := context.AfterFunc(ctx, fr.Stop)
	defer stopWatch()

	logger.Noticef("rendering %dx%d at %d spp: %d tiles on %d workers",
		fr.options.Width, fr.options.Height, fr.options.SamplesPerPixel, len(tiles), pool.GetNumWorkers())

	start := time.Now()
	pool.Start()
	for id, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: id, Frame: frame})
	}

	stats := RenderStats{
		Width:           fr.options.Width,
		Height:          fr.options.Height,
		SamplesPerPixel: fr.options.SamplesPerPixel,
		Tiles:           len(tiles),
		Workers:         pool.GetNumWorkers(),
	}

	var renderErr error
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			renderErr = fmt.Errorf("worker pool closed unexpectedly")
			break
		}
		if result.Error != nil {
			if renderErr == nil {
				renderErr = result.Error
				fr.Stop()
			}
			continue
		}
		if result.Skipped {
			stats.SkippedTiles++
			continue
		}

		stats.TotalSamples += result.Samples
		if onTile != nil {
			onTile(TileUpdate{
				Tile:       tiles[result.TaskID],
				Completed:  result.Completed,
				TotalTiles: len(tiles),
			})
		}
		if result.Completed%max(1, len(tiles)/10) == 0 {
			logger.Infof("%d of %d tiles complete", result.Completed, len(tiles))
		}
	}
	pool.Stop()
	stats.Duration = time.Since(start)

	if renderErr != nil {
		logger.Errorf("render failed: %v", renderErr)
		return nil, stats, renderErr
	}
	if stats.SkippedTiles > 0 {
		logger.Warningf("render stopped with %d of %d tiles skipped", stats.SkippedTiles, len(tiles))
		if err := ctx.Err(); err != nil {
			return frame, stats, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		return frame, stats, ErrInterrupted
	}

	stats.AverageLuminance = frame.AverageLuminance()
	logger.Noticef("render finished in %s", stats.Duration)
	return frame, stats, nil
}
