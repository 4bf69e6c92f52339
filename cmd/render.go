package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/df07/go-subsurface-raytracer/pkg/config"
	"github.com/df07/go-subsurface-raytracer/pkg/loaders"
	"github.com/df07/go-subsurface-raytracer/pkg/renderer"
	"github.com/df07/go-subsurface-raytracer/pkg/scene"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli"
)

// RenderFlags returns the flags of the render command
func RenderFlags() []cli.Flag {
	return append(SceneFlags(),
		cli.IntFlag{
			Name:  "spp",
			Value: 4,
			Usage: "samples per pixel (1 or a power of two)",
		},
		cli.IntFlag{
			Name:  "tile-size",
			Value: 32,
			Usage: "edge length of the square render tiles",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "render goroutines (0 = logical CPU count)",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 1,
			Usage: "random seed for sample patterns and tiles",
		},
		cli.StringFlag{
			Name:  "out, o",
			Value: "output/render.png",
			Usage: "image filename; .png, .bmp and .tiff are supported",
		},
		cli.BoolFlag{
			Name:  "no-accel",
			Usage: "test every primitive instead of using the spatial tree",
		},
		cli.BoolFlag{
			Name:  "watch, w",
			Usage: "re-render whenever the scene file changes",
		},
	)
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	watch := ctx.Bool("watch")
	if watch && !scene.IsSceneFile(cfg.Scene) {
		return errors.New("--watch needs a scene file")
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := renderOnce(sigCtx, cfg, ctx.Bool("no-accel")); err != nil {
		return err
	}

	if !watch {
		return nil
	}
	return watchScene(sigCtx, cfg, ctx.Bool("no-accel"))
}

// renderOnce loads, renders and saves the configured scene
func renderOnce(ctx context.Context, cfg config.RenderConfig, noAccel bool) error {
	sc, err := loadScene(cfg)
	if err != nil {
		return err
	}
	sc.UseLinearScan(noAccel)
	sc.Build()

	fr, err := renderer.NewFrameRenderer(sc, cfg.RendererOptions())
	if err != nil {
		return err
	}

	frame, stats, err := fr.Render(ctx, nil)
	if errors.Is(err, renderer.ErrInterrupted) && frame != nil {
		logger.Warning("render interrupted, saving the partial frame")
		if saveErr := loaders.SaveImage(cfg.Output, frame.Image()); saveErr != nil {
			logger.Errorf("failed to save partial frame: %v", saveErr)
		}
		return err
	}
	if err != nil {
		return err
	}

	if err := loaders.SaveImage(cfg.Output, frame.Image()); err != nil {
		return err
	}
	displayRenderStats(stats)
	logger.Noticef("saved %s", cfg.Output)
	return nil
}

func displayRenderStats(stats renderer.RenderStats) {
	logger.Noticef("frame statistics\n%s", stats.Table())
}

// watchScene re-renders whenever the scene file is written. Editors often
// replace files on save, so the directory is watched rather than the file.
func watchScene(ctx context.Context, cfg config.RenderConfig, noAccel bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target, err := filepath.Abs(cfg.Scene)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Scene, err)
	}
	logger.Noticef("watching %s for changes (Ctrl+C to stop)", cfg.Scene)

	// Coalesce the burst of events a single save produces
	const settle = 200 * time.Millisecond
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path, _ := filepath.Abs(event.Name)
			if path != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warningf("watch error: %v", err)
		case <-pending:
			pending = nil
			logger.Noticef("%s changed, re-rendering", cfg.Scene)
			if err := renderOnce(ctx, cfg, noAccel); err != nil {
				if errors.Is(err, renderer.ErrInterrupted) {
					return nil
				}
				logger.Errorf("render failed: %v", err)
			}
		}
	}
}
