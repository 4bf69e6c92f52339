package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/df07/go-subsurface-raytracer/pkg/config"
	"github.com/df07/go-subsurface-raytracer/pkg/loaders"
	"github.com/df07/go-subsurface-raytracer/pkg/scene"
	"github.com/urfave/cli"
)

// loadConfig reads the optional --config file and applies flag overrides
func loadConfig(ctx *cli.Context) (config.RenderConfig, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if ctx.NArg() > 0 {
		cfg.Scene = ctx.Args().First()
	}
	if ctx.IsSet("scenes") {
		cfg.ScenesDir = ctx.String("scenes")
	}
	if ctx.IsSet("width") {
		cfg.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Height = ctx.Int("height")
	}
	if ctx.IsSet("spp") {
		cfg.SamplesPerPixel = ctx.Int("spp")
	}
	if ctx.IsSet("tile-size") {
		cfg.TileSize = ctx.Int("tile-size")
	}
	if ctx.IsSet("workers") {
		cfg.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("focal-distance") {
		cfg.FocalDistance = ctx.Float64("focal-distance")
	}
	if ctx.IsSet("lens-radius") {
		cfg.LensRadius = ctx.Float64("lens-radius")
	}
	if ctx.IsSet("seed") {
		cfg.Seed = ctx.Int64("seed")
	}
	if ctx.IsSet("bounces") {
		cfg.Tracer.MaxBounces = ctx.Int("bounces")
	}
	if ctx.IsSet("out") {
		cfg.Output = ctx.String("out")
	}

	cfg, err := cfg.ExpandPaths()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// loadScene resolves cfg.Scene as a YAML file, a discovered "file:" ID or a
// built-in scene ID
func loadScene(cfg config.RenderConfig) (*scene.Scene, error) {
	opts := cfg.SceneOptions()

	if scene.IsSceneFile(cfg.Scene) {
		logger.Infof("loading scene file %s", cfg.Scene)
		return loaders.LoadSceneFile(cfg.Scene, opts)
	}

	if strings.HasPrefix(cfg.Scene, "file:") {
		files, err := scene.ListSceneFiles(cfg.ScenesDir)
		if err != nil {
			return nil, err
		}
		for _, info := range files {
			if info.ID == cfg.Scene {
				logger.Infof("loading scene file %s", info.FilePath)
				return loaders.LoadSceneFile(info.FilePath, opts)
			}
		}
		return nil, fmt.Errorf("%w: %q not found in %s", scene.ErrUnknownScene, cfg.Scene, cfg.ScenesDir)
	}

	s, err := scene.NewBuiltin(cfg.Scene, opts)
	if errors.Is(err, scene.ErrUnknownScene) {
		return nil, fmt.Errorf("%w (run \"scenes\" to list the available scenes)", err)
	}
	return s, err
}

// sceneFlags are shared by every command that loads a scene
var sceneFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "TOML render configuration file",
	},
	cli.StringFlag{
		Name:  "scenes",
		Value: "scenes",
		Usage: "directory scanned for YAML scene files",
	},
	cli.IntFlag{
		Name:  "width",
		Value: 640,
		Usage: "frame width",
	},
	cli.IntFlag{
		Name:  "height",
		Value: 480,
		Usage: "frame height",
	},
	cli.Float64Flag{
		Name:  "focal-distance",
		Usage: "override the scene's focal distance",
	},
	cli.Float64Flag{
		Name:  "lens-radius",
		Usage: "thin lens aperture radius (0 = pinhole)",
	},
	cli.IntFlag{
		Name:  "bounces",
		Value: 10,
		Usage: "maximum reflection and refraction depth",
	},
}

// SceneFlags returns the scene selection flags
func SceneFlags() []cli.Flag {
	return append([]cli.Flag(nil), sceneFlags...)
}
