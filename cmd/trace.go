package cmd

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/renderer"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

// pixelTrace is the YAML report of a single traced pixel
type pixelTrace struct {
	Scene    string             `yaml:"scene"`
	Pixel    [2]int             `yaml:"pixel,flow"`
	Color    core.Vec3          `yaml:"color,flow"`
	Segments []renderer.Segment `yaml:"segments"`
}

// TraceFlags returns the flags of the trace command
func TraceFlags() []cli.Flag {
	return append(SceneFlags(),
		cli.IntFlag{
			Name:  "x",
			Usage: "pixel column",
		},
		cli.IntFlag{
			Name:  "y",
			Usage: "pixel row",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: 4,
			Usage: "samples per pixel",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 1,
			Usage: "random seed",
		},
	)
}

// Trace a single pixel and print every ray segment.
func TracePixel(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	x, y := ctx.Int("x"), ctx.Int("y")
	if x < 0 || x >= cfg.Width || y < 0 || y >= cfg.Height {
		return fmt.Errorf("pixel (%d,%d) outside the %dx%d frame", x, y, cfg.Width, cfg.Height)
	}

	sc, err := loadScene(cfg)
	if err != nil {
		return err
	}

	integrator, err := renderer.NewIntegrator(sc, cfg.Width, cfg.SamplesPerPixel, cfg.Seed)
	if err != nil {
		return err
	}

	rec := &renderer.SegmentRecorder{}
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(cfg.Seed)))
	color := integrator.PixelColor(x, y, sampler, rec)

	out, err := yaml.Marshal(pixelTrace{
		Scene:    cfg.Scene,
		Pixel:    [2]int{x, y},
		Color:    color,
		Segments: rec.Segments,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.App.Writer, string(out))
	return nil
}
