// Package config loads render settings from TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/renderer"
	"github.com/df07/go-subsurface-raytracer/pkg/scene"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/shirou/gopsutil/v3/cpu"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid render config")

// RenderConfig holds everything needed to render one frame
type RenderConfig struct {
	Scene           string  `toml:"scene"`      // Built-in scene ID or path to a YAML scene file
	ScenesDir       string  `toml:"scenes_dir"` // Directory scanned for scene files
	Output          string  `toml:"output"`     // Image path; the extension selects the format
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
	SamplesPerPixel int     `toml:"samples_per_pixel"`
	TileSize        int     `toml:"tile_size"`
	Workers         int     `toml:"workers"` // 0 uses every logical CPU
	FocalDistance   float64 `toml:"focal_distance"`
	LensRadius      float64 `toml:"lens_radius"`
	Seed            int64   `toml:"seed"`

	Tracer core.TracerConfig `toml:"tracer"`
}

// Default returns the settings used when no file or flag overrides them
func Default() RenderConfig {
	return RenderConfig{
		Scene:           "subsurface",
		ScenesDir:       "scenes",
		Output:          "output/render.png",
		Width:           640,
		Height:          480,
		SamplesPerPixel: 4,
		TileSize:        32,
		Seed:            1,
		Tracer:          core.DefaultTracerConfig(),
	}
}

// Load reads a TOML file over the defaults. Unknown keys are rejected.
func Load(path string) (RenderConfig, error) {
	cfg := Default()

	path, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to expand config path: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("%s: %w\n%s", path, err, strict.String())
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as TOML
func Save(path string, cfg RenderConfig) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand config path: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ExpandPaths replaces a leading ~ in the file paths with the home directory
func (c RenderConfig) ExpandPaths() (RenderConfig, error) {
	for _, p := range []*string{&c.Output, &c.ScenesDir} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return c, err
		}
		*p = expanded
	}
	if scene.IsSceneFile(c.Scene) {
		expanded, err := homedir.Expand(c.Scene)
		if err != nil {
			return c, err
		}
		c.Scene = expanded
	}
	return c, nil
}

// Validate checks the image and sampling settings
func (c RenderConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.SamplesPerPixel < 1 || c.SamplesPerPixel&(c.SamplesPerPixel-1) != 0:
		return fmt.Errorf("%w: samples per pixel %d is not a power of two", ErrInvalidConfig, c.SamplesPerPixel)
	case c.TileSize < 0:
		return fmt.Errorf("%w: tile size %d", ErrInvalidConfig, c.TileSize)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	case c.LensRadius < 0:
		return fmt.Errorf("%w: lens radius %g", ErrInvalidConfig, c.LensRadius)
	case c.Scene == "":
		return fmt.Errorf("%w: no scene", ErrInvalidConfig)
	}
	return nil
}

// SceneOptions returns the camera and tracer settings for scene construction
func (c RenderConfig) SceneOptions() scene.Options {
	return scene.Options{
		Width:         c.Width,
		Height:        c.Height,
		FocalDistance: c.FocalDistance,
		LensRadius:    c.LensRadius,
		Config:        c.Tracer.Merge(core.DefaultTracerConfig()),
	}
}

// RendererOptions returns the frame renderer settings. A zero worker count is
// resolved to the number of logical CPUs.
func (c RenderConfig) RendererOptions() renderer.Options {
	workers := c.Workers
	if workers == 0 {
		workers = DefaultWorkers()
	}
	return renderer.Options{
		Width:           c.Width,
		Height:          c.Height,
		SamplesPerPixel: c.SamplesPerPixel,
		TileSize:        c.TileSize,
		NumWorkers:      workers,
		Seed:            c.Seed,
	}
}

// DefaultWorkers returns the logical CPU count
func DefaultWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
