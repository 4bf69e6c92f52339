package main

import (
	"fmt"
	"os"

	"github.com/df07/go-subsurface-raytracer/cmd"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "subsurface-raytracer"
	app.Usage = "render scenes with recursive ray tracing and dipole subsurface scattering"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Load a built-in scene or a YAML scene file, build the spatial tree and render
the frame in parallel tiles. Interrupting the render with Ctrl-C saves the
tiles finished so far.

Settings are read from an optional TOML file (--config) and then overridden by
any flags given on the command line.`,
			ArgsUsage: "scene",
			Flags:     cmd.RenderFlags(),
			Action:    cmd.RenderFrame,
		},
		{
			Name:      "info",
			Usage:     "display host information and, given a scene, its tree statistics",
			ArgsUsage: "[scene]",
			Flags:     cmd.SceneFlags(),
			Action:    cmd.Info,
		},
		{
			Name:  "scenes",
			Usage: "list built-in scenes and scene files",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scenes",
					Value: "scenes",
					Usage: "directory scanned for YAML scene files",
				},
			},
			Action: cmd.ListScenes,
		},
		{
			Name:   "presets",
			Usage:  "list the measured subsurface scattering presets",
			Action: cmd.ListPresets,
		},
		{
			Name:        "trace",
			Usage:       "trace one pixel and print every ray segment as YAML",
			Description: `Trace the rays of a single pixel and report each hit, bounce depth and the final color.`,
			ArgsUsage:   "scene",
			Flags:       cmd.TraceFlags(),
			Action:      cmd.TracePixel,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
