package cmd

import (
	"bytes"
	"fmt"

	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the measured subsurface presets.
func ListPresets(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Preset", "σa (1/mm)", "σs' (1/mm)", "η", "Rmax (mm)"})
	for _, preset := range bssrdf.Presets() {
		table.Append([]string{
			preset.Name,
			formatVec(preset.SigmaA.X, preset.SigmaA.Y, preset.SigmaA.Z),
			formatVec(preset.SigmaSPrime.X, preset.SigmaSPrime.Y, preset.SigmaSPrime.Z),
			fmt.Sprintf("%.2f", preset.Eta),
			fmt.Sprintf("%.2f", preset.Profile().MaxRadius()),
		})
	}
	table.Render()
	logger.Noticef("subsurface presets\n%s", buf.String())
	return nil
}

// List built-in scenes and scene files.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	groups, err := scene.ListAll(ctx.String("scenes"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Group", "ID", "Name", "Description"})
	for _, group := range groups {
		for _, info := range group.Scenes {
			table.Append([]string{group.Name, info.ID, info.Name, info.Description})
		}
	}
	table.Render()
	logger.Noticef("available scenes\n%s", buf.String())
	return nil
}

func formatVec(x, y, z float64) string {
	return fmt.Sprintf("%.4f %.4f %.4f", x, y, z)
}
