package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width, Height    int
	SamplesPerPixel  int
	Tiles            int           // Tiles in the grid
	SkippedTiles     int           // Tiles never started because the render was stopped
	Workers          int           // Worker goroutines
	TotalSamples     int           // Camera rays traced
	Duration         time.Duration // Wall time from first submit to last result
	AverageLuminance float64       // Mean luminance of the finished frame
}

// SamplesPerSecond returns the camera ray throughput
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Duration.Seconds()
}

// Table renders the statistics as a text table
func (s RenderStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Resolution", "Spp", "Tiles", "Workers", "Samples", "Samples/sec", "Avg luminance"})
	table.Append([]string{
		fmt.Sprintf("%dx%d", s.Width, s.Height),
		fmt.Sprintf("%d", s.SamplesPerPixel),
		fmt.Sprintf("%d", s.Tiles-s.SkippedTiles),
		fmt.Sprintf("%d", s.Workers),
		fmt.Sprintf("%d", s.TotalSamples),
		fmt.Sprintf("%.0f", s.SamplesPerSecond()),
		fmt.Sprintf("%.4f", s.AverageLuminance),
	})
	table.SetFooter([]string{"", "", "", "", "", "TOTAL", s.Duration.Round(time.Millisecond).String()})
	table.Render()
	return buf.String()
}
