package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/df07/go-subsurface-raytracer/pkg/config"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/urfave/cli"
)

// Display host and scene information.
func Info(ctx *cli.Context) error {
	setupLogging(ctx)

	displayHostInfo()

	if ctx.NArg() == 0 {
		return nil
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	sc, err := loadScene(cfg)
	if err != nil {
		return err
	}
	sc.Build()
	displaySceneInfo(cfg.Scene, sc)
	return nil
}

func displayHostInfo() {
	model := "unknown"
	mhz := 0.0
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		model = infos[0].ModelName
		mhz = infos[0].Mhz
	} else if err != nil {
		logger.Debugf("cpu info unavailable: %v", err)
	}

	physical, err := cpu.Counts(false)
	if err != nil {
		physical = 0
	}

	memory := "unknown"
	if vm, err := mem.VirtualMemory(); err == nil {
		memory = fmt.Sprintf("%.1f GiB (%.0f%% used)", float64(vm.Total)/(1<<30), vm.UsedPercent)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Property", "Value"})
	table.AppendBulk([][]string{
		{"CPU", model},
		{"Clock", fmt.Sprintf("%.0f MHz", mhz)},
		{"Physical cores", fmt.Sprintf("%d", physical)},
		{"Logical cores", fmt.Sprintf("%d", config.DefaultWorkers())},
		{"Memory", memory},
		{"Go", fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)},
	})
	table.Render()
	logger.Noticef("host information\n%s", buf.String())
}

func displaySceneInfo(name string, sc *scene.Scene) {
	bounds := sc.Bounds()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Property", "Value"})
	table.AppendBulk([][]string{
		{"Scene", name},
		{"Objects", fmt.Sprintf("%d", len(sc.Objects))},
		{"Primitives", fmt.Sprintf("%d", sc.PrimitiveCount())},
		{"Materials", fmt.Sprintf("%d", len(sc.Materials))},
		{"Lights", fmt.Sprintf("%d", len(sc.Lights))},
		{"Bounds", fmt.Sprintf("%v - %v", bounds.Min, bounds.Max)},
	})
	if stats, ok := sc.TreeStats(); ok {
		appendTreeStats(table, stats)
	}
	table.Render()
	logger.Noticef("scene information\n%s", buf.String())
}

func appendTreeStats(table *tablewriter.Table, stats geometry.TreeStats) {
	avgLeaf := 0.0
	if stats.Leaves > 0 {
		avgLeaf = float64(stats.LeafPrimitives) / float64(stats.Leaves)
	}
	table.AppendBulk([][]string{
		{"Tree nodes", fmt.Sprintf("%d", stats.Nodes)},
		{"Tree leaves", fmt.Sprintf("%d", stats.Leaves)},
		{"Tree depth", fmt.Sprintf("%d", stats.MaxDepth)},
		{"Leaf size (avg / max)", fmt.Sprintf("%.1f / %d", avgLeaf, stats.MaxLeafSize)},
		{"Shared references", fmt.Sprintf("%d", stats.LeafPrimitives-stats.Primitives)},
		{"Build time", stats.BuildTime.String()},
	})
}
