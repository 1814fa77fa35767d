package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pagellm/internal/download"
	"pagellm/internal/engine"
	"pagellm/internal/preflight"
	"pagellm/internal/sysinfo"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print system, model and server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			dir, err := cfg.ResolvedModelsDir()
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			ok := color.New(color.FgGreen).SprintFunc()
			bad := color.New(color.FgRed).SprintFunc()

			bold.Println("system")
			if snap, err := sysinfo.Collect(dir); err == nil {
				fmt.Printf("  %s/%s, %d cpus\n", snap.OS, snap.Arch, snap.CPUs)
				fmt.Printf("  ram  %s total, %s available\n", humanize.IBytes(snap.TotalRAM), humanize.IBytes(snap.AvailRAM))
				fmt.Printf("  disk %s free of %s (%s)\n", humanize.IBytes(snap.DiskFree), humanize.IBytes(snap.DiskTotal), dir)
				need := preflight.EstimateBytes(cfg.ModelQuant)
				if snap.WillPage(need) {
					fmt.Printf("  %s is ~%s: exceeds RAM, the engine will mmap-page from disk\n", cfg.ModelQuant, humanize.IBytes(need))
				}
			} else {
				fmt.Printf("  %s\n", bad(err.Error()))
			}

			bold.Println("model")
			fmt.Printf("  repo  %s\n", cfg.HFRepo)
			fmt.Printf("  quant %s\n", cfg.ModelQuant)
			if path, err := download.ResolveModelPath(cfg); err == nil {
				size := int64(0)
				if fi, serr := os.Stat(path); serr == nil {
					size = fi.Size()
				}
				fmt.Printf("  path  %s (%s) %s\n", path, humanize.Bytes(uint64(size)), ok("present"))
			} else {
				fmt.Printf("  path  %s\n", bad("not downloaded"))
			}

			bold.Println("engine")
			for _, bin := range []string{cfg.EngineBin, cfg.ServerBin} {
				if err := preflight.CheckEngine(bin); err == nil {
					fmt.Printf("  %-14s %s\n", bin, ok("found"))
				} else {
					fmt.Printf("  %-14s %s\n", bin, bad("missing"))
				}
			}
			baseURL := fmt.Sprintf("http://%s:%d", cfg.ServerHost, cfg.ServerPort)
			if engine.Healthy(baseURL, 2*time.Second) {
				fmt.Printf("  server         %s at %s\n", ok("running"), baseURL)
			} else {
				fmt.Printf("  server         not running (%s)\n", baseURL)
			}
			return nil
		},
	}
}
