package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pagellm/internal/executil"
	"pagellm/internal/preflight"
)

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Check prerequisites and install what can be installed automatically",
		Long:  "Verifies the engine binaries and the download client are on PATH. The\ndownload client is installed via pip when missing; the engine itself must be\nbuilt or downloaded separately, so only guidance is printed for it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			ok := color.New(color.FgGreen).SprintFunc()
			warn := color.New(color.FgYellow)

			missing := 0
			for _, bin := range []string{cfg.EngineBin, cfg.ServerBin} {
				if err := preflight.CheckEngine(bin); err == nil {
					fmt.Printf("%-16s %s\n", bin, ok("found"))
				} else {
					fmt.Printf("%-16s missing\n", bin)
					missing++
				}
			}
			if missing > 0 {
				warn.Fprintln(os.Stderr, "engine binaries cannot be installed automatically; build llama.cpp:")
				fmt.Fprintln(os.Stderr, "  git clone https://github.com/ggml-org/llama.cpp")
				fmt.Fprintln(os.Stderr, "  cmake -B build -DGGML_NATIVE=ON && cmake --build build -j")
				fmt.Fprintln(os.Stderr, "  cp build/bin/llama-* /usr/local/bin/")
			}

			if err := preflight.CheckDownloadClient(cfg.DownloadClient); err == nil {
				fmt.Printf("%-16s %s\n", cfg.DownloadClient, ok("found"))
				if missing > 0 {
					return fmt.Errorf("%d engine binaries missing", missing)
				}
				return nil
			}

			pip, err := pipBin()
			if err != nil {
				return fmt.Errorf("%s missing and no pip found to install it: %w", cfg.DownloadClient, err)
			}
			a.log.Info().Str("pip", pip).Msg("installing huggingface_hub[cli]")
			if err := executil.Run(cmd.Context(), executil.Cmd{
				Path: pip,
				Args: []string{"install", "--upgrade", "huggingface_hub[cli]"},
			}); err != nil {
				return fmt.Errorf("pip install huggingface_hub[cli]: %w", err)
			}
			if err := preflight.CheckDownloadClient(cfg.DownloadClient); err != nil {
				return err
			}
			fmt.Printf("%-16s %s\n", cfg.DownloadClient, ok("installed"))
			if missing > 0 {
				return fmt.Errorf("%d engine binaries missing", missing)
			}
			return nil
		},
	}
}

func pipBin() (string, error) {
	for _, name := range []string{"pip3", "pip"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("neither pip3 nor pip on PATH")
}
