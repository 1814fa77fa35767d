package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pagellm/internal/download"
	"pagellm/internal/engine"
	"pagellm/internal/preflight"
	"pagellm/internal/statusapi"
)

func newServeCmd(a *app) *cobra.Command {
	var noSidecar bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine's HTTP server in the foreground",
		Long:  "Launches the engine server (OpenAI-compatible chat/completion endpoints plus\na health check) and supervises it until interrupted. A small status sidecar\nexposes /healthz, /status and /metrics alongside.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := preflight.ForServe(cfg); err != nil {
				return err
			}
			modelPath, err := download.ResolveModelPath(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			launcher := &engine.Launcher{Cfg: cfg, ModelPath: modelPath, Log: a.log}
			if !noSidecar {
				launcher.OnReady = func(baseURL string) {
					info := statusapi.Info{
						Model:     cfg.ModelName,
						Quant:     cfg.ModelQuant,
						ModelPath: modelPath,
						EngineURL: baseURL,
					}
					probe := func() bool { return engine.Healthy(baseURL, 2*time.Second) }
					h := statusapi.NewRouter(info, probe, a.log)
					addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.StatusPort)
					go func() {
						if err := statusapi.Serve(ctx, addr, h, a.log); err != nil {
							a.log.Error().Err(err).Msg("status sidecar failed")
						}
					}()
				}
			}
			return launcher.Serve(ctx)
		},
	}
	cmd.Flags().BoolVar(&noSidecar, "no-sidecar", false, "skip the status sidecar")
	return cmd
}

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running engine server by process name",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			return engine.Stop(cfg, a.log)
		},
	}
}
