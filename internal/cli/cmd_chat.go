package cli

import (
	"github.com/spf13/cobra"

	"pagellm/internal/download"
	"pagellm/internal/engine"
	"pagellm/internal/executil"
	"pagellm/internal/preflight"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation with the configured model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := preflight.ForLaunch(cfg); err != nil {
				return err
			}
			modelPath, err := download.ResolveModelPath(cfg)
			if err != nil {
				return err
			}
			a.log.Info().Str("model", modelPath).Msg("launching interactive session")
			if err := engine.RunForeground(cmd.Context(), cfg.EngineBin, engine.BuildChatArgs(cfg, modelPath)); err != nil {
				// The child owns the terminal; its exit code is the answer.
				return &ExitCodeError{Code: exitCodeOr1(err)}
			}
			return nil
		},
	}
}

func exitCodeOr1(err error) int {
	if code := executil.ExitCode(err); code > 0 {
		return code
	}
	return 1
}
