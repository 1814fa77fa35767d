package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pagellm/internal/download"
	"pagellm/internal/engine"
	"pagellm/internal/preflight"
)

func newAskCmd(a *app) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Run a single non-interactive query",
		Example: "  pagellm ask \"Summarize RFC 793 in two sentences\"\n  cat notes.txt | pagellm ask\n  pagellm ask --json \"List three ports as {name, number}\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args)
			if err != nil {
				_ = cmd.Usage()
				return err
			}
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
			qargs := engine.BuildQueryArgs(cfg, modelPath, prompt, jsonOut)
			if err := engine.RunForeground(cmd.Context(), cfg.EngineBin, qargs); err != nil {
				return &ExitCodeError{Code: exitCodeOr1(err)}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "append a structured-output hint to the system prompt")
	return cmd
}

// readPrompt takes the prompt from arguments, or from stdin when piped.
// No prompt anywhere is a usage error.
func readPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	fi, err := os.Stdin.Stat()
	if err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if p := strings.TrimSpace(string(b)); p != "" {
			return p, nil
		}
	}
	return "", fmt.Errorf("no prompt supplied: pass it as an argument or pipe it on stdin")
}
