// Package cli wires the cobra command tree. Commands stay thin: load the
// config, run preflight, hand off to the owning package.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pagellm/internal/config"
)

// ExitCodeError carries a child process exit code up through cobra so main
// can propagate it unchanged.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

type app struct {
	configPath string
	logLevel   string
	log        zerolog.Logger
}

func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return cfg, err
	}
	if a.logLevel == "" {
		a.logLevel = cfg.LogLevel
	}
	a.log = newLogger(a.logLevel)
	return cfg, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{log: newLogger("info")}
	root := &cobra.Command{
		Use:           "pagellm",
		Short:         "Run GGUF models bigger than RAM by letting the OS page the weights",
		Long:          "pagellm configures, downloads, and launches a llama.cpp-style inference engine\nfor models whose weight files exceed system memory. The heavy lifting (mmap\npaging, quantized tensors, KV cache) lives in the engine; pagellm does the\nplumbing around it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (default from config)")

	root.AddCommand(
		newDownloadCmd(a),
		newChatCmd(a),
		newAskCmd(a),
		newServeCmd(a),
		newStopCmd(a),
		newStatusCmd(a),
		newConfigCmd(a),
		newInstallCmd(a),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		var ece *ExitCodeError
		if errors.As(err, &ece) {
			return ece.Code
		}
		fmt.Fprintf(os.Stderr, "pagellm: %v\n", err)
		return 1
	}
	return 0
}
