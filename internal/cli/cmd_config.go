package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pagellm/internal/config"
	"pagellm/internal/executil"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the configuration",
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigEditCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after defaults and file overlay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			for _, kv := range [][2]string{
				{"HF_REPO", cfg.HFRepo},
				{"MODEL_NAME", cfg.ModelName},
				{"MODEL_QUANT", cfg.ModelQuant},
				{"MODEL_PATH", cfg.ModelPath},
				{"MODELS_DIR", cfg.ModelsDir},
				{"CONTEXT_SIZE", fmt.Sprint(cfg.ContextSize)},
				{"BATCH_SIZE", fmt.Sprint(cfg.BatchSize)},
				{"THREADS", fmt.Sprint(cfg.Threads)},
				{"GPU_LAYERS", fmt.Sprint(cfg.GPULayers)},
				{"USE_MMAP", fmt.Sprint(cfg.UseMMap)},
				{"USE_MLOCK", fmt.Sprint(cfg.UseMLock)},
				{"CACHE_TYPE_K", cfg.CacheTypeK},
				{"CACHE_TYPE_V", cfg.CacheTypeV},
				{"FLASH_ATTENTION", fmt.Sprint(cfg.FlashAttention)},
				{"SYSTEM_PROMPT", cfg.SystemPrompt},
				{"RAM_LIMIT_GB", fmt.Sprint(cfg.RAMLimitGB)},
				{"DOWNLOAD_CLIENT", cfg.DownloadClient},
				{"DOWNLOAD_TIMEOUT", fmt.Sprint(cfg.DownloadTimeout)},
				{"DOWNLOAD_MAX_RETRIES", fmt.Sprint(cfg.DownloadMaxRetries)},
				{"DOWNLOAD_RETRY_DELAY", fmt.Sprint(cfg.DownloadRetryDelay)},
				{"RETRY_DELAY_CAP", fmt.Sprint(cfg.RetryDelayCap)},
				{"SERVER_HOST", cfg.ServerHost},
				{"SERVER_PORT", fmt.Sprint(cfg.ServerPort)},
				{"STATUS_PORT", fmt.Sprint(cfg.StatusPort)},
				{"ENGINE_BIN", cfg.EngineBin},
				{"SERVER_BIN", cfg.ServerBin},
				{"LOG_LEVEL", cfg.LogLevel},
			} {
				fmt.Printf("%s=%s\n", kv[0], kv[1])
			}
			return nil
		},
	}
}

func newConfigEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the config file in $EDITOR, seeding a template if absent",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				path = config.DefaultPath
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := writeTemplate(path); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "created %s with defaults\n", path)
			}
			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "vi"
			}
			return executil.Run(cmd.Context(), executil.Cmd{Path: editor, Args: []string{path}})
		},
	}
}

func writeTemplate(path string) error {
	d := config.Defaults()
	tmpl := fmt.Sprintf(`# pagellm configuration
HF_REPO=%s
MODEL_NAME=%s
MODEL_QUANT=%s
MODELS_DIR=%s
CONTEXT_SIZE=%d
THREADS=%d
GPU_LAYERS=%d
USE_MMAP=%t
USE_MLOCK=%t
DOWNLOAD_CLIENT=%s
DOWNLOAD_MAX_RETRIES=%d
DOWNLOAD_RETRY_DELAY=%d
RETRY_DELAY_CAP=%d
SERVER_PORT=%d
LOG_LEVEL=%s
`, d.HFRepo, d.ModelName, d.ModelQuant, d.ModelsDir,
		d.ContextSize, d.Threads, d.GPULayers, d.UseMMap, d.UseMLock,
		d.DownloadClient, d.DownloadMaxRetries, d.DownloadRetryDelay, d.RetryDelayCap,
		d.ServerPort, d.LogLevel)
	return os.WriteFile(path, []byte(tmpl), 0o644)
}
