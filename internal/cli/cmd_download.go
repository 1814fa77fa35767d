package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pagellm/internal/config"
	"pagellm/internal/download"
	"pagellm/internal/preflight"
)

func newDownloadCmd(a *app) *cobra.Command {
	var force bool
	var useHTTP bool
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Fetch the configured model quantization from the hub",
		Example: "  pagellm download\n  pagellm download --force\n  pagellm download --http",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			var fetcher download.Fetcher
			clientErr := preflight.CheckDownloadClient(cfg.DownloadClient)
			switch {
			case useHTTP:
				fetcher = &download.HTTPFetcher{Log: a.log}
			case clientErr == nil:
				fetcher = &download.ClientFetcher{Client: cfg.DownloadClient}
			case download.IsSingleFile(cfg.ModelQuant):
				a.log.Warn().Err(clientErr).Msg("download client missing; falling back to direct HTTP")
				fetcher = &download.HTTPFetcher{Log: a.log}
			default:
				return clientErr
			}

			if err := preflight.CheckDiskSpace(cfg, confirmStdin); err != nil {
				return err
			}

			o := &download.Orchestrator{
				Cfg:        cfg,
				ConfigPath: a.configPath,
				Fetcher:    fetcher,
				Policy:     download.PolicyFromConfig(cfg.DownloadMaxRetries, cfg.RetryDelay(), cfg.RetryCap()),
				Log:        a.log,
				Confirm:    confirmStdin,
			}
			if a.configPath == "" {
				o.ConfigPath = config.DefaultPath
			}
			if force {
				o.Confirm = func(string) bool { return true }
			}
			res, err := o.Run(cmd.Context())
			if err != nil {
				return err
			}
			green := color.New(color.FgGreen)
			switch {
			case res.Skipped:
				green.Printf("kept existing artifact: %s\n", res.Path)
			case res.Shards > 0:
				green.Printf("downloaded %d shards of %s (~%s), engine entry point: %s\n",
					res.Shards, cfg.ModelQuant, humanize.Bytes(preflight.EstimateBytes(cfg.ModelQuant)), res.Path)
			default:
				green.Printf("downloaded %s\n", res.Path)
			}
			fmt.Printf("MODEL_PATH recorded in %s after %d attempt(s)\n", o.ConfigPath, maxInt(res.Attempts, 1))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-download without prompting when the artifact already exists")
	cmd.Flags().BoolVar(&useHTTP, "http", false, "bypass the download client and fetch over plain HTTP")
	return cmd
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
