package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"pagellm/internal/config"
)

// Result summarizes one orchestrated download.
type Result struct {
	Attempts int
	Path     string // resolved model path: the file, or the first shard
	Shards   int    // 0 for single-file artifacts
	Skipped  bool   // destination already held the artifact and was kept
}

// Orchestrator runs the full download flow: plan, existing-artifact prompt,
// fetch under retry, verification, and persisting the resolved path back to
// the config file.
type Orchestrator struct {
	Cfg        config.Config
	ConfigPath string
	Fetcher    Fetcher
	Policy     Policy
	Log        zerolog.Logger

	// Confirm asks the operator a yes/no question, used only when the
	// destination already contains a matching artifact. nil means "keep the
	// existing files" (never silently overwrite).
	Confirm func(prompt string) bool

	// Sleep overrides the backoff wait in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Run performs the download and returns what happened. The returned error is
// already remediation-worded; callers print it and exit non-zero.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	plan, err := NewPlan(o.Cfg)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(plan.DestDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create models dir: %w", err)
	}

	if plan.Exists() {
		prompt := fmt.Sprintf("%s already present in %s; re-download?", plan.Quant, plan.DestDir)
		if o.Confirm == nil || !o.Confirm(prompt) {
			o.Log.Info().Str("quant", plan.Quant).Msg("keeping existing artifact")
			res, err := o.finalize(plan, 0)
			res.Skipped = true
			return res, err
		}
	}

	kind := "sharded"
	if plan.SingleFile {
		kind = "single-file"
	}
	o.Log.Info().
		Str("repo", plan.Repo).
		Str("quant", plan.Quant).
		Str("kind", kind).
		Int("max_attempts", o.Policy.MaxAttempts).
		Msg("starting download")

	sleep := o.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	countedSleep := func(ctx context.Context, d time.Duration) error {
		retryWaitSeconds.Add(d.Seconds())
		o.Log.Warn().Dur("wait", d).Msg("retrying after backoff")
		return sleep(ctx, d)
	}

	attempts, err := o.Policy.Run(ctx, countedSleep, func(ctx context.Context, attempt int) error {
		o.Log.Info().Int("attempt", attempt).Str("fetcher", o.Fetcher.Name()).Msg("fetching")
		fctx := ctx
		if t := o.Cfg.FetchTimeout(); t > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(ctx, t)
			defer cancel()
		}
		if ferr := o.Fetcher.Fetch(fctx, plan); ferr != nil {
			attemptsTotal.WithLabelValues("failure").Inc()
			o.Log.Error().Err(ferr).Int("attempt", attempt).Msg("fetch failed")
			return ferr
		}
		attemptsTotal.WithLabelValues("success").Inc()
		return nil
	})
	if err != nil {
		return Result{Attempts: attempts}, fmt.Errorf(
			"download of %s (%s) failed: %w\ncheck network connectivity, confirm the repo name, and verify hub authentication (`%s whoami` or HF_TOKEN); then re-run the download",
			plan.Repo, plan.Quant, err, o.Cfg.DownloadClient)
	}

	res, err := o.finalize(plan, attempts)
	if err != nil {
		return res, err
	}
	if res.Shards > 0 {
		o.Log.Info().Int("shards", res.Shards).Str("first", res.Path).Msg("download complete")
	} else {
		o.Log.Info().Str("path", res.Path).Msg("download complete")
	}
	return res, nil
}

// finalize verifies the artifact landed and records the resolved path in the
// config file: the file itself for single-file quants, the first shard for
// sharded ones.
func (o *Orchestrator) finalize(plan Plan, attempts int) (Result, error) {
	res := Result{Attempts: attempts}
	if plan.SingleFile {
		fi, err := os.Stat(plan.LocalPath())
		if err != nil || fi.IsDir() {
			return res, fmt.Errorf("expected %s after download: %w", plan.LocalPath(), err)
		}
		res.Path = plan.LocalPath()
	} else {
		shards, err := plan.Shards()
		if err != nil || len(shards) == 0 {
			return res, fmt.Errorf("no shards found under %s after download", plan.ShardDir())
		}
		res.Path = shards[0]
		res.Shards = len(shards)
	}
	if o.ConfigPath != "" {
		if err := config.SaveModelPath(o.ConfigPath, o.Cfg, res.Path); err != nil {
			return res, fmt.Errorf("record model path: %w", err)
		}
	}
	return res, nil
}

// FirstShardName is a helper for messages: the canonical name of shard 1 of n.
func FirstShardName(p Plan, n int) string {
	return filepath.Join(p.ShardDir(), fmt.Sprintf("%s-%s-00001-of-%05d.gguf", p.ModelName, p.Quant, n))
}
