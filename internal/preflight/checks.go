// Package preflight verifies everything a launch or download needs before
// anything is spawned. Checks run in a fixed order and the first failure
// aborts: there is no partial-success state.
package preflight

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"pagellm/internal/config"
	"pagellm/internal/download"
	"pagellm/internal/executil"
)

var (
	ErrEngineMissing = errors.New("inference engine binary not found")
	ErrClientMissing = errors.New("download client not found")
	ErrModelMissing  = errors.New("model artifact not found")
	ErrDiskSpace     = errors.New("insufficient disk space")
	ErrPortBusy      = errors.New("server port already in use")
)

// CheckEngine resolves the engine binary on PATH.
func CheckEngine(bin string) error {
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%w: %q is not on PATH; install llama.cpp or set ENGINE_BIN/SERVER_BIN", ErrEngineMissing, bin)
	}
	return nil
}

// CheckDownloadClient resolves the configured download client on PATH.
func CheckDownloadClient(client string) error {
	if _, err := exec.LookPath(client); err != nil {
		return fmt.Errorf("%w: %q is not on PATH; `pip install huggingface_hub[cli]` or set DOWNLOAD_CLIENT", ErrClientMissing, client)
	}
	return nil
}

// CheckModelPresent verifies the configured model file, or the shard set for
// the configured quant, exists on disk.
func CheckModelPresent(cfg config.Config) error {
	if cfg.ModelPath != "" {
		if fi, err := os.Stat(cfg.ModelPath); err == nil && !fi.IsDir() {
			return nil
		}
		return fmt.Errorf("%w: MODEL_PATH points at %s but nothing is there; run the download first", ErrModelMissing, cfg.ModelPath)
	}
	plan, err := download.NewPlan(cfg)
	if err != nil {
		return err
	}
	if plan.Exists() {
		return nil
	}
	return fmt.Errorf("%w: no %s artifact for %s under %s; run the download first", ErrModelMissing, cfg.ModelQuant, cfg.ModelName, plan.DestDir)
}

// CheckDiskSpace compares free bytes in the models dir against the estimate
// for the requested quant tier. On shortfall the operator may confirm to
// proceed anyway; this is the only check with an interactive escape hatch.
func CheckDiskSpace(cfg config.Config, confirm func(prompt string) bool) error {
	dir, err := cfg.ResolvedModelsDir()
	if err != nil {
		return err
	}
	need := EstimateBytes(cfg.ModelQuant)
	free, err := freeBytes(dir)
	if err != nil {
		// Models dir not created yet; nothing meaningful to measure.
		return nil
	}
	if free >= need {
		return nil
	}
	msg := fmt.Sprintf("quant %s needs roughly %d GiB but only %d GiB are free in %s",
		cfg.ModelQuant, need>>30, free>>30, dir)
	if confirm != nil && confirm(msg+"; continue anyway?") {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDiskSpace, msg)
}

// CheckPortFree probes the serve-mode listen address. Advisory only: the
// race between this probe and the engine's bind is accepted.
func CheckPortFree(host string, port int) error {
	if executil.IsPortBusy(host, port) {
		return fmt.Errorf("%w: %s:%d already has a listener; stop it or change SERVER_PORT", ErrPortBusy, host, port)
	}
	return nil
}

// ForDownload runs the checks a download needs, in order.
func ForDownload(cfg config.Config, confirm func(string) bool) error {
	if err := CheckDownloadClient(cfg.DownloadClient); err != nil {
		return err
	}
	return CheckDiskSpace(cfg, confirm)
}

// ForLaunch runs the checks chat and query modes need, in order.
func ForLaunch(cfg config.Config) error {
	if err := CheckEngine(cfg.EngineBin); err != nil {
		return err
	}
	return CheckModelPresent(cfg)
}

// ForServe runs the serve-mode checks: engine, model, then the port probe.
func ForServe(cfg config.Config) error {
	if err := CheckEngine(cfg.ServerBin); err != nil {
		return err
	}
	if err := CheckModelPresent(cfg); err != nil {
		return err
	}
	return CheckPortFree(cfg.ServerHost, cfg.ServerPort)
}
