package engine

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/rs/zerolog"

	"pagellm/internal/config"
	"pagellm/internal/executil"
	"pagellm/internal/preflight"
)

func TestServeAbortsOnBusyPortBeforeSpawning(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	cfg := config.Defaults()
	cfg.ServerHost = "127.0.0.1"
	cfg.ServerPort = l.Addr().(*net.TCPAddr).Port
	// A binary that cannot exist: were the launcher to get past the port
	// probe, the error would be about spawning, not the port.
	cfg.ServerBin = "pagellm-no-such-server"

	launcher := &Launcher{Cfg: cfg, ModelPath: "/m/x.gguf", Log: zerolog.Nop()}
	err = launcher.Serve(context.Background())
	if !errors.Is(err, preflight.ErrPortBusy) {
		t.Fatalf("expected port-busy abort before any spawn, got %v", err)
	}
}

func TestServeSpawnFailureSurfaced(t *testing.T) {
	cfg := config.Defaults()
	cfg.ServerHost = "127.0.0.1"
	port, err := executil.ChooseFreePort("127.0.0.1")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	cfg.ServerPort = port
	cfg.ServerBin = "pagellm-no-such-server"

	launcher := &Launcher{Cfg: cfg, ModelPath: "/m/x.gguf", Log: zerolog.Nop()}
	err = launcher.Serve(context.Background())
	if err == nil || errors.Is(err, preflight.ErrPortBusy) {
		t.Fatalf("expected spawn failure, got %v", err)
	}
}

func TestRunForegroundExitCode(t *testing.T) {
	err := RunForeground(context.Background(), "sh", []string{"-c", "exit 3"})
	if got := executil.ExitCode(err); got != 3 {
		t.Fatalf("exit code: got %d", got)
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	cfg := config.Defaults()
	cfg.ServerBin = "pagellm-no-such-server"
	err := Stop(cfg, zerolog.Nop())
	if !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}
