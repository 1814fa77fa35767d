package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pagellm/internal/config"
	"pagellm/internal/executil"
	"pagellm/internal/preflight"
)

// ErrNotRunning is returned by Stop when no engine server process is found.
var ErrNotRunning = errors.New("engine server is not running")

const defaultHealthTimeout = 60 * time.Second

// RunForeground runs the engine binary with the child inheriting stdio, so
// interactive chat behaves exactly as if the engine were invoked directly.
// The child's exit code is recoverable via executil.ExitCode.
func RunForeground(ctx context.Context, bin string, args []string) error {
	return executil.Run(ctx, executil.Cmd{Path: bin, Args: args})
}

// Launcher supervises serve mode: spawn the engine server, wait for its
// health endpoint, then sit in the foreground until it exits or the context
// is canceled.
type Launcher struct {
	Cfg       config.Config
	ModelPath string
	Log       zerolog.Logger

	// HealthTimeout bounds the readiness wait; zero means the default.
	HealthTimeout time.Duration

	// OnReady fires once the engine answers its health endpoint, with the
	// engine's base URL. Used to bring up the status sidecar.
	OnReady func(baseURL string)
}

// Serve launches the engine server. The port probe runs before the
// subprocess command is even constructed; a bound port means nothing is
// spawned.
func (l *Launcher) Serve(ctx context.Context) error {
	if err := preflight.CheckPortFree(l.Cfg.ServerHost, l.Cfg.ServerPort); err != nil {
		return err
	}
	args := BuildServeArgs(l.Cfg, l.ModelPath)
	baseURL := fmt.Sprintf("http://%s:%d", l.Cfg.ServerHost, l.Cfg.ServerPort)

	cmd := exec.CommandContext(ctx, l.Cfg.ServerBin, args...)
	var stderrTail bytes.Buffer
	cmd.Stdout = os.Stdout
	cmd.Stderr = &tailWriter{dst: os.Stderr, tail: &stderrTail}
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = 10 * time.Second

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", l.Cfg.ServerBin, err)
	}
	l.Log.Info().Int("pid", cmd.Process.Pid).Str("url", baseURL).Msg("engine server starting")

	waitErrCh := make(chan error, 1)
	go func() { waitErrCh <- cmd.Wait() }()

	if err := l.waitReady(ctx, baseURL, waitErrCh, &stderrTail); err != nil {
		return err
	}
	l.Log.Info().Str("url", baseURL).Msg("engine server ready")
	if l.OnReady != nil {
		l.OnReady(baseURL)
	}

	err := <-waitErrCh
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("engine server exited: %w", err)
	}
	l.Log.Info().Msg("engine server stopped")
	return nil
}

// waitReady polls the engine health endpoint, surfacing an early exit (with
// a stderr tail) instead of waiting out the full deadline.
func (l *Launcher) waitReady(ctx context.Context, baseURL string, waitErrCh <-chan error, stderrTail *bytes.Buffer) error {
	timeout := l.HealthTimeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: time.Second}
	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("engine server not ready within %s: %s", timeout, baseURL)
		}
		select {
		case werr := <-waitErrCh:
			tail := stderrTail.String()
			if len(tail) > 4096 {
				tail = tail[len(tail)-4096:]
			}
			if werr != nil {
				return fmt.Errorf("engine server exited early: %v; stderr tail: %s", werr, tail)
			}
			return fmt.Errorf("engine server exited before ready: %s", baseURL)
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		rctx, cancel := context.WithTimeout(ctx, time.Second)
		req, _ := http.NewRequestWithContext(rctx, http.MethodGet, baseURL+"/health", nil)
		resp, err := client.Do(req)
		cancel()
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
		}
		time.Sleep(250 * time.Millisecond)
	}
}

// Stop finds the engine server by process name and sends SIGTERM. There is
// deliberately no pidfile; the process name is the contract.
func Stop(cfg config.Config, log zerolog.Logger) error {
	name := filepath.Base(cfg.ServerBin)
	n, err := executil.SignalByName(name, syscall.SIGTERM)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: no process named %q", ErrNotRunning, name)
	}
	log.Info().Int("signalled", n).Str("name", name).Msg("sent SIGTERM")
	return nil
}

// Healthy reports whether a server answers its health endpoint.
func Healthy(baseURL string, timeout time.Duration) bool {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// tailWriter forwards writes and keeps a bounded copy for diagnostics.
type tailWriter struct {
	dst  *os.File
	tail *bytes.Buffer
}

func (t *tailWriter) Write(p []byte) (int, error) {
	if t.tail.Len() < 64*1024 {
		t.tail.Write(p)
	}
	return t.dst.Write(p)
}
