package executil

import (
	"bytes"
	"context"
	"net"
	"os"
	"strings"
	"testing"
)

func TestRunStreams(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), Cmd{Path: "sh", Args: []string{"-c", "echo one; echo two 1>&2"}, Stream: &buf})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "one") || !strings.Contains(out, "two") {
		t.Fatalf("missing streamed output: %q", out)
	}
}

func TestRunEnvOverlay(t *testing.T) {
	out, err := Output(context.Background(), Cmd{Path: "sh", Args: []string{"-c", "echo $PAGELLM_T"}})
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("unexpected baseline: %q", out)
	}
	var buf bytes.Buffer
	if err := Run(context.Background(), Cmd{Path: "sh", Args: []string{"-c", "echo $PAGELLM_T"}, Env: map[string]string{"PAGELLM_T": "v1"}, Stream: &buf}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "v1" {
		t.Fatalf("env not applied: %q", buf.String())
	}
}

func TestExitCode(t *testing.T) {
	err := Run(context.Background(), Cmd{Path: "sh", Args: []string{"-c", "exit 7"}, Stream: new(bytes.Buffer)})
	if err == nil {
		t.Fatalf("expected failure")
	}
	if got := ExitCode(err); got != 7 {
		t.Fatalf("exit code: got %d", got)
	}
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("nil error: got %d", got)
	}
}

func TestPortProbes(t *testing.T) {
	port, err := ChooseFreePort("127.0.0.1")
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if IsPortBusy("127.0.0.1", port) {
		t.Fatalf("fresh port %d reported busy", port)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	busy := l.Addr().(*net.TCPAddr).Port
	if !IsPortBusy("127.0.0.1", busy) {
		t.Fatalf("bound port %d reported free", busy)
	}
}

func TestFindPIDsByNameSelf(t *testing.T) {
	comm, err := os.ReadFile("/proc/self/comm")
	if err != nil {
		t.Skipf("no /proc: %v", err)
	}
	// The test binary is excluded (self) so an arbitrary missing name must
	// return an empty slice without error.
	_ = comm
	pids, err := FindPIDsByName("pagellm-does-not-exist")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(pids) != 0 {
		t.Fatalf("unexpected pids: %v", pids)
	}
}
