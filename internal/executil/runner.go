package executil

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Cmd describes one external invocation.
type Cmd struct {
	Path   string
	Args   []string
	Env    map[string]string // additional env vars on top of the inherited ones
	Dir    string            // working directory
	Stdin  io.Reader
	Stream io.Writer // if set, stdout+stderr are line-streamed here instead of inherited
}

// Run executes c and waits for completion. The child inherits the parent
// environment plus c.Env. With Stream unset the child shares the parent's
// stdio, which is what the interactive engine modes need.
func Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	if c.Stdin != nil {
		cmd.Stdin = c.Stdin
	} else {
		cmd.Stdin = os.Stdin
	}
	if c.Stream != nil {
		stdout, _ := cmd.StdoutPipe()
		stderr, _ := cmd.StderrPipe()
		if err := cmd.Start(); err != nil {
			return err
		}
		go streamLines(c.Stream, stdout)
		go streamLines(c.Stream, stderr)
		return cmd.Wait()
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Output runs c and returns its combined output, for short probe commands.
func Output(ctx context.Context, c Cmd) (string, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}

// ExitCode extracts the child's exit status from a Run error. Returns -1
// when the process never ran or was signalled.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

func streamLines(w io.Writer, r io.Reader) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		fmt.Fprintln(w, s.Text())
	}
}
