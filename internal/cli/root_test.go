package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"pagellm/internal/config"
)

func TestReadPromptFromArgs(t *testing.T) {
	got, err := readPrompt([]string{"hello", "world"})
	if err != nil {
		t.Fatalf("readPrompt: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("prompt = %q, want %q", got, "hello world")
	}
}

func TestRootHasSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"download", "chat", "ask", "serve", "stop", "status", "config", "install"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestExitCodeErrorUnwrap(t *testing.T) {
	var err error = &ExitCodeError{Code: 42}
	var ece *ExitCodeError
	if !errors.As(err, &ece) || ece.Code != 42 {
		t.Fatalf("errors.As failed for %v", err)
	}
}

func TestWriteTemplateRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagellm.env")
	if err := writeTemplate(path); err != nil {
		t.Fatalf("writeTemplate: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := config.Defaults()
	if cfg.HFRepo != d.HFRepo || cfg.ModelQuant != d.ModelQuant || cfg.ServerPort != d.ServerPort {
		t.Fatalf("template did not round-trip defaults: %+v", cfg)
	}
}
