package config

import (
	"os"
	"strings"
	"testing"
)

func TestUpsertKeyReplacesInPlace(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "pagellm.env", "# my config\nMODEL_QUANT=Q2_K\nMODEL_PATH=/old/path.gguf\nTHREADS=8\n")
	if err := UpsertKey(p, "MODEL_PATH", "/new/model.gguf"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	got := string(b)
	want := "# my config\nMODEL_QUANT=Q2_K\nMODEL_PATH=/new/model.gguf\nTHREADS=8\n"
	if got != want {
		t.Fatalf("unexpected rewrite:\n%s", got)
	}
}

func TestUpsertKeyAppendsWhenAbsent(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "pagellm.env", "MODEL_QUANT=Q2_K\n")
	if err := UpsertKey(p, "MODEL_PATH", "/m/x.gguf"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	b, _ := os.ReadFile(p)
	if !strings.HasSuffix(string(b), "MODEL_PATH=/m/x.gguf\n") {
		t.Fatalf("expected appended key, got:\n%s", b)
	}
}

func TestUpsertKeyCreatesFile(t *testing.T) {
	p := t.TempDir() + "/fresh.env"
	if err := UpsertKey(p, "MODEL_PATH", "/m/y.gguf"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "MODEL_PATH=/m/y.gguf\n" {
		t.Fatalf("unexpected contents: %q", b)
	}
}
