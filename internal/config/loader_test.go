package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadEnvOverlaysDefaults(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "pagellm.env", strings.Join([]string{
		"# model selection",
		"MODEL_QUANT=Q4_K_M",
		"CONTEXT_SIZE=4096",
		"USE_MLOCK=true",
		"",
	}, "\n"))
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelQuant != "Q4_K_M" || cfg.ContextSize != 4096 || !cfg.UseMLock {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// Omitted keys keep hardcoded defaults.
	def := Defaults()
	if cfg.RAMLimitGB != def.RAMLimitGB {
		t.Fatalf("RAM_LIMIT default lost: %d", cfg.RAMLimitGB)
	}
	if cfg.CacheTypeK != def.CacheTypeK || cfg.CacheTypeV != def.CacheTypeV {
		t.Fatalf("cache type defaults lost: %q/%q", cfg.CacheTypeK, cfg.CacheTypeV)
	}
	if cfg.DownloadMaxRetries != def.DownloadMaxRetries {
		t.Fatalf("retry default lost: %d", cfg.DownloadMaxRetries)
	}
}

func TestLoadEnvQuoting(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.env", "SYSTEM_PROMPT=\"You are terse.\"\nSERVER_HOST='0.0.0.0'\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SystemPrompt != "You are terse." || cfg.ServerHost != "0.0.0.0" {
		t.Fatalf("unexpected: %q %q", cfg.SystemPrompt, cfg.ServerHost)
	}
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "model_quant: Q2_K\nserver_port: 9999\nthreads: 12\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelQuant != "Q2_K" || cfg.ServerPort != 9999 || cfg.Threads != 12 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "model_quant=\"Q8_0\"\ngpu_layers=99\nuse_mmap=false\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelQuant != "Q8_0" || cfg.GPULayers != 99 || cfg.UseMMap {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"model_name":"DeepSeek-R1","download_max_retries":3}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelName != "DeepSeek-R1" || cfg.DownloadMaxRetries != 3 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadAggregatesCoercionErrors(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.env", "CONTEXT_SIZE=huge\nUSE_MMAP=maybe\n")
	_, err := Load(p)
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "CONTEXT_SIZE") || !strings.Contains(msg, "USE_MMAP") {
		t.Fatalf("expected both fields reported, got: %v", err)
	}
}

func TestLoadRejectsUnknownQuant(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.env", "MODEL_QUANT=Q9_MAGIC\n")
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "Q9_MAGIC") {
		t.Fatalf("expected unknown quant error, got: %v", err)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.ini", "x=y\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
