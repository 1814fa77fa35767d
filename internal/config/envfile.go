package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnvFile overlays KEY=VALUE lines onto cfg. Blank lines and lines
// starting with '#' are skipped. Unknown keys are ignored so the file can
// carry unrelated variables. Coercion errors are collected and reported
// together rather than one at a time.
func applyEnvFile(cfg *Config, content string) error {
	var errs []string
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			errs = append(errs, fmt.Sprintf("line %d: not KEY=VALUE: %q", i+1, line))
			continue
		}
		key = strings.TrimSpace(key)
		val = unquote(strings.TrimSpace(val))
		if err := setKey(cfg, key, val); err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", i+1, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func setKey(cfg *Config, key, val string) error {
	switch key {
	case "HF_REPO":
		cfg.HFRepo = val
	case "MODEL_NAME":
		cfg.ModelName = val
	case "MODEL_QUANT":
		cfg.ModelQuant = val
	case "MODEL_PATH":
		cfg.ModelPath = val
	case "MODELS_DIR":
		cfg.ModelsDir = val
	case "CONTEXT_SIZE":
		return setInt(&cfg.ContextSize, key, val)
	case "BATCH_SIZE":
		return setInt(&cfg.BatchSize, key, val)
	case "THREADS":
		return setInt(&cfg.Threads, key, val)
	case "GPU_LAYERS":
		return setInt(&cfg.GPULayers, key, val)
	case "USE_MMAP":
		return setBool(&cfg.UseMMap, key, val)
	case "USE_MLOCK":
		return setBool(&cfg.UseMLock, key, val)
	case "CACHE_TYPE_K":
		cfg.CacheTypeK = val
	case "CACHE_TYPE_V":
		cfg.CacheTypeV = val
	case "FLASH_ATTENTION":
		return setBool(&cfg.FlashAttention, key, val)
	case "SYSTEM_PROMPT":
		cfg.SystemPrompt = val
	case "RAM_LIMIT", "RAM_LIMIT_GB":
		return setInt(&cfg.RAMLimitGB, key, val)
	case "DOWNLOAD_CLIENT":
		cfg.DownloadClient = val
	case "DOWNLOAD_TIMEOUT":
		return setInt(&cfg.DownloadTimeout, key, val)
	case "DOWNLOAD_MAX_RETRIES":
		return setInt(&cfg.DownloadMaxRetries, key, val)
	case "DOWNLOAD_RETRY_DELAY":
		return setInt(&cfg.DownloadRetryDelay, key, val)
	case "RETRY_DELAY_CAP":
		return setInt(&cfg.RetryDelayCap, key, val)
	case "SERVER_HOST":
		cfg.ServerHost = val
	case "SERVER_PORT":
		return setInt(&cfg.ServerPort, key, val)
	case "STATUS_PORT":
		return setInt(&cfg.StatusPort, key, val)
	case "ENGINE_BIN":
		cfg.EngineBin = val
	case "SERVER_BIN":
		cfg.ServerBin = val
	case "LOG_LEVEL":
		cfg.LogLevel = strings.ToLower(val)
	}
	return nil
}

func setInt(dst *int, key, val string) error {
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%s: not an integer: %q", key, val)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, val string) error {
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		return fmt.Errorf("%s: not a boolean: %q", key, val)
	}
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// UpsertKey rewrites the env file at path so that key holds val, preserving
// every other line (comments included) in place. The key is appended when
// absent; the file is created when missing. This is the only persisted state
// the tool writes, used to record MODEL_PATH after a download.
func UpsertKey(path, key, val string) error {
	var lines []string
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		lines = strings.Split(strings.TrimRight(string(b), "\n"), "\n")
		if len(lines) == 1 && lines[0] == "" {
			lines = nil
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("read config: %w", err)
	}
	found := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, key+"=") || strings.HasPrefix(trimmed, key+" ") && strings.Contains(trimmed, "=") {
			lines[i] = key + "=" + val
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, key+"="+val)
	}
	out := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
