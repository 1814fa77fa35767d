package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SaveModelPath records the resolved model path in the config file at path.
// Env files get a line-level upsert that leaves comments and ordering alone;
// structured formats are re-marshalled whole.
func SaveModelPath(path string, cfg Config, modelPath string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".env", "":
		return UpsertKey(path, "MODEL_PATH", modelPath)
	case ".yaml", ".yml":
		cfg.ModelPath = modelPath
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		return writeFile(path, b)
	case ".json":
		cfg.ModelPath = modelPath
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		return writeFile(path, append(b, '\n'))
	case ".toml":
		cfg.ModelPath = modelPath
		b, err := toml.Marshal(cfg)
		if err != nil {
			return err
		}
		return writeFile(path, b)
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
}

func writeFile(path string, b []byte) error {
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
