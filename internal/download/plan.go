package download

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"pagellm/internal/config"
)

// Plan is the transient download descriptor: where the artifact lives
// upstream, whether it is sharded, and where it lands locally. Computed once
// per attempt set, never persisted.
type Plan struct {
	Repo       string
	ModelName  string
	Quant      string
	SingleFile bool

	// FileName is the artifact name for single-file quants,
	// e.g. Llama-3.3-70B-Instruct-Q2_K.gguf.
	FileName string

	// IncludePattern is the client-side include glob for sharded quants,
	// scoped to the quant-named subdirectory, e.g. Q8_0/Model-Q8_0-*.gguf.
	IncludePattern string

	// DestDir is the resolved models directory. Sharded artifacts land under
	// DestDir/Quant.
	DestDir string
}

// NewPlan derives a Plan from configuration.
func NewPlan(cfg config.Config) (Plan, error) {
	dest, err := cfg.ResolvedModelsDir()
	if err != nil {
		return Plan{}, err
	}
	p := Plan{
		Repo:       cfg.HFRepo,
		ModelName:  cfg.ModelName,
		Quant:      cfg.ModelQuant,
		SingleFile: IsSingleFile(cfg.ModelQuant),
		DestDir:    dest,
	}
	if p.SingleFile {
		p.FileName = fmt.Sprintf("%s-%s.gguf", p.ModelName, p.Quant)
	} else {
		p.IncludePattern = fmt.Sprintf("%s/%s-%s-*.gguf", p.Quant, p.ModelName, p.Quant)
	}
	return p, nil
}

// ShardDir is the local directory sharded artifacts land in.
func (p Plan) ShardDir() string { return filepath.Join(p.DestDir, p.Quant) }

// LocalPath is the single-file destination path.
func (p Plan) LocalPath() string { return filepath.Join(p.DestDir, p.FileName) }

func (p Plan) shardGlob() string {
	return filepath.Join(p.ShardDir(), fmt.Sprintf("%s-%s-*.gguf", p.ModelName, p.Quant))
}

// Exists reports whether the destination already holds a matching file
// (single) or at least one matching shard (sharded).
func (p Plan) Exists() bool {
	if p.SingleFile {
		fi, err := os.Stat(p.LocalPath())
		return err == nil && !fi.IsDir()
	}
	matches, err := filepath.Glob(p.shardGlob())
	return err == nil && len(matches) > 0
}

// Shards returns the sorted on-disk shard paths. The first entry is the
// 00001-of-NNNNN shard the engine is pointed at.
func (p Plan) Shards() ([]string, error) {
	matches, err := filepath.Glob(p.shardGlob())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// ResolveModelPath returns the path the engine should be pointed at:
// MODEL_PATH when set and present, otherwise the on-disk artifact for the
// configured quant (the file, or the first shard).
func ResolveModelPath(cfg config.Config) (string, error) {
	if cfg.ModelPath != "" {
		if fi, err := os.Stat(cfg.ModelPath); err == nil && !fi.IsDir() {
			return cfg.ModelPath, nil
		}
	}
	p, err := NewPlan(cfg)
	if err != nil {
		return "", err
	}
	if p.SingleFile {
		if fi, err := os.Stat(p.LocalPath()); err == nil && !fi.IsDir() {
			return p.LocalPath(), nil
		}
	} else {
		shards, err := p.Shards()
		if err == nil && len(shards) > 0 {
			return shards[0], nil
		}
	}
	return "", fmt.Errorf("no %s artifact for %s under %s", p.Quant, p.ModelName, p.DestDir)
}
