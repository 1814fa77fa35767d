// Package engine builds argument lists for and launches the external
// inference binaries. The engine itself (llama.cpp's llama-cli and
// llama-server) is an opaque dependency; everything here is config-to-flag
// translation plus subprocess supervision.
package engine

import (
	"strconv"

	"pagellm/internal/config"
)

// commonArgs translates the settings shared by every mode.
//
// The memory flags are asymmetric on purpose: USE_MMAP=true appends --mmap
// and false appends nothing (never an explicit off flag), and USE_MLOCK=true
// appends --mlock while anything else is omitted. The engine's own defaults
// already favor paging-friendly operation, so "false" is expressed as
// absence, not negation. This is a pass-through contract with the engine,
// not something to normalize here.
func commonArgs(cfg config.Config, modelPath string) []string {
	args := []string{"-m", modelPath}
	if cfg.ContextSize > 0 {
		args = append(args, "-c", strconv.Itoa(cfg.ContextSize))
	}
	if cfg.BatchSize > 0 {
		args = append(args, "-b", strconv.Itoa(cfg.BatchSize))
	}
	if cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(cfg.Threads))
	}
	if cfg.GPULayers > 0 {
		args = append(args, "-ngl", strconv.Itoa(cfg.GPULayers))
	}
	if cfg.UseMMap {
		args = append(args, "--mmap")
	}
	if cfg.UseMLock {
		args = append(args, "--mlock")
	}
	if cfg.FlashAttention {
		args = append(args, "-fa")
	}
	return args
}

// BuildChatArgs builds the interactive conversation invocation.
func BuildChatArgs(cfg config.Config, modelPath string) []string {
	args := commonArgs(cfg, modelPath)
	args = append(args, "-cnv", "--color")
	if cfg.SystemPrompt != "" {
		args = append(args, "-sys", cfg.SystemPrompt)
	}
	return args
}

// BuildQueryArgs builds the one-shot invocation. With jsonOut set, a
// structured-output hint is appended to the system prompt rather than passed
// as a separate flag, since the engine has no native toggle for it.
func BuildQueryArgs(cfg config.Config, modelPath, prompt string, jsonOut bool) []string {
	args := commonArgs(cfg, modelPath)
	args = append(args, "-no-cnv", "--simple-io")
	sys := cfg.SystemPrompt
	if jsonOut {
		if sys != "" {
			sys += " "
		}
		sys += "Respond with valid JSON only, no prose."
	}
	if sys != "" {
		args = append(args, "-sys", sys)
	}
	return append(args, "-p", prompt)
}

// BuildServeArgs builds the HTTP server invocation, including the quantized
// KV-cache types.
func BuildServeArgs(cfg config.Config, modelPath string) []string {
	args := commonArgs(cfg, modelPath)
	args = append(args,
		"--host", cfg.ServerHost,
		"--port", strconv.Itoa(cfg.ServerPort),
	)
	if cfg.CacheTypeK != "" {
		args = append(args, "-ctk", cfg.CacheTypeK)
	}
	if cfg.CacheTypeV != "" {
		args = append(args, "-ctv", cfg.CacheTypeV)
	}
	return args
}
