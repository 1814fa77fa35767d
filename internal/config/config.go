package config

import "time"

// Config holds every tunable the launcher knows about. It is built once at
// startup and passed by value; nothing in the process mutates it afterwards.
type Config struct {
	// Model selection
	HFRepo     string `json:"hf_repo" yaml:"hf_repo" toml:"hf_repo" validate:"required,contains=/"`
	ModelName  string `json:"model_name" yaml:"model_name" toml:"model_name" validate:"required"`
	ModelQuant string `json:"model_quant" yaml:"model_quant" toml:"model_quant" validate:"required,quant"`
	ModelPath  string `json:"model_path" yaml:"model_path" toml:"model_path"`
	ModelsDir  string `json:"models_dir" yaml:"models_dir" toml:"models_dir" validate:"required"`

	// Engine tunables
	ContextSize    int    `json:"context_size" yaml:"context_size" toml:"context_size" validate:"gte=0"`
	BatchSize      int    `json:"batch_size" yaml:"batch_size" toml:"batch_size" validate:"gte=0"`
	Threads        int    `json:"threads" yaml:"threads" toml:"threads" validate:"gte=0"`
	GPULayers      int    `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers" validate:"gte=0"`
	UseMMap        bool   `json:"use_mmap" yaml:"use_mmap" toml:"use_mmap"`
	UseMLock       bool   `json:"use_mlock" yaml:"use_mlock" toml:"use_mlock"`
	CacheTypeK     string `json:"cache_type_k" yaml:"cache_type_k" toml:"cache_type_k" validate:"omitempty,oneof=f32 f16 bf16 q8_0 q5_1 q5_0 q4_1 q4_0 iq4_nl"`
	CacheTypeV     string `json:"cache_type_v" yaml:"cache_type_v" toml:"cache_type_v" validate:"omitempty,oneof=f32 f16 bf16 q8_0 q5_1 q5_0 q4_1 q4_0 iq4_nl"`
	FlashAttention bool   `json:"flash_attention" yaml:"flash_attention" toml:"flash_attention"`
	SystemPrompt   string `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt"`
	RAMLimitGB     int    `json:"ram_limit_gb" yaml:"ram_limit_gb" toml:"ram_limit_gb" validate:"gte=0"`

	// Download policy
	DownloadClient     string `json:"download_client" yaml:"download_client" toml:"download_client" validate:"required"`
	DownloadTimeout    int    `json:"download_timeout" yaml:"download_timeout" toml:"download_timeout" validate:"gte=0"`
	DownloadMaxRetries int    `json:"download_max_retries" yaml:"download_max_retries" toml:"download_max_retries" validate:"gte=1"`
	DownloadRetryDelay int    `json:"download_retry_delay" yaml:"download_retry_delay" toml:"download_retry_delay" validate:"gte=1"`
	RetryDelayCap      int    `json:"retry_delay_cap" yaml:"retry_delay_cap" toml:"retry_delay_cap" validate:"gte=1"`

	// Server mode
	ServerHost string `json:"server_host" yaml:"server_host" toml:"server_host" validate:"required"`
	ServerPort int    `json:"server_port" yaml:"server_port" toml:"server_port" validate:"gt=0,lte=65535"`
	StatusPort int    `json:"status_port" yaml:"status_port" toml:"status_port" validate:"gt=0,lte=65535"`

	// External binaries
	EngineBin string `json:"engine_bin" yaml:"engine_bin" toml:"engine_bin" validate:"required"`
	ServerBin string `json:"server_bin" yaml:"server_bin" toml:"server_bin" validate:"required"`

	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Defaults returns the hardcoded baseline. Every key a config file omits
// keeps the value set here.
func Defaults() Config {
	return Config{
		HFRepo:             "unsloth/Llama-3.3-70B-Instruct-GGUF",
		ModelName:          "Llama-3.3-70B-Instruct",
		ModelQuant:         "Q4_K_M",
		ModelsDir:          "~/models/llm",
		ContextSize:        8192,
		BatchSize:          512,
		CacheTypeK:         "q8_0",
		CacheTypeV:         "q8_0",
		FlashAttention:     true,
		DownloadClient:     "huggingface-cli",
		DownloadMaxRetries: 5,
		DownloadRetryDelay: 5,
		RetryDelayCap:      300,
		ServerHost:         "127.0.0.1",
		ServerPort:         8080,
		StatusPort:         8091,
		EngineBin:          "llama-cli",
		ServerBin:          "llama-server",
		LogLevel:           "info",
	}
}

// KnownQuants lists every quantization label the loader accepts. Classifying
// a label as single-file vs sharded is a separate table owned by the
// download package.
var KnownQuants = []string{
	"IQ1_S", "IQ1_M",
	"IQ2_XXS", "IQ2_XS", "IQ2_S", "IQ2_M",
	"Q2_K", "Q2_K_L",
	"IQ3_XXS", "IQ3_XS", "IQ3_M",
	"Q3_K_S", "Q3_K_M", "Q3_K_L",
	"IQ4_XS", "IQ4_NL",
	"Q4_K_S", "Q4_K_M", "Q4_0", "Q4_1",
	"Q5_K_S", "Q5_K_M", "Q5_0", "Q5_1",
	"Q6_K",
	"Q8_0",
	"F16", "BF16",
}

// RetryDelay returns the initial backoff delay as a duration.
func (c Config) RetryDelay() time.Duration { return time.Duration(c.DownloadRetryDelay) * time.Second }

// RetryCap returns the backoff ceiling as a duration.
func (c Config) RetryCap() time.Duration { return time.Duration(c.RetryDelayCap) * time.Second }

// FetchTimeout returns the per-download timeout, zero meaning none.
func (c Config) FetchTimeout() time.Duration { return time.Duration(c.DownloadTimeout) * time.Second }

func knownQuant(q string) bool {
	for _, k := range KnownQuants {
		if k == q {
			return true
		}
	}
	return false
}
