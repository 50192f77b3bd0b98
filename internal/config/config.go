package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	ServiceAPIKey string

	// Storage
	DataDir   string
	OutputDir string

	// OpenRouter oracle
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OracleModel       string
	AllowedModels     []string
	OracleTimeout     time.Duration
	OracleMaxRetries  int

	// Pipeline
	WindowSize           int
	MaxConcurrentExtract int

	// Run scheduling
	WorkerCount  int
	MaxQueueSize int
	RunTTL       time.Duration

	// Upload limits
	MaxUploadBytes int64
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ServiceAPIKey: os.Getenv("POLICYPARSE_API_KEY"),

		DataDir:   envOr("DATA_DIR", "data"),
		OutputDir: envOr("OUTPUT_DIR", "outputs"),

		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: envOr("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OracleModel:       envOr("ORACLE_MODEL", "openai/gpt-5-mini"),
		AllowedModels:     envList("ALLOWED_MODELS", []string{"openai/gpt-5", "openai/gpt-5-mini"}),
		OracleTimeout:     envDuration("ORACLE_TIMEOUT", 120*time.Second),
		OracleMaxRetries:  envInt("ORACLE_MAX_RETRIES", 3),

		WindowSize:           envInt("WINDOW_SIZE", 5),
		MaxConcurrentExtract: envInt("MAX_CONCURRENT_EXTRACT", 4),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),
		RunTTL:       envDuration("RUN_TTL", 1*time.Hour),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
	}

	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 5
	}
	if cfg.MaxConcurrentExtract <= 0 {
		cfg.MaxConcurrentExtract = 4
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = 1 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.OracleMaxRetries < 0 {
		cfg.OracleMaxRetries = 3
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ServiceAPIKey == "" {
		return fmt.Errorf("POLICYPARSE_API_KEY is required")
	}
	if c.OpenRouterAPIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if !c.ModelAllowed(c.OracleModel) {
		return fmt.Errorf("model %q is not in the allowed model list %v", c.OracleModel, c.AllowedModels)
	}
	return nil
}

// ModelAllowed reports whether the given oracle model is sanctioned.
func (c Config) ModelAllowed(model string) bool {
	for _, m := range c.AllowedModels {
		if m == model {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
