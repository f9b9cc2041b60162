package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// CORS
	AllowedOrigin string

	// OpenAI
	OpenAIAPIKey    string
	ChatModel       string
	ExtractionModel string
	SearchModel     string
	ValidationModel string

	// Extraction
	MaxConcurrentExtract int

	// Upload limits
	MaxUploadBytes int64

	// LLM stats retention
	StatsWindow time.Duration

	// Client side
	ServerURL   string
	StateDir    string
	HTTPTimeout time.Duration
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8080"),

		AllowedOrigin: envOr("ALLOWED_ORIGIN", "*"),

		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		ChatModel:       envOr("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		ExtractionModel: envOr("OPENAI_EXTRACTION_MODEL", "gpt-4o"),
		SearchModel:     envOr("OPENAI_SEARCH_MODEL", "gpt-4o-search-preview"),
		ValidationModel: envOr("OPENAI_VALIDATION_MODEL", "gpt-4o-mini"),

		MaxConcurrentExtract: envInt("MAX_CONCURRENT_EXTRACT", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		StatsWindow: envDuration("LLM_STATS_WINDOW", time.Hour),

		ServerURL:   envOr("TAXASSIST_SERVER_URL", "http://localhost:8080"),
		StateDir:    envOr("TAXASSIST_STATE_DIR", defaultStateDir()),
		HTTPTimeout: envDuration("TAXASSIST_HTTP_TIMEOUT", 120*time.Second),
	}

	if cfg.MaxConcurrentExtract <= 0 {
		cfg.MaxConcurrentExtract = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = time.Hour
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 120 * time.Second
	}

	return cfg
}

// Validate checks the settings the backend cannot run without. The client
// binary does not call this; it only needs a server URL.
func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}

func defaultStateDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/taxassist"
	}
	return os.TempDir() + "/taxassist"
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
