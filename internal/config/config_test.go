package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MAX_CONCURRENT_EXTRACT", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("ChatModel = %q, want gpt-4o-mini", cfg.ChatModel)
	}
	if cfg.ExtractionModel != "gpt-4o" {
		t.Errorf("ExtractionModel = %q, want gpt-4o", cfg.ExtractionModel)
	}
	if cfg.MaxConcurrentExtract != 4 {
		t.Errorf("MaxConcurrentExtract = %d, want 4", cfg.MaxConcurrentExtract)
	}
	if cfg.StatsWindow != time.Hour {
		t.Errorf("StatsWindow = %v, want 1h", cfg.StatsWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_CONCURRENT_EXTRACT", "2")
	t.Setenv("LLM_STATS_WINDOW", "30m")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.MaxConcurrentExtract != 2 {
		t.Errorf("MaxConcurrentExtract = %d, want 2", cfg.MaxConcurrentExtract)
	}
	if cfg.StatsWindow != 30*time.Minute {
		t.Errorf("StatsWindow = %v, want 30m", cfg.StatsWindow)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes = %d, want 1024", cfg.MaxUploadBytes)
	}
}

func TestLoadSanitizesBadValues(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_EXTRACT", "-3")
	t.Setenv("MAX_UPLOAD_BYTES", "0")

	cfg := Load()

	if cfg.MaxConcurrentExtract != 4 {
		t.Errorf("MaxConcurrentExtract = %d, want fallback 4", cfg.MaxConcurrentExtract)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("MaxUploadBytes = %d, want fallback", cfg.MaxUploadBytes)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when OPENAI_API_KEY is missing")
	}
	cfg.OpenAIAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
