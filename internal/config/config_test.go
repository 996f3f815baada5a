package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.LLMProvider != "bedrock" {
		t.Errorf("expected default LLM provider bedrock, got %s", cfg.LLMProvider)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected default session TTL 30m, got %s", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LLM_PROVIDER", "GEMINI")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port override, got %s", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("expected lowercased provider gemini, got %s", cfg.LLMProvider)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("expected session TTL 2h, got %s", cfg.SessionTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantSetting string
	}{
		{
			name:   "valid bedrock",
			mutate: func(c *Config) {},
		},
		{
			name:        "missing redis addr",
			mutate:      func(c *Config) { c.RedisAddr = "" },
			wantSetting: "REDIS_ADDR",
		},
		{
			name:        "bedrock without model",
			mutate:      func(c *Config) { c.BedrockModelID = "" },
			wantSetting: "BEDROCK_MODEL_ID",
		},
		{
			name: "gemini without key",
			mutate: func(c *Config) {
				c.LLMProvider = "gemini"
				c.GeminiAPIKey = ""
			},
			wantSetting: "GEMINI_API_KEY",
		},
		{
			name: "fallback needs both",
			mutate: func(c *Config) {
				c.LLMProvider = "bedrock+gemini"
				c.GeminiAPIKey = ""
			},
			wantSetting: "GEMINI_API_KEY",
		},
		{
			name:        "unknown provider",
			mutate:      func(c *Config) { c.LLMProvider = "llama-in-a-basement" },
			wantSetting: "LLM_PROVIDER",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				RedisAddr:      "localhost:6379",
				LLMProvider:    "bedrock",
				BedrockModelID: "anthropic.claude-3-haiku-20240307-v1:0",
				GeminiAPIKey:   "key",
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantSetting == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Setting != tc.wantSetting {
				t.Errorf("expected setting %s, got %s", tc.wantSetting, cfgErr.Setting)
			}
		})
	}
}
