package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	LLMProvider    string // "bedrock", "gemini", or "bedrock+gemini" for fallback
	LLMMaxTokens   int
	LLMTemperature float64

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	BedrockModelID      string

	GeminiAPIKey  string
	GeminiModelID string
}

// ConfigurationError reports a missing or invalid required setting. It is
// fatal for the whole process, not for a single turn.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Setting, e.Reason)
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 30*time.Minute),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "bedrock"))),
		LLMMaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 1024),
		LLMTemperature: getEnvAsFloat("LLM_TEMPERATURE", 0.2),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", ""),
	}
}

// Validate reports the first fatal configuration problem. A missing LLM
// credential or session store address means no turn can ever succeed, so the
// process should refuse to start rather than fail on every request.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RedisAddr) == "" {
		return &ConfigurationError{Setting: "REDIS_ADDR", Reason: "is required for session storage"}
	}

	switch c.LLMProvider {
	case "bedrock":
		if strings.TrimSpace(c.BedrockModelID) == "" {
			return &ConfigurationError{Setting: "BEDROCK_MODEL_ID", Reason: "is required when LLM_PROVIDER=bedrock"}
		}
	case "gemini":
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return &ConfigurationError{Setting: "GEMINI_API_KEY", Reason: "is required when LLM_PROVIDER=gemini"}
		}
	case "bedrock+gemini":
		if strings.TrimSpace(c.BedrockModelID) == "" {
			return &ConfigurationError{Setting: "BEDROCK_MODEL_ID", Reason: "is required when LLM_PROVIDER=bedrock+gemini"}
		}
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return &ConfigurationError{Setting: "GEMINI_API_KEY", Reason: "is required when LLM_PROVIDER=bedrock+gemini"}
		}
	default:
		return &ConfigurationError{Setting: "LLM_PROVIDER", Reason: fmt.Sprintf("has unknown value %q", c.LLMProvider)}
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
