// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported providers for disease prediction.
const (
	ProviderGemini   = "gemini"
	ProviderMoonshot = "moonshot"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetMaxBodyBytes() int64
}

// RateLimitConfig provides settings for the optional per-IP limiter.
type RateLimitConfig interface {
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
	IsRateLimitEnabled() bool
}

// GeminiConfig provides settings for the Gemini provider.
type GeminiConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetGeminiBaseURL() string
}

// MoonshotConfig provides settings for the Moonshot (Kimi) provider.
type MoonshotConfig interface {
	GetMoonshotAPIKey() string
	GetMoonshotModel() string
	GetMoonshotBaseURL() string
}

// AIConfig provides everything the relay module needs to reach its providers.
type AIConfig interface {
	GeminiConfig
	MoonshotConfig
	GetPredictionProvider() string
	GetAITimeout() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	MaxBodyBytes       int64
	RateLimitRPS       float64
	RateLimitBurst     int
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	MoonshotAPIKey     string
	MoonshotModel      string
	MoonshotBaseURL    string
	PredictionProvider string
	AITimeout          time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetMaxBodyBytes() int64   { return c.MaxBodyBytes }

// RateLimitConfig implementation
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }
func (c *Config) IsRateLimitEnabled() bool { return c.RateLimitRPS > 0 }

// GeminiConfig implementation
func (c *Config) GetGeminiAPIKey() string  { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string   { return c.GeminiModel }
func (c *Config) GetGeminiBaseURL() string { return c.GeminiBaseURL }

// MoonshotConfig implementation
func (c *Config) GetMoonshotAPIKey() string  { return c.MoonshotAPIKey }
func (c *Config) GetMoonshotModel() string   { return c.MoonshotModel }
func (c *Config) GetMoonshotBaseURL() string { return c.MoonshotBaseURL }

// AIConfig implementation
func (c *Config) GetPredictionProvider() string { return c.PredictionProvider }
func (c *Config) GetAITimeout() time.Duration   { return c.AITimeout }

// Load reads configuration from environment variables.
// A missing GEMINI_API_KEY is not an error here: the server still starts and
// provider calls fail at invocation time.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "*"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	maxBodyBytes, err := envInt64("MAX_BODY_BYTES", 1048576)
	if err != nil {
		return nil, err
	}
	rateLimitRPS, err := envFloat("RATE_LIMIT_RPS", 0)
	if err != nil {
		return nil, err
	}
	rateLimitBurst, err := envInt64("RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, err
	}
	aiTimeout, err := envDuration("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           ":" + getEnv("PORT", "5000"),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		MaxBodyBytes:       maxBodyBytes,
		RateLimitRPS:       rateLimitRPS,
		RateLimitBurst:     int(rateLimitBurst),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", ""),
		MoonshotAPIKey:     getEnv("MOONSHOT_API_KEY", ""),
		MoonshotModel:      getEnv("MOONSHOT_MODEL", "kimi-k2-turbo-preview"),
		MoonshotBaseURL:    getEnv("MOONSHOT_BASE_URL", ""),
		PredictionProvider: strings.ToLower(strings.TrimSpace(getEnv("PREDICTION_PROVIDER", ProviderGemini))),
		AITimeout:          aiTimeout,
	}

	switch cfg.PredictionProvider {
	case ProviderGemini:
	case ProviderMoonshot:
		if cfg.MoonshotAPIKey == "" {
			return nil, fmt.Errorf("MOONSHOT_API_KEY is required when PREDICTION_PROVIDER is moonshot")
		}
	default:
		return nil, fmt.Errorf("PREDICTION_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderMoonshot, cfg.PredictionProvider)
	}
	if cfg.AITimeout <= 0 {
		return nil, fmt.Errorf("AI_TIMEOUT must be a positive duration")
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST cannot be negative")
	}
	if cfg.IsRateLimitEnabled() && cfg.RateLimitBurst == 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	if !cfg.CORSAllowAll && len(cfg.CORSOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ORIGINS must list at least one origin when CORS_ALLOW_ALL is false")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// Numeric settings fall back to their default when unset or blank and fail
// Load when present but unparsable.

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}

func envInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback, nil
	}
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback, nil
	}
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q: %w", key, value, err)
	}
	return result, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
