// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultModel is the Gemini model used when GEMINI_MODEL is unset.
const DefaultModel = "models/gemini-2.5-flash"

// Config holds all application configuration.
type Config struct {
	Port              string
	GoogleAPIKey      string
	Model             string
	MaxStruggleLength int
	GenerationTimeout time.Duration // 0 = wait for the client library
	MaxFormBytes      int64
	LogLevel          slog.Level
	// TrustProxyHeaders enables X-Forwarded-For/X-Real-IP for client
	// addresses. Only safe behind a proxy that overwrites them.
	TrustProxyHeaders bool
	RateLimit         RateLimitConfig
}

// RateLimitConfig controls per-client throttling of the strategy endpoint.
type RateLimitConfig struct {
	RequestsPerSecond float64 // 0 disables rate limiting
	Burst             int
	IdleTTL           time.Duration
	MaxClients        int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		GoogleAPIKey:      strings.TrimSpace(getEnv("GOOGLE_API_KEY", "")),
		Model:             getEnv("GEMINI_MODEL", DefaultModel),
		MaxStruggleLength: getEnvInt("MAX_STRUGGLE_LENGTH", 1000),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 0),
		MaxFormBytes:      int64(getEnvInt("MAX_FORM_BYTES", 64<<10)),
		LogLevel:          getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 1),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 5),
			IdleTTL:           getEnvDuration("RATE_LIMIT_IDLE_TTL", 10*time.Minute),
			MaxClients:        getEnvInt("RATE_LIMIT_MAX_CLIENTS", 10000),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("GEMINI_MODEL cannot be empty")
	}
	if c.MaxStruggleLength <= 0 {
		return fmt.Errorf("MAX_STRUGGLE_LENGTH must be > 0")
	}
	if c.GenerationTimeout < 0 {
		return fmt.Errorf("GENERATION_TIMEOUT cannot be negative")
	}
	if c.MaxFormBytes <= 0 {
		return fmt.Errorf("MAX_FORM_BYTES must be > 0")
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS cannot be negative")
	}
	if c.RateLimit.Enabled() && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be > 0 when rate limiting is enabled")
	}
	if c.RateLimit.Enabled() && c.RateLimit.MaxClients <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_CLIENTS must be > 0 when rate limiting is enabled")
	}
	return nil
}

// Enabled reports whether requests should be throttled at all.
func (r RateLimitConfig) Enabled() bool {
	return r.RequestsPerSecond > 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}
