package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "test-key", cfg.GoogleAPIKey)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, 1000, cfg.MaxStruggleLength)
	assert.Zero(t, cfg.GenerationTimeout)
	assert.Equal(t, int64(64<<10), cfg.MaxFormBytes)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.RateLimit.Enabled())
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, 10000, cfg.RateLimit.MaxClients)
	assert.False(t, cfg.TrustProxyHeaders)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", " key-with-spaces ")
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_MODEL", "models/gemini-2.5-pro")
	t.Setenv("MAX_STRUGGLE_LENGTH", "250")
	t.Setenv("GENERATION_TIMEOUT", "30s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("TRUST_PROXY_HEADERS", "yes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "key-with-spaces", cfg.GoogleAPIKey)
	assert.Equal(t, "models/gemini-2.5-pro", cfg.Model)
	assert.Equal(t, 250, cfg.MaxStruggleLength)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.RateLimit.Enabled())
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("MAX_STRUGGLE_LENGTH", "lots")
	t.Setenv("GENERATION_TIMEOUT", "soon")
	t.Setenv("LOG_LEVEL", "loud")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.MaxStruggleLength)
	assert.Zero(t, cfg.GenerationTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:              "8080",
			GoogleAPIKey:      "k",
			Model:             DefaultModel,
			MaxStruggleLength: 10,
			MaxFormBytes:      1024,
			RateLimit:         RateLimitConfig{RequestsPerSecond: 1, Burst: 1, MaxClients: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty port", mutate: func(c *Config) { c.Port = "" }, wantErr: "PORT"},
		{name: "empty model", mutate: func(c *Config) { c.Model = "" }, wantErr: "GEMINI_MODEL"},
		{name: "zero length", mutate: func(c *Config) { c.MaxStruggleLength = 0 }, wantErr: "MAX_STRUGGLE_LENGTH"},
		{name: "negative timeout", mutate: func(c *Config) { c.GenerationTimeout = -time.Second }, wantErr: "GENERATION_TIMEOUT"},
		{name: "zero form bytes", mutate: func(c *Config) { c.MaxFormBytes = 0 }, wantErr: "MAX_FORM_BYTES"},
		{name: "negative rps", mutate: func(c *Config) { c.RateLimit.RequestsPerSecond = -1 }, wantErr: "RATE_LIMIT_RPS"},
		{name: "zero burst", mutate: func(c *Config) { c.RateLimit.Burst = 0 }, wantErr: "RATE_LIMIT_BURST"},
		{name: "zero max clients", mutate: func(c *Config) { c.RateLimit.MaxClients = 0 }, wantErr: "RATE_LIMIT_MAX_CLIENTS"},
		{
			name: "zero burst with limiting disabled",
			mutate: func(c *Config) {
				c.RateLimit.RequestsPerSecond = 0
				c.RateLimit.Burst = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
