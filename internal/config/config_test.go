package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Pipeline.BatchSize)
	assert.Equal(t, 20, cfg.Pipeline.MaxActiveJobs)
	assert.Equal(t, 24*time.Hour, cfg.Redis.JobTTL)
	assert.Equal(t, uint(10), cfg.RateLimit.PerMinute)
	assert.Equal(t, "openai", cfg.AI.ClientType)
	assert.Empty(t, cfg.Images.BaseURL)
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AI_CLIENT_TYPE", "ollama")
	t.Setenv("PIPELINE_BATCH_SIZE", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "ollama", cfg.AI.ClientType)
	assert.Equal(t, 4, cfg.Pipeline.BatchSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Zero(t, cfg.RateLimit.PerMinute)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("unknown AI client", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("AI_CLIENT_TYPE", "deepseek")
		_, err := Load()
		assert.ErrorContains(t, err, "AI_CLIENT_TYPE")
	})
	t.Run("non-positive batch size", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("PIPELINE_BATCH_SIZE", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "PIPELINE_BATCH_SIZE")
	})
}

func TestDatabaseConfig_MaskedDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "deck", Password: "p@ss", Name: "deck_db", SSLMode: "disable"}

	assert.Equal(t, "postgres://deck:p%40ss@db:5432/deck_db?sslmode=disable", d.DSN())
	assert.NotContains(t, d.MaskedDSN(), "p%40ss")
	assert.Contains(t, d.MaskedDSN(), "deck_db")
}
