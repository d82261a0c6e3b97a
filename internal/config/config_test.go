package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMustLoad_Defaults(t *testing.T) {
	cfg := MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.DisableAuth)
	assert.Equal(t, 5000, cfg.Ingestion.MaxBatchSize)
	assert.Equal(t, 10, cfg.Valuation.DefaultTopK)
	assert.Equal(t, "default", cfg.Valuation.DefaultPreset)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestMustLoad_FromEnv(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DISABLE_AUTH", "false")
	t.Setenv("SECRET", "s3cr3t")
	t.Setenv("VALUATION_DEFAULT_TOP_K", "7")
	t.Setenv("INGESTION_CROSS_RUN_DEDUPE", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := MustLoad()

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.False(t, cfg.DisableAuth)
	assert.Equal(t, "s3cr3t", cfg.Secret)
	assert.Equal(t, 7, cfg.Valuation.DefaultTopK)
	assert.True(t, cfg.Ingestion.CrossRunDedupe)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
}

func TestMustLoad_PanicsOnBadValue(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")

	assert.Panics(t, func() { MustLoad() })
}
