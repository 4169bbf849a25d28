package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "notify", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Equal(t, "log", cfg.SMS.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Sweep.CheckInterval)
	assert.Equal(t, 90*24*time.Hour, cfg.Retention.RetainFor)
	assert.Equal(t, 2, cfg.Retention.CleanupHour)
	assert.Equal(t, "Asia/Riyadh", cfg.Retention.CleanupTZ)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, "notify", cfg.Telemetry.ServiceName)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.App.Port = "9090"
	cfg.Email.Provider = "ses"
	applyDefaults(cfg)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "ses", cfg.Email.Provider)
}

func TestValidate(t *testing.T) {
	t.Run("production requires a strong jwt secret", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.App.Env = "production"

		require.Error(t, cfg.validate())

		cfg.JWT.Secret = "short"
		require.Error(t, cfg.validate())

		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		assert.NoError(t, cfg.validate())
	})

	t.Run("rejects unknown providers", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Email.Provider = "smtp"

		assert.Error(t, cfg.validate())
	})

	t.Run("rejects out-of-range cleanup hour", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Retention.CleanupHour = 24

		assert.Error(t, cfg.validate())
	})
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "secret",
		DBName: "notify", SSLMode: "require",
	}
	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=notify sslmode=require", d.DSN())
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
