package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {

	os.Clearenv()

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Catalog.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Catalog.RequestTimeout)
	assert.Equal(t, 6*time.Hour, cfg.Sync.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Sync.MaxAge)
	assert.True(t, cfg.Sync.RunOnStart)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {

	os.Clearenv()
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ENV", "test")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("DATABASE_DSN", "file::memory:?cache=shared")
	t.Setenv("SYNC_INTERVAL", "30m")
	t.Setenv("SECRETS_ENCRYPTION_KEY", "unit-test-secret")

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Database.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, "unit-test-secret", cfg.Secrets.EncryptionKey)
}
