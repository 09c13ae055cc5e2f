package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverBadger, cfg.Store.Driver)
	assert.Equal(t, time.Hour, cfg.Rates.CacheDuration)
	assert.Equal(t, time.Minute, cfg.Rates.RefreshInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.Currencies.CacheDuration)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  addr: ":9090"
  allowed_origins:
    - chrome-extension://abcdef
store:
  driver: memory
rates:
  cache_duration: 30m
  refresh_interval: 1h
logging:
  level: debug
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"chrome-extension://abcdef"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Rates.CacheDuration)
	assert.Equal(t, time.Hour, cfg.Rates.RefreshInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.Equal(t, 10*time.Second, cfg.Rates.RequestTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "store:\n  driver: badger\n")

	t.Setenv("FXW_STORE_DRIVER", "redis")
	t.Setenv("FXW_REDIS_ADDR", "localhost:6379")
	t.Setenv("FXW_REDIS_DB", "2")
	t.Setenv("FXW_ALLOWED_ORIGINS", "http://localhost:3000, chrome-extension://xyz ,")
	t.Setenv("FXW_REFRESH_INTERVAL", "5m")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, []string{"http://localhost:3000", "chrome-extension://xyz"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Rates.RefreshInterval)
}

func TestLoadDotenv(t *testing.T) {
	envFile := writeFile(t, ".env", "FXW_LOG_LEVEL=warn\nFXW_SERVER_ADDR=:7070\n")

	// registered so the values godotenv sets are removed again
	t.Setenv("FXW_LOG_LEVEL", "")
	os.Unsetenv("FXW_LOG_LEVEL")
	t.Setenv("FXW_SERVER_ADDR", "")
	os.Unsetenv("FXW_SERVER_ADDR")

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":7070", cfg.Server.Addr)

	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadErrors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
		assert.ErrorIs(t, err, ErrConfigLoad)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "server: [oops"), "")
		assert.ErrorIs(t, err, ErrConfigLoad)
	})

	t.Run("Bad env duration", func(t *testing.T) {
		t.Setenv("FXW_RATE_CACHE_DURATION", "soon")
		_, err := Load("", "")
		require.ErrorIs(t, err, ErrConfigLoad)
		assert.Contains(t, err.Error(), "FXW_RATE_CACHE_DURATION")
	})

	t.Run("Redis without address", func(t *testing.T) {
		t.Setenv("FXW_STORE_DRIVER", "redis")
		_, err := Load("", "")
		require.ErrorIs(t, err, ErrConfigLoad)
		assert.Contains(t, err.Error(), "redis_addr")
	})

	t.Run("Unknown driver", func(t *testing.T) {
		_, err := Load(writeFile(t, "c.yaml", "store:\n  driver: etcd\n"), "")
		assert.ErrorIs(t, err, ErrConfigLoad)
	})

	t.Run("Non-positive cache duration", func(t *testing.T) {
		_, err := Load(writeFile(t, "c.yaml", "rates:\n  cache_duration: 0s\n"), "")
		assert.ErrorIs(t, err, ErrConfigLoad)
	})
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
