package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("STARTING_BALANCE", "")
	t.Setenv("MIN_BET", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, int64(1000000), cfg.StartingBalance)
	assert.Equal(t, int64(100), cfg.MinBet)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "none", cfg.OTelExporterType)
	assert.Equal(t, "en", cfg.Locale)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STARTING_BALANCE", "5000")
	t.Setenv("MIN_BET", "250")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("JANITOR_INTERVAL", "30s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORT_INTERVAL_MS", "1000")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int64(5000), cfg.StartingBalance)
	assert.Equal(t, int64(250), cfg.MinBet)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.JanitorInterval)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, 1000, cfg.OTelExportIntervalMillis)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("MIN_BET", "lots")
	t.Setenv("SESSION_TTL", "forever")

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, int64(100), cfg.MinBet)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestLoad_ProductionRequiresDatabaseURL(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORAGE_DRIVER", StorageDriverPostgres)
	t.Setenv("DATABASE_URL", "")

	_, err := load()
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestValidate(t *testing.T) {
	t.Run("memory driver needs no database", func(t *testing.T) {
		cfg := NewTestConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := NewTestConfig()
		cfg.StorageDriver = "sqlite"
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive minimum bet", func(t *testing.T) {
		cfg := NewTestConfig()
		cfg.MinBet = 0
		assert.EqualError(t, cfg.Validate(), "MIN_BET must be positive")
	})
}

func TestSetTestConfig(t *testing.T) {
	defer ResetConfig()

	testCfg := NewTestConfig()
	testCfg.MinBet = 42
	SetTestConfig(testCfg)

	assert.Same(t, testCfg, Get())
	assert.Equal(t, int64(42), Get().MinBet)
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://u:p@localhost:5432", DatabaseName: "wagering"}
	assert.Equal(t, "postgres://u:p@localhost:5432/wagering?sslmode=disable", cfg.GetDatabaseURL())
}
