package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 5001, c.Server.Port)
	assert.Equal(t, []string{"*"}, c.Server.CORSOrigins)
	assert.Equal(t, 5, c.Forecast.MinPoints)
	assert.Equal(t, 365, c.Forecast.MaxPoints)
	assert.Equal(t, 183, c.Forecast.MaxHorizon)
	assert.True(t, c.Forecast.EnforceBounds)
	assert.Equal(t, 1.0, c.Forecast.Ridge.Alpha)
	assert.Equal(t, int64(42), c.Forecast.Forest.Seed)
	assert.Equal(t, 15*time.Minute, c.History.CacheTTL)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.NoError(t, c.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 8080
forecast:
  enforce_bounds: false
  max_horizon: 30
  models: [linear, ridge]
history:
  cache_ttl: 1m
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.False(t, c.Forecast.EnforceBounds)
	assert.Equal(t, 30, c.Forecast.MaxHorizon)
	assert.Equal(t, []string{"linear", "ridge"}, c.Forecast.Models)
	assert.Equal(t, time.Minute, c.History.CacheTTL)

	// untouched keys keep defaults
	assert.Equal(t, 365, c.Forecast.MaxPoints)
	assert.True(t, c.Metrics.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad backend":            "cache:\n  backend: memcached\n",
		"min above max":          "forecast:\n  min_points: 50\n  max_points: 10\n",
		"zero horizon":           "forecast:\n  max_horizon: 0\n",
		"bad log format":         "log:\n  format: xml\n",
		"events without brokers": "forecast:\n  events:\n    enabled: true\n",
		"warm without watchlist": "history:\n  warm:\n    enabled: true\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "cache.internal:6380")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("FORECAST_MODELS", "svr,decision_tree")

	c, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "cache.internal", c.Cache.Redis.Host)
	assert.Equal(t, 6380, c.Cache.Redis.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, []string{"svr", "decision_tree"}, c.Forecast.Models)
}

func TestLoadWithEnv_MissingFileUsesDefaults(t *testing.T) {
	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5001, c.Server.Port)
}

func TestLoadWithEnv_BadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	assert.Error(t, err)
}
