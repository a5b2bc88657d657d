package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswatch/statuswatch/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Empty(t, cfg.Upstream.BaseURL)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, 100, cfg.RateLimit.RequestLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STATUSWATCH_SERVER_ADDR", ":9090")
	t.Setenv("STATUSWATCH_UPSTREAM_TIMEOUT", "10s")
	t.Setenv("STATUSWATCH_LOG_LEVEL", "debug")
	t.Setenv("STATUSWATCH_RATELIMIT_REQUEST_LIMIT", "25")
	t.Setenv("STATUSWATCH_TELEMETRY_ENABLED", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 25, cfg.RateLimit.RequestLimit)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoad_FileThenEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7070"
log:
  level: warn
upstream:
  base_url: "https://statusgator.example.com/api/v3"
`), 0o600))

	t.Setenv("STATUSWATCH_LOG_LEVEL", "error")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr, "file overrides defaults")
	assert.Equal(t, "https://statusgator.example.com/api/v3", cfg.Upstream.BaseURL)
	assert.Equal(t, "error", cfg.Log.Level, "environment overrides the file")
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
