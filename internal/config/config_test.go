package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqipro/aqipro/internal/config"
)

func TestLoadProxyDefaults(t *testing.T) {
	t.Setenv("WAQI_TOKEN", "secret")

	cfg, err := config.LoadProxy()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "secret", cfg.WAQIToken)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.TelemetryEnabled)
}

func TestLoadProxyRequiresToken(t *testing.T) {
	t.Setenv("WAQI_TOKEN", "")

	_, err := config.LoadProxy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WAQI_TOKEN")
}

func TestLoadProxyOverrides(t *testing.T) {
	t.Setenv("WAQI_TOKEN", "secret")
	t.Setenv("APP_PORT", "9999")
	t.Setenv("WAQI_BASE_URL", "http://localhost:1234")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := config.LoadProxy()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "http://localhost:1234", cfg.WAQIBaseURL)
	assert.True(t, cfg.TelemetryEnabled)
}

func TestLoadCLI(t *testing.T) {
	t.Setenv("AQIPRO_PROXY_URL", "https://aqi.example.com")
	t.Setenv("AQIPRO_STATE_PATH", filepath.Join(t.TempDir(), "state.db"))

	cfg, err := config.LoadCLI()
	require.NoError(t, err)

	assert.Equal(t, "https://aqi.example.com", cfg.ProxyURL)
	assert.Contains(t, cfg.StatePath, "state.db")
	assert.Equal(t, "Pune", cfg.DefaultCity)
}

func TestLoadCLIDefaultProxyURL(t *testing.T) {
	t.Setenv("AQIPRO_PROXY_URL", "")
	t.Setenv("AQIPRO_STATE_PATH", filepath.Join(t.TempDir(), "state.db"))

	cfg, err := config.LoadCLI()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.ProxyURL)
}
