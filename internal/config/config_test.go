package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Contains(t, cfg.StorePath, ".portfolio")
	assert.Contains(t, cfg.IndexPath, "search.db")
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.False(t, cfg.LogConsole)
}

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORTFOLIO_STORE", "/tmp/elsewhere.db")
	t.Setenv("PORTFOLIO_LOG_LEVEL", "DEBUG")
	t.Setenv("PORTFOLIO_LOG_CONSOLE", "true")

	cfg := DefaultConfig()
	assert.Equal(t, "/tmp/elsewhere.db", cfg.StorePath)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.True(t, cfg.LogConsole)
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := &Config{
		StorePath: "/data/portfolio.db",
		Owner:     "garrow",
		LogLevel:  "WARN",
	}
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded := &Config{}
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(raw, loaded))

	assert.Equal(t, cfg.StorePath, loaded.StorePath)
	assert.Equal(t, cfg.Owner, loaded.Owner)
	assert.Equal(t, cfg.LogLevel, loaded.LogLevel)
}
