package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.Server.BaseURL)
	assert.Equal(t, 30, cfg.Display.PollIntervalSec)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  base_url: https://teamup.example.com/api
display:
  poll_interval_sec: 10
log:
  level: debug
  file: /tmp/teamup.log
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://teamup.example.com/api", cfg.Server.BaseURL)
	assert.Equal(t, 10, cfg.Display.PollIntervalSec)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/teamup.log", cfg.Log.File)
}

func TestLoadConfigRejectsNonPositiveInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display:\n  poll_interval_sec: -5\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Display.PollIntervalSec, "invalid interval falls back to default")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := &AppConfig{
		Server:  ServerConfig{BaseURL: "https://teamup.example.com/api"},
		Display: DisplayConfig{Theme: "default", PollIntervalSec: 45},
		Log:     LogConfig{Level: "warn"},
	}
	require.NoError(t, SaveConfig(path, in))

	out, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, in.Server.BaseURL, out.Server.BaseURL)
	assert.Equal(t, 45, out.Display.PollIntervalSec)
	assert.Equal(t, "warn", out.Log.Level)
}
