package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.True(t, cfg.Window.Fullscreen)
	assert.Equal(t, "Aurora AI", cfg.Window.Title)
	assert.Equal(t, 16*time.Millisecond, cfg.Motion.Interval())
	assert.Equal(t, 100*time.Millisecond, cfg.Poll.Interval())
	assert.Equal(t, 100.0, cfg.Motion.Radius)
	assert.Equal(t, 250.0, cfg.Motion.EdgeMargin)
	assert.Equal(t, "api.py", cfg.Paths.Status)
	assert.Equal(t, "src/eyes", cfg.Paths.Faces)
	assert.False(t, cfg.Sound.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(NewViper(""), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aurora.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  fullscreen: false
motion:
  radius: 40
paths:
  status: status.yaml
sound:
  enabled: true
`), 0o644))
	t.Setenv("AURORA_POLL_INTERVAL_MS", "250")
	t.Setenv("AURORA_LOGGING_LEVEL", "debug")

	cfg, err := Load(NewViper(path), true)
	require.NoError(t, err)

	assert.False(t, cfg.Window.Fullscreen)
	assert.Equal(t, 40.0, cfg.Motion.Radius)
	assert.Equal(t, 0.98, cfg.Motion.Friction, "unset keys keep defaults")
	assert.Equal(t, "status.yaml", cfg.Paths.Status)
	assert.True(t, cfg.Sound.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Interval())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(NewViper(filepath.Join(t.TempDir(), "nope.yaml")), true)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero motion interval", func(c *Config) { c.Motion.IntervalMs = 0 }},
		{"negative poll interval", func(c *Config) { c.Poll.IntervalMs = -5 }},
		{"negative radius", func(c *Config) { c.Motion.Radius = -1 }},
		{"friction above one", func(c *Config) { c.Motion.Friction = 1.5 }},
		{"zero friction", func(c *Config) { c.Motion.Friction = 0 }},
		{"negative min speed", func(c *Config) { c.Motion.MinSpeed = -0.1 }},
		{"no status path", func(c *Config) { c.Paths.Status = "" }},
		{"no faces dir", func(c *Config) { c.Paths.Faces = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
