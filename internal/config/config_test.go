package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Render.ReadyTimeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Render.SettleDelay)
	assert.Equal(t, 10*time.Second, cfg.Render.ImageTimeout)
	assert.Equal(t, 30*time.Second, cfg.Render.CaptureTimeout)
	assert.Equal(t, domain.TemplatePrimary, cfg.DefaultTemplate())
	assert.Equal(t, "content", cfg.Render.Strategy)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	p := writeFile(t, "config.yaml", `
server:
  port: "8080"
  public_url: http://renderer:8080
render:
  strategy: route
  default_template: two-column
  ready_timeout: 45s
  image_timeout: 5s
log:
  level: debug
`)
	t.Setenv("PORT", "9090")
	t.Setenv("RENDER_SETTLE_DELAY", "500ms")
	t.Setenv("RENDER_CAPTURE_TIMEOUT", "1m")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "route", cfg.Render.Strategy)
	assert.Equal(t, domain.TemplateTwoColumn, cfg.DefaultTemplate())
	assert.Equal(t, 45*time.Second, cfg.Render.ReadyTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Render.SettleDelay)
	assert.Equal(t, 5*time.Second, cfg.Render.ImageTimeout)
	assert.Equal(t, time.Minute, cfg.Render.CaptureTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Len(t, cfg.CaptureOptions(), 6)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":         {"RENDER_READY_TIMEOUT": "soon"},
		"bad strategy":         {"RENDER_STRATEGY": "teleport"},
		"route without url":    {"RENDER_STRATEGY": "route"},
		"bad template":         {"RENDER_DEFAULT_TEMPLATE": "fancy"},
		"short secret":         {"ACCESS_KEY_SECRET": "abc"},
		"bad log format":       {"LOG_FORMAT": "xml"},
		"channel without bot":  {"DISCORD_CHANNEL_ID": "123"},
		"non numeric port":     {"PORT": "http"},
		"zero capture timeout": {"RENDER_CAPTURE_TIMEOUT": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	p := writeFile(t, ".env", "FONTS_DIR=/opt/fonts\n")
	t.Setenv("FONTS_DIR", "")
	os.Unsetenv("FONTS_DIR")

	require.NoError(t, LoadDotEnv(p, filepath.Join(t.TempDir(), "missing.env")))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/opt/fonts", cfg.Render.FontsDir)
}
