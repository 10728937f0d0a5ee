package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
export:
  root: /tmp/exports
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/exports", cfg.Export.Root)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8091", cfg.App.HTTPAddr)
	assert.Equal(t, 90, cfg.Feed.LookbackSeconds)
	assert.Equal(t, 2, cfg.Feed.PennyCents)
	assert.Equal(t, "published_data", cfg.Publish.Dir)
	assert.Equal(t, filepath.Join("published_data", "events.db"), cfg.Publish.SnapshotPath)
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
app:
  log_level: debug
  http_addr: ":9000"
export:
  root: /data/exports
feed:
  dir: /data/feeds
  lookback_seconds: 120
  penny_cents: 3
  binance_fallback: true
registry:
  path: /etc/tradereports/assets.yaml
publish:
  dir: /srv/published
notify:
  app_url: https://example.com
  telegram:
    enabled: true
    bot_token: tok
    chat_id: "-100"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":9000", cfg.App.HTTPAddr)
	assert.Equal(t, 120, cfg.Feed.LookbackSeconds)
	assert.Equal(t, 3, cfg.Feed.PennyCents)
	assert.True(t, cfg.Feed.BinanceFallback)
	assert.Equal(t, "/etc/tradereports/assets.yaml", cfg.Registry.Path)
	assert.Equal(t, filepath.Join("/srv/published", "events.db"), cfg.Publish.SnapshotPath)
	assert.True(t, cfg.Notify.Telegram.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_EXPORT_ROOT", "/env/exports")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "-200")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/exports", cfg.Export.Root)
	assert.Equal(t, "env-token", cfg.Notify.Telegram.BotToken)
	assert.Equal(t, "-200", cfg.Notify.Telegram.ChatID)
}

func TestLoadFilePrecedesEnv(t *testing.T) {
	t.Setenv("TELEGRAM_EXPORT_ROOT", "/env/exports")
	path := writeConfig(t, `
export:
  root: /file/exports
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/file/exports", cfg.Export.Root)
}

func TestLoadValidation(t *testing.T) {
	// No export root anywhere.
	t.Setenv("TELEGRAM_EXPORT_ROOT", "")
	_, err := Load("")
	assert.Error(t, err)

	// Telegram enabled without credentials.
	path := writeConfig(t, `
export:
  root: /tmp/exports
notify:
  telegram:
    enabled: true
`)
	_, err = Load(path)
	assert.Error(t, err)
}
