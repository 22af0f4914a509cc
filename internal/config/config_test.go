package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123:abc")

	path := writeConfig(t, `
telegram:
  bot_token: ${TEST_BOT_TOKEN}
database:
  path: `+filepath.Join(t.TempDir(), "data", "test.db")+`
reminder:
  lead_minutes: 30
managers:
  - 777
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, 30*time.Minute, cfg.ReminderLead())
	assert.Equal(t, []int64{777}, cfg.Managers)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL())

	// Database directory gets created.
	_, err = os.Stat(filepath.Dir(cfg.Database.Path))
	assert.NoError(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeConfig(t, `telegram:
  bot_token: tok
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/cronos.db", cfg.Database.Path)
	assert.Equal(t, time.Hour, cfg.ReminderLead())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
