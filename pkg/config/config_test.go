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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  database: notify\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "*/30 * * * *", cfg.Scheduler.TickSpec)
	assert.Equal(t, "https://open.feishu.cn", cfg.Channels.FeishuBaseURL)
	assert.Equal(t, "https://api.weixin.qq.com", cfg.Channels.WechatBaseURL)
	assert.Equal(t, 10*time.Second, cfg.Channels.HTTPTimeout)
	assert.Equal(t, "notify", cfg.Database.Database)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
scheduler:
  tick_spec: "@every 1m"
  timezone: Asia/Shanghai
channels:
  http_timeout: 3s
  rate_per_sec: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "@every 1m", cfg.Scheduler.TickSpec)
	assert.Equal(t, 3*time.Second, cfg.Channels.HTTPTimeout)
	assert.Equal(t, 5, cfg.Channels.RatePerSec)

	loc, err := cfg.Scheduler.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", loc.String())
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	path := writeConfig(t, "scheduler:\n  timezone: Mars/Olympus\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
