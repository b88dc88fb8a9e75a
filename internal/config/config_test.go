package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configTemplate = `
app:
  env: test
gateway:
  process_name: gateway
  start_command: start-gateway
  health_url: %q
  health_poll_seconds: %d
  health_timeout_seconds: %d
bot:
  process_name: helmsman-bot
  start_command: %q
gameplan:
  path: %q
account:
  balance_usd: 100000
  timezone: %q
`

func renderConfig(healthURL string, poll, timeout int, botCmd, planPath, tz string) string {
	return fmt.Sprintf(configTemplate, healthURL, poll, timeout, botCmd, planPath, tz)
}

func validConfig() string {
	return renderConfig("http://127.0.0.1:9000/healthz", 5, 120, "helmsman run", "/tmp/gameplan.json", "UTC")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig()))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8780", cfg.App.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.Gateway.PollInterval())
	assert.Equal(t, 120*time.Second, cfg.Gateway.HealthTimeout())
	assert.Equal(t, 10*time.Second, cfg.Bot.GraceWindow())
	assert.Equal(t, time.Minute, cfg.Session.Interval())
	assert.Equal(t, 10*time.Minute, cfg.Session.Staleness())
	assert.Equal(t, 120, cfg.Session.LookbackBars)
	assert.InDelta(t, 0.05, cfg.Account.MaxWeeklyLossPct, 1e-9)
	assert.Equal(t, "data/helmsman.db", cfg.Store.Path)
	assert.Equal(t, "data/gameplan_fallback.json", cfg.Gameplan.FallbackPath)
}

func TestLoadExplicitValues(t *testing.T) {
	full := validConfig() + `
session:
  interval_seconds: 30
  staleness_minutes: 5
  lookback_bars: 60
notify:
  webhook:
    enabled: true
    url: http://hooks.internal/alerts
store:
  path: /var/lib/helmsman/state.db
`
	cfg, err := Load(writeConfig(t, full))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Session.Interval())
	assert.Equal(t, 5*time.Minute, cfg.Session.Staleness())
	assert.Equal(t, 60, cfg.Session.LookbackBars)
	assert.InDelta(t, 100000, cfg.Account.BalanceUSD, 1e-9)
	assert.True(t, cfg.Notify.Webhook.Enabled)
	assert.Equal(t, "/var/lib/helmsman/state.db", cfg.Store.Path)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing health url",
			content: renderConfig("", 5, 120, "helmsman run", "/tmp/gameplan.json", "UTC"),
			wantErr: "health_url",
		},
		{
			name:    "poll not shorter than timeout",
			content: renderConfig("http://127.0.0.1:9000/healthz", 120, 120, "helmsman run", "/tmp/gameplan.json", "UTC"),
			wantErr: "health_poll_seconds",
		},
		{
			name:    "missing bot command",
			content: renderConfig("http://127.0.0.1:9000/healthz", 5, 120, "", "/tmp/gameplan.json", "UTC"),
			wantErr: "bot.start_command",
		},
		{
			name:    "missing gameplan path",
			content: renderConfig("http://127.0.0.1:9000/healthz", 5, 120, "helmsman run", "", "UTC"),
			wantErr: "gameplan.path",
		},
		{
			name:    "bad timezone",
			content: renderConfig("http://127.0.0.1:9000/healthz", 5, 120, "helmsman run", "/tmp/gameplan.json", "Mars/Olympus"),
			wantErr: "timezone",
		},
		{
			name: "webhook enabled without url",
			content: validConfig() + `
notify:
  webhook:
    enabled: true
`,
			wantErr: "webhook.url",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	_, err = Load("")
	require.Error(t, err)
}
