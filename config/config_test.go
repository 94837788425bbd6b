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
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.exchangerate-api.com/v4/latest/USD", cfg.Upstream.URL)
	assert.Equal(t, "ForgeAPI-ExchangeRates/1.0", cfg.Upstream.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeoutDuration())
	assert.Equal(t, time.Hour, cfg.RatesRefreshDuration())
	assert.Equal(t, 24*time.Hour, cfg.RatesCacheTTLDuration())
	assert.False(t, cfg.MongoDB.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"port": 9000, "host": "127.0.0.1"},
		"rates": {"refresh_interval_minutes": 15, "cache_ttl_hours": 6},
		"redis": {"enabled": false}
	}`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("DISCORD_CHANNEL_ID", "42")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 15*time.Minute, cfg.RatesRefreshDuration())
	assert.Equal(t, 6*time.Hour, cfg.RatesCacheTTLDuration())
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Discord.Enabled)
	assert.Equal(t, "42", cfg.Discord.ChannelID)
	// untouched sections keep their defaults
	assert.Equal(t, 5, cfg.Upstream.Timeout)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, `{"server": `))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"upstream url", func(c *Config) { c.Upstream.URL = "" }},
		{"upstream timeout", func(c *Config) { c.Upstream.Timeout = -1 }},
		{"refresh interval", func(c *Config) { c.Rates.RefreshInterval = 0 }},
		{"cache ttl", func(c *Config) { c.Rates.CacheTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}
