package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Session.PageBudget)
	assert.Equal(t, 300*time.Second, cfg.Session.WaitCeiling)
	assert.Equal(t, 2*time.Second, cfg.Session.PollInterval)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_PAGE_BUDGET", "7")
	t.Setenv("SESSION_WAIT_CEILING", "90s")
	t.Setenv("BROWSER_HEADLESS", "true")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Session.PageBudget)
	assert.Equal(t, 90*time.Second, cfg.Session.WaitCeiling)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	t.Setenv("SESSION_PAGE_BUDGET", "many")
	t.Setenv("BROWSER_HEADLESS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Session.PageBudget)
	assert.False(t, cfg.Browser.Headless)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero page budget", func(c *Config) { c.Session.PageBudget = 0 }, false},
		{"ceiling below poll interval", func(c *Config) { c.Session.WaitCeiling = time.Second; c.Session.PollInterval = 2 * time.Second }, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}
