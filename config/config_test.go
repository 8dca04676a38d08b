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
	path := filepath.Join(t.TempDir(), "credit-engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 100000.00, cfg.Ledger.MaxAdjustment)
	assert.Equal(t, 0.01, cfg.Commission.FlatRate)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.Interval.Duration)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[ledger]
max_adjustment = 50000.00

[scheduler]
enabled = false
interval = "6h"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50000.00, cfg.Ledger.MaxAdjustment)
	assert.Equal(t, 0.01, cfg.Commission.FlatRate, "unset sections keep defaults")
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.Interval.Duration)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_BadInterval(t *testing.T) {
	path := writeConfig(t, `
[scheduler]
interval = "soon"
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"zero max adjustment", func(c *Config) { c.Ledger.MaxAdjustment = 0 }, true},
		{"negative flat rate", func(c *Config) { c.Commission.FlatRate = -0.01 }, true},
		{"flat rate above one", func(c *Config) { c.Commission.FlatRate = 1.5 }, true},
		{"zero interval", func(c *Config) { c.Scheduler.Interval = Duration{} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
