/*
Package config loads engine settings from TOML.

PURPOSE:
  One small, flat configuration surface for the pieces of the engine
  that are tunable per deployment: the ledger's per-operation amount
  ceiling, the platform flat rate used by daily report runs, and the
  report scheduler's interval. Everything else is code.

EXAMPLE (credit-engine.toml):

  [ledger]
  max_adjustment = 50000.00

  [commission]
  flat_rate = 0.01

  [scheduler]
  enabled = true
  interval = "24h"
*/
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so intervals read as "24h" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Config struct {
	Ledger     LedgerConfig     `toml:"ledger"`
	Commission CommissionConfig `toml:"commission"`
	Scheduler  SchedulerConfig  `toml:"scheduler"`
}

type LedgerConfig struct {
	// MaxAdjustment caps a single balance adjustment.
	MaxAdjustment float64 `toml:"max_adjustment"`
}

type CommissionConfig struct {
	// FlatRate is the platform-wide rate applied to daily credit
	// movement by report runs. Distinct from any per-agent rate.
	FlatRate float64 `toml:"flat_rate"`
}

type SchedulerConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Ledger:     LedgerConfig{MaxAdjustment: 100000.00},
		Commission: CommissionConfig{FlatRate: 0.01},
		Scheduler:  SchedulerConfig{Enabled: true, Interval: Duration{24 * time.Hour}},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.Ledger.MaxAdjustment <= 0 {
		return fmt.Errorf("config: ledger.max_adjustment must be positive, got %v", c.Ledger.MaxAdjustment)
	}
	if c.Commission.FlatRate < 0 || c.Commission.FlatRate > 1 {
		return fmt.Errorf("config: commission.flat_rate must be in [0, 1], got %v", c.Commission.FlatRate)
	}
	if c.Scheduler.Interval.Duration <= 0 {
		return fmt.Errorf("config: scheduler.interval must be positive, got %v", c.Scheduler.Interval.Duration)
	}
	return nil
}
