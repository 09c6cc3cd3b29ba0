// Package config loads simlane runtime configuration.
//
// Configuration is resolved in precedence order: runtime overrides,
// environment variables (SIMLANE_*), then built-in defaults. The
// simulation feature flag is intentionally NOT cached in the returned
// struct: facade code must consult Config.SimulationEnabled() on every
// call so flipping SIMLANE_SIMULATION_ENABLED takes effect immediately.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved simlane configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Validation ValidationConfig `mapstructure:"validation"`
	Jobs       JobsConfig       `mapstructure:"jobs"`

	v *viper.Viper
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RateLimit is the maximum schedule requests per second (0 = unlimited).
	RateLimit float64 `mapstructure:"rate_limit"`
}

// LoggingConfig configures the shared logger.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"`
}

// SimulationConfig configures the simulation lane.
type SimulationConfig struct {
	// Enabled is the disable-by-default feature flag snapshot at load
	// time. Use Config.SimulationEnabled() for the live value.
	Enabled bool `mapstructure:"enabled"`

	// DefaultBudgetTokens is applied when a seed omits a token budget.
	DefaultBudgetTokens int `mapstructure:"default_budget_tokens"`

	// DefaultBudgetSeconds is applied when a seed omits a seconds budget.
	DefaultBudgetSeconds float64 `mapstructure:"default_budget_seconds"`

	// MaxWorkDelay caps the worker's budget-proportional delay.
	MaxWorkDelay time.Duration `mapstructure:"max_work_delay"`
}

// ValidationConfig configures schema validation behavior.
type ValidationConfig struct {
	// Mode is "strict" (default) or "lenient". Lenient mode downgrades a
	// MISSING validator to a logged warning; it never suppresses genuine
	// validation failures.
	Mode string `mapstructure:"mode"`
}

// JobsConfig configures optional on-disk job snapshots.
type JobsConfig struct {
	// Dir is the snapshot root directory. Empty disables snapshots.
	Dir string `mapstructure:"dir"`
}

// Load resolves configuration with defaults, SIMLANE_* environment
// variables, and optional runtime override maps (applied in order).
func Load(_ context.Context, overrides ...map[string]any) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit", 0.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	v.SetDefault("simulation.enabled", false)
	v.SetDefault("simulation.default_budget_tokens", 2000)
	v.SetDefault("simulation.default_budget_seconds", 2.0)
	v.SetDefault("simulation.max_work_delay", "5s")

	v.SetDefault("validation.mode", "strict")

	v.SetDefault("jobs.dir", "")

	v.SetEnvPrefix("SIMLANE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, o := range overrides {
		if err := v.MergeConfigMap(o); err != nil {
			return nil, fmt.Errorf("apply config overrides: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	switch strings.ToLower(cfg.Validation.Mode) {
	case "strict", "lenient":
	default:
		return nil, fmt.Errorf("invalid validation.mode %q (want strict or lenient)", cfg.Validation.Mode)
	}

	cfg.v = v
	return &cfg, nil
}

// SimulationEnabled reports the live feature flag value.
//
// The flag is re-read from the environment on every call; there is no
// caching. Disabling the flag takes effect for all subsequent facade
// calls but does not affect in-flight jobs.
func (c *Config) SimulationEnabled() bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.GetBool("simulation.enabled")
}

// LenientValidation reports whether a missing schema validator degrades
// to a logged warning instead of an error.
func (c *Config) LenientValidation() bool {
	if c == nil {
		return false
	}
	return strings.EqualFold(c.Validation.Mode, "lenient")
}
