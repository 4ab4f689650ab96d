// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		RateLimit: RateLimitConfig{
			Tasks:  20,
			Window: time.Second,
		},
		Stats: StatsConfig{
			MaxDimension: 100,
		},
		Accelerator: AcceleratorConfig{
			Mode: AcceleratorAuto,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Defaults: NodeDefaults{
			Placeholder: "surface",
			Strategy:    "contrast",
			Interval:    500 * time.Millisecond,
			NotifyDark:  150,
			NotifyLight: 220,
		},
	}
}

// setDefaults sets default configuration values in Viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("rate_limit.tasks", d.RateLimit.Tasks)
	v.SetDefault("rate_limit.window", d.RateLimit.Window)

	v.SetDefault("stats.max_dimension", d.Stats.MaxDimension)

	v.SetDefault("accelerator.mode", string(d.Accelerator.Mode))

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("defaults.placeholder", d.Defaults.Placeholder)
	v.SetDefault("defaults.strategy", d.Defaults.Strategy)
	v.SetDefault("defaults.interval", d.Defaults.Interval)
	v.SetDefault("defaults.notify_dark", d.Defaults.NotifyDark)
	v.SetDefault("defaults.notify_light", d.Defaults.NotifyLight)
}
