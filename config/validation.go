// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/colorpick"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	var problems []string

	if c.RateLimit.Tasks < 1 {
		problems = append(problems, "rate_limit.tasks must be positive")
	}
	if c.RateLimit.Window <= 0 {
		problems = append(problems, "rate_limit.window must be positive")
	}
	if c.Stats.MaxDimension < 1 || c.Stats.MaxDimension > 4096 {
		problems = append(problems, "stats.max_dimension must be between 1 and 4096")
	}

	switch c.Accelerator.Mode {
	case AcceleratorAuto, AcceleratorGPU, AcceleratorCPU:
	default:
		problems = append(problems, fmt.Sprintf("accelerator.mode must be one of: auto, gpu, cpu (got: %s)", c.Accelerator.Mode))
	}

	if _, ok := logLevels[c.Logging.Level]; !ok {
		problems = append(problems, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got: %s)", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be text or json (got: %s)", c.Logging.Format))
	}

	if _, err := colorpick.ParsePlaceholder(c.Defaults.Placeholder); err != nil {
		problems = append(problems, "defaults.placeholder: "+err.Error())
	}
	if _, err := colorpick.ParseStrategy(c.Defaults.Strategy); err != nil {
		problems = append(problems, "defaults.strategy: "+err.Error())
	}
	if c.Defaults.Interval < 0 {
		problems = append(problems, "defaults.interval must be non-negative")
	}
	if c.Defaults.NotifyDark > 255 || c.Defaults.NotifyLight > 255 {
		problems = append(problems, "defaults.notify_dark and notify_light must be at most 255")
	}
	if c.Defaults.NotifyDark > c.Defaults.NotifyLight {
		problems = append(problems, "defaults.notify_dark must not exceed notify_light")
	}

	if _, err := c.PlaceholderTable(); err != nil {
		problems = append(problems, "placeholders: "+err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalid, strings.Join(problems, "\n  - "))
	}
	return nil
}
