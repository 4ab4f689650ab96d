// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads colour picker settings with Viper and reloads them
// when the file changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/gogpu/colorpick"
)

// EnvPrefix prefixes environment overrides, e.g. COLORPICK_RATE_LIMIT_TASKS.
const EnvPrefix = "COLORPICK"

// ErrNoConfigFile is returned by Watch when no config file was read.
var ErrNoConfigFile = errors.New("config: no config file in use")

// Config is the complete colour picker configuration.
type Config struct {
	RateLimit    RateLimitConfig       `mapstructure:"rate_limit" yaml:"rate_limit"`
	Stats        StatsConfig           `mapstructure:"stats" yaml:"stats"`
	Accelerator  AcceleratorConfig     `mapstructure:"accelerator" yaml:"accelerator"`
	Logging      LoggingConfig         `mapstructure:"logging" yaml:"logging"`
	Defaults     NodeDefaults          `mapstructure:"defaults" yaml:"defaults"`
	Placeholders map[string]PairConfig `mapstructure:"placeholders" yaml:"placeholders"`
}

// RateLimitConfig bounds rate-limited picker tasks.
type RateLimitConfig struct {
	Tasks  int           `mapstructure:"tasks" yaml:"tasks"`
	Window time.Duration `mapstructure:"window" yaml:"window"`
}

// StatsConfig tunes CPU statistics.
type StatsConfig struct {
	MaxDimension int `mapstructure:"max_dimension" yaml:"max_dimension"`
}

// AcceleratorMode selects the statistics path.
type AcceleratorMode string

const (
	AcceleratorAuto AcceleratorMode = "auto"
	AcceleratorGPU  AcceleratorMode = "gpu"
	AcceleratorCPU  AcceleratorMode = "cpu"
)

// AcceleratorConfig holds GPU accelerator preferences.
type AcceleratorConfig struct {
	Mode AcceleratorMode `mapstructure:"mode" yaml:"mode"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// NodeDefaults are the colour picker params applied to new nodes.
type NodeDefaults struct {
	Placeholder string        `mapstructure:"placeholder" yaml:"placeholder"`
	Strategy    string        `mapstructure:"strategy" yaml:"strategy"`
	Interval    time.Duration `mapstructure:"interval" yaml:"interval"`
	NotifyDark  uint32        `mapstructure:"notify_dark" yaml:"notify_dark"`
	NotifyLight uint32        `mapstructure:"notify_light" yaml:"notify_light"`
}

// PairConfig overrides one placeholder's colours.
type PairConfig struct {
	Dark  string `mapstructure:"dark" yaml:"dark"`
	Light string `mapstructure:"light" yaml:"light"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfigFile reads path instead of searching for colorpick.yaml.
func WithConfigFile(path string) Option {
	return func(m *Manager) {
		m.viper.SetConfigFile(path)
	}
}

// WithSearchPaths sets the directories searched for colorpick.yaml.
func WithSearchPaths(dirs ...string) Option {
	return func(m *Manager) {
		for _, d := range dirs {
			m.viper.AddConfigPath(d)
		}
	}
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	errorFn   func(error)
	watching  bool
}

// NewManager creates a configuration manager. Without options it looks for
// colorpick.yaml in the current directory.
func NewManager(opts ...Option) *Manager {
	v := viper.New()
	v.SetConfigName("colorpick")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m := &Manager{viper: v, errorFn: func(error) {}}
	for _, opt := range opts {
		opt(m)
	}
	if len(opts) == 0 {
		v.AddConfigPath(".")
	}
	return m
}

// Load reads the config file, if any, and the environment. A missing file
// yields the defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	setDefaults(m.viper)
	if err := m.viper.ReadInConfig(); err != nil && !isNotFound(err) {
		return fmt.Errorf("config: read: %w", err)
	}
	cfg, err := m.decode()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func (m *Manager) decode() (*Config, error) {
	cfg := &Config{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Get returns a copy of the current configuration, or the defaults before
// Load.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return DefaultConfig()
	}
	return m.config.clone()
}

// FileUsed returns the path of the config file read, if any.
func (m *Manager) FileUsed() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viper.ConfigFileUsed()
}

// OnConfigChange registers a callback run after each successful reload.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// OnReloadError registers the handler for reloads that fail to read or
// validate. The previous configuration stays active.
func (m *Manager) OnReloadError(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		fn = func(error) {}
	}
	m.errorFn = fn
}

// Watch starts watching the config file and reloads it on change.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}
	if m.viper.ConfigFileUsed() == "" {
		return ErrNoConfigFile
	}

	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		if err := m.reload(); err != nil {
			m.mu.RLock()
			fn := m.errorFn
			m.mu.RUnlock()
			fn(err)
			return
		}

		m.mu.RLock()
		cfg := m.config.clone()
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()

		for _, callback := range callbacks {
			callback(cfg)
		}
	})
	m.viper.WatchConfig()
	m.watching = true
	return nil
}

func (m *Manager) reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("config: reload: %w", err)
	}
	cfg, err := m.decode()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

func (c *Config) clone() *Config {
	cp := *c
	if c.Placeholders != nil {
		cp.Placeholders = make(map[string]PairConfig, len(c.Placeholders))
		for k, v := range c.Placeholders {
			cp.Placeholders[k] = v
		}
	}
	return &cp
}

func (c *Config) normalize() {
	switch AcceleratorMode(strings.ToLower(string(c.Accelerator.Mode))) {
	case "", AcceleratorAuto:
		c.Accelerator.Mode = AcceleratorAuto
	case AcceleratorGPU:
		c.Accelerator.Mode = AcceleratorGPU
	case AcceleratorCPU:
		c.Accelerator.Mode = AcceleratorCPU
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// PlaceholderTable builds the placeholder colour table with this config's
// overrides applied to the defaults.
func (c *Config) PlaceholderTable() (*colorpick.PlaceholderTable, error) {
	pairs := make(map[colorpick.Placeholder]colorpick.ColorPair, len(c.Placeholders))
	for name, pc := range c.Placeholders {
		p, err := colorpick.ParsePlaceholder(name)
		if err != nil {
			return nil, err
		}
		dark, err := colorpick.ParseColor(pc.Dark)
		if err != nil {
			return nil, err
		}
		light, err := colorpick.ParseColor(pc.Light)
		if err != nil {
			return nil, err
		}
		pairs[p] = colorpick.ColorPair{Dark: dark, Light: light}
	}
	return colorpick.NewPlaceholderTable(pairs), nil
}

// DefaultParam returns the node defaults as picker params.
func (c *Config) DefaultParam() (colorpick.Param, error) {
	placeholder, err := colorpick.ParsePlaceholder(c.Defaults.Placeholder)
	if err != nil {
		return colorpick.Param{}, err
	}
	strategy, err := colorpick.ParseStrategy(c.Defaults.Strategy)
	if err != nil {
		return colorpick.Param{}, err
	}
	return colorpick.Param{
		Placeholder: placeholder,
		Strategy:    strategy,
		Interval:    c.Defaults.Interval,
		NotifyThreshold: colorpick.NotifyThreshold{
			Dark:  c.Defaults.NotifyDark,
			Light: c.Defaults.NotifyLight,
		},
	}, nil
}

// RuntimeOptions converts the config into options for colorpick.NewRuntime.
func (c *Config) RuntimeOptions() ([]colorpick.Option, error) {
	table, err := c.PlaceholderTable()
	if err != nil {
		return nil, err
	}
	return []colorpick.Option{
		colorpick.WithRateLimit(c.RateLimit.Tasks, c.RateLimit.Window),
		colorpick.WithStatsMaxDimension(c.Stats.MaxDimension),
		colorpick.WithPlaceholderTable(table),
	}, nil
}
