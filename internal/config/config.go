// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and QTE_ environment variables over the defaults.
// - Errors returned from this package wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// GlobalIgnoredKeys never resolve or fail any QTE (mouse look, pause...).
	GlobalIgnoredKeys []string `koanf:"global_ignored_keys"`

	// DefaultDuration and the perfect window apply to definitions with zero settings.
	DefaultDuration   time.Duration `koanf:"default_duration"`
	DefaultPerfectMin float64       `koanf:"default_perfect_min"`
	DefaultPerfectMax float64       `koanf:"default_perfect_max"`

	// DebugLogging enables per-event debug lines from the dispatcher.
	DebugLogging bool `koanf:"debug_logging"`

	// ShowDebugInfo turns on the per-instance overlay line in the player.
	ShowDebugInfo bool `koanf:"show_debug_info"`

	// TickInterval is the session frame length used to advance timers.
	TickInterval time.Duration `koanf:"tick_interval"`

	// CommandQueueSize bounds the session command queue.
	CommandQueueSize int `koanf:"queue_size"`

	// InputRateLimit is the sustained key presses per second accepted over HTTP.
	InputRateLimit float64 `koanf:"input_rate_limit"`

	// InputBurst is the limiter bucket size.
	InputBurst int `koanf:"input_burst"`

	// DedupeSize is how many recent press ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// StreamBuffer is the per-subscriber notification buffer.
	StreamBuffer int `koanf:"stream_buffer"`

	// MappingContext names the input mapping context built from ActionBindings.
	MappingContext string `koanf:"mapping_context"`

	// ActionBindings maps an action name to the keys that trigger it.
	ActionBindings map[string][]string `koanf:"action_bindings"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MetricsRefreshInterval is how often runtime gauges are sampled.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		GlobalIgnoredKeys: []string{"mouse_x", "mouse_y"},
		DefaultDuration:   2 * time.Second,
		DefaultPerfectMin: 0.8,
		DefaultPerfectMax: 1.0,
		DebugLogging:      true,
		ShowDebugInfo:     false,
		TickInterval:      16 * time.Millisecond,
		CommandQueueSize:  1024,
		InputRateLimit:    50,
		InputBurst:        10,
		DedupeSize:        4096,
		StreamBuffer:      64,
		MappingContext:    "default",
		ActionBindings: map[string][]string{
			"interact": {"e", "f"},
			"jump":     {"space"},
		},
		ShutdownTimeout:        10 * time.Second,
		MetricsRefreshInterval: 10 * time.Second,
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultDuration <= 0:
		return fmt.Errorf("%w: default_duration must be positive", ErrInvalidConfig)
	case c.DefaultPerfectMin < 0 || c.DefaultPerfectMax > 1 || c.DefaultPerfectMin > c.DefaultPerfectMax:
		return fmt.Errorf("%w: perfect window [%.2f, %.2f] must satisfy 0 <= min <= max <= 1",
			ErrInvalidConfig, c.DefaultPerfectMin, c.DefaultPerfectMax)
	case c.TickInterval <= 0:
		return fmt.Errorf("%w: tick_interval must be positive", ErrInvalidConfig)
	case c.CommandQueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.InputRateLimit <= 0 || c.InputBurst <= 0:
		return fmt.Errorf("%w: input_rate_limit and input_burst must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.StreamBuffer <= 0:
		return fmt.Errorf("%w: stream_buffer must be positive", ErrInvalidConfig)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	return nil
}
