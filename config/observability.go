package config

import (
	"log/slog"
	"strings"
)

// ObservabilityConfig groups configuration that controls logging and metrics.
type ObservabilityConfig struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Metrics  ObservabilityMetricsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// SlogLevel maps LogLevel onto slog; unknown values fall back to info.
func (c *ObservabilityConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ObservabilityMetricsConfig controls the Prometheus endpoint.
type ObservabilityMetricsConfig struct {
	Enabled bool `env:"OBSERVABILITY_METRICS_ENABLED" envDefault:"true"`
	// RuntimeCollectors adds Go runtime and process metrics.
	RuntimeCollectors bool `env:"OBSERVABILITY_METRICS_RUNTIME" envDefault:"true"`
}

// IsEnabled returns true when metrics are served.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled
}
