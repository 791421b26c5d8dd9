// Package bootstrap wires configuration, infrastructure and services for the binaries.
package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/target/jobdispatch/config"
)

// InitLogger initializes the structured logger with the default level.
func InitLogger() *slog.Logger {
	return newLogger(os.Stdout, slog.LevelInfo, false)
}

// ConfigureLogger replaces the default logger according to the loaded configuration.
// Development mode switches to human readable text output.
func ConfigureLogger(cfg *config.AppConfig) *slog.Logger {
	if cfg == nil {
		return InitLogger()
	}
	return newLogger(os.Stdout, cfg.Observability.SlogLevel(), cfg.IsDev)
}

func newLogger(w io.Writer, level slog.Level, text bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if text {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
