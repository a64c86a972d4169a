// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config represents runtime configuration sourced from environment
// variables. CLI flags override these values per invocation.
type Config struct {
	// Timezone names the display zone for recorded_at timestamps. It is
	// resolved lazily by the collector; an unknown name falls back to UTC
	// there and is never a configuration error.
	Timezone       string
	OutputDir      string
	SampleInterval time.Duration
	LogLevel       slog.Level
	SysfsRoot      string
}

// Load parses configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Timezone:       "UTC",
		OutputDir:      "benchmarks",
		SampleInterval: 500 * time.Millisecond,
		LogLevel:       slog.LevelInfo,
		SysfsRoot:      "/sys",
	}

	if value := strings.TrimSpace(os.Getenv("APP_TIMEZONE")); value != "" {
		cfg.Timezone = value
	}

	if value := strings.TrimSpace(os.Getenv("APP_OUTPUT_DIR")); value != "" {
		cfg.OutputDir = value
	}

	if value := strings.TrimSpace(os.Getenv("APP_SAMPLE_INTERVAL")); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_SAMPLE_INTERVAL: %w", err)
		}
		if duration <= 0 {
			return Config{}, fmt.Errorf("APP_SAMPLE_INTERVAL must be > 0")
		}
		cfg.SampleInterval = duration
	}

	if value := strings.TrimSpace(os.Getenv("APP_LOG_LEVEL")); value != "" {
		level, err := parseLogLevel(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if value := strings.TrimSpace(os.Getenv("APP_SYSFS_ROOT")); value != "" {
		cfg.SysfsRoot = value
	}

	return cfg, nil
}

func parseLogLevel(input string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q", input)
	}
}
