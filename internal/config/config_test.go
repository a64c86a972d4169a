package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Timezone != "UTC" {
		t.Fatalf("unexpected Timezone %q", cfg.Timezone)
	}
	if cfg.OutputDir != "benchmarks" {
		t.Fatalf("unexpected OutputDir %q", cfg.OutputDir)
	}
	if cfg.SampleInterval != 500*time.Millisecond {
		t.Fatalf("unexpected SampleInterval %s", cfg.SampleInterval)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected LogLevel %v", cfg.LogLevel)
	}
	if cfg.SysfsRoot != "/sys" {
		t.Fatalf("unexpected SysfsRoot %q", cfg.SysfsRoot)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")
	t.Setenv("APP_OUTPUT_DIR", "/tmp/benchmarks")
	t.Setenv("APP_SAMPLE_INTERVAL", "2s")
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("APP_SYSFS_ROOT", "/tmp/sys")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Timezone != "Europe/Berlin" {
		t.Fatalf("Timezone override failed, got %q", cfg.Timezone)
	}
	if cfg.OutputDir != "/tmp/benchmarks" {
		t.Fatalf("OutputDir override failed, got %q", cfg.OutputDir)
	}
	if cfg.SampleInterval != 2*time.Second {
		t.Fatalf("SampleInterval override failed, got %s", cfg.SampleInterval)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel override failed, got %v", cfg.LogLevel)
	}
	if cfg.SysfsRoot != "/tmp/sys" {
		t.Fatalf("SysfsRoot override failed, got %q", cfg.SysfsRoot)
	}
}

func TestLoadUnknownTimezoneIsNotAnError(t *testing.T) {
	// Timezone validity is resolved lazily by the collector with a UTC
	// fallback; Load passes the raw name through.
	t.Setenv("APP_TIMEZONE", "Not/AZone")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Timezone != "Not/AZone" {
		t.Fatalf("unexpected Timezone %q", cfg.Timezone)
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{"InvalidSampleInterval", "APP_SAMPLE_INTERVAL", "fast"},
		{"NegativeSampleInterval", "APP_SAMPLE_INTERVAL", "-1s"},
		{"ZeroSampleInterval", "APP_SAMPLE_INTERVAL", "0"},
		{"InvalidLogLevel", "APP_LOG_LEVEL", "loud"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.val)
			}
		})
	}
}
