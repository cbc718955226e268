package config

import (
	"log/slog"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"PORT", "SERVER_PORT",
	"SERVER_READ_TIMEOUT_SECONDS", "SERVER_WRITE_TIMEOUT_SECONDS", "SERVER_SHUTDOWN_TIMEOUT_SECONDS",
	"LOG_LEVEL", "LOG_FORMAT",
	"DATABASE_URL", "SOURCES_FILE",
	"SCAN_INTERVAL_HOURS", "MISFIRE_GRACE_MINUTES", "FETCH_TIMEOUT_SECONDS",
	"MAX_PARALLEL_FETCHES", "PATTERN_MIN_OCCURRENCES", "ALERT_SEVERITY_THRESHOLD",
	"MAX_PHONE_NUMBERS", "MAX_URLS", "MAX_KEYWORDS", "MAX_EXCERPT_LENGTH",
	"STATS_TIME_OF_DAY",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != defaultPort {
		t.Errorf("expected default port %q, got %q", defaultPort, cfg.Server.Port)
	}
	if cfg.Logging.Level != slog.LevelInfo {
		t.Errorf("expected default log level %v, got %v", slog.LevelInfo, cfg.Logging.Level)
	}
	if cfg.Logging.Format != defaultLogFormat {
		t.Errorf("expected default log format %q, got %q", defaultLogFormat, cfg.Logging.Format)
	}
	if cfg.Scheduler.ScanInterval != defaultScanInterval {
		t.Errorf("expected default scan interval %v, got %v", defaultScanInterval, cfg.Scheduler.ScanInterval)
	}
	if cfg.Scheduler.MisfireGrace != defaultMisfireGrace {
		t.Errorf("expected default misfire grace %v, got %v", defaultMisfireGrace, cfg.Scheduler.MisfireGrace)
	}
	if cfg.Scanner.FetchTimeout != defaultFetchTimeout {
		t.Errorf("expected default fetch timeout %v, got %v", defaultFetchTimeout, cfg.Scanner.FetchTimeout)
	}
	if cfg.Scanner.PatternMinOccurrences != defaultPatternMinOccurrences {
		t.Errorf("expected default pattern threshold %d, got %d", defaultPatternMinOccurrences, cfg.Scanner.PatternMinOccurrences)
	}
	if cfg.Scanner.AlertSeverityThreshold != defaultAlertSeverityThreshold {
		t.Errorf("expected default alert threshold %d, got %d", defaultAlertSeverityThreshold, cfg.Scanner.AlertSeverityThreshold)
	}
	if cfg.Scanner.MaxPhoneNumbers != 10 || cfg.Scanner.MaxURLs != 10 || cfg.Scanner.MaxKeywords != 20 {
		t.Errorf("unexpected extraction caps: %+v", cfg.Scanner)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	clearConfigEnv(t)

	overrides := map[string]string{
		"SERVER_PORT":              "9090",
		"LOG_LEVEL":                "debug",
		"LOG_FORMAT":               "text",
		"SCAN_INTERVAL_HOURS":      "6",
		"MISFIRE_GRACE_MINUTES":    "30",
		"FETCH_TIMEOUT_SECONDS":    "10",
		"MAX_PARALLEL_FETCHES":     "3",
		"ALERT_SEVERITY_THRESHOLD": "7",
	}
	for key, value := range overrides {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected overridden port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Logging.Level != slog.LevelDebug {
		t.Errorf("expected debug log level, got %v", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected text log format, got %q", cfg.Logging.Format)
	}
	if cfg.Scheduler.ScanInterval != 6*time.Hour {
		t.Errorf("expected 6h scan interval, got %v", cfg.Scheduler.ScanInterval)
	}
	if cfg.Scheduler.MisfireGrace != 30*time.Minute {
		t.Errorf("expected 30m misfire grace, got %v", cfg.Scheduler.MisfireGrace)
	}
	if cfg.Scanner.FetchTimeout != 10*time.Second {
		t.Errorf("expected 10s fetch timeout, got %v", cfg.Scanner.FetchTimeout)
	}
	if cfg.Scanner.MaxParallelFetches != 3 {
		t.Errorf("expected 3 parallel fetches, got %d", cfg.Scanner.MaxParallelFetches)
	}
	if cfg.Scanner.AlertSeverityThreshold != 7 {
		t.Errorf("expected alert threshold 7, got %d", cfg.Scanner.AlertSeverityThreshold)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"negative interval", "SCAN_INTERVAL_HOURS", "-1"},
		{"non-numeric timeout", "FETCH_TIMEOUT_SECONDS", "soon"},
		{"zero parallelism", "MAX_PARALLEL_FETCHES", "0"},
		{"bad stats time", "STATS_TIME_OF_DAY", "25:99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
