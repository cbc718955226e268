package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Scanner   ScannerConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// DatabaseConfig holds the PostgreSQL connection string.
type DatabaseConfig struct {
	URL string
}

// ScannerConfig bounds the per-cycle collection behaviour.
type ScannerConfig struct {
	FetchTimeout           time.Duration
	MaxParallelFetches     int
	PatternMinOccurrences  int
	AlertSeverityThreshold int
	MaxPhoneNumbers        int
	MaxURLs                int
	MaxKeywords            int
	MaxExcerptLength       int
	SourcesFile            string // optional YAML seed for the source registry
}

// SchedulerConfig drives the recurring scan and the daily statistics job.
type SchedulerConfig struct {
	ScanInterval   time.Duration
	MisfireGrace   time.Duration
	StatsTimeOfDay string // "HH:MM", local time of the once-daily stats job
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultScanInterval   = 12 * time.Hour
	defaultMisfireGrace   = time.Hour
	defaultStatsTimeOfDay = "23:59"

	defaultFetchTimeout           = 30 * time.Second
	defaultMaxParallelFetches     = 5
	defaultPatternMinOccurrences  = 3
	defaultAlertSeverityThreshold = 8
	defaultMaxPhoneNumbers        = 10
	defaultMaxURLs                = 10
	defaultMaxKeywords            = 20
	defaultMaxExcerptLength       = 5000
)

// Load reads configuration from environment variables, applying defaults
// when values are not provided.
func Load() (Config, error) {
	// Cloud platforms set PORT, but allow SERVER_PORT override for local dev
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Scanner: ScannerConfig{
			FetchTimeout:           defaultFetchTimeout,
			MaxParallelFetches:     defaultMaxParallelFetches,
			PatternMinOccurrences:  defaultPatternMinOccurrences,
			AlertSeverityThreshold: defaultAlertSeverityThreshold,
			MaxPhoneNumbers:        defaultMaxPhoneNumbers,
			MaxURLs:                defaultMaxURLs,
			MaxKeywords:            defaultMaxKeywords,
			MaxExcerptLength:       defaultMaxExcerptLength,
			SourcesFile:            os.Getenv("SOURCES_FILE"),
		},
		Scheduler: SchedulerConfig{
			ScanInterval:   defaultScanInterval,
			MisfireGrace:   defaultMisfireGrace,
			StatsTimeOfDay: getEnv("STATS_TIME_OF_DAY", defaultStatsTimeOfDay),
		},
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	if v := os.Getenv("SCAN_INTERVAL_HOURS"); v != "" {
		hours, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCAN_INTERVAL_HOURS: %w", err)
		}
		cfg.Scheduler.ScanInterval = time.Duration(hours) * time.Hour
	}

	if v := os.Getenv("MISFIRE_GRACE_MINUTES"); v != "" {
		minutes, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MISFIRE_GRACE_MINUTES: %w", err)
		}
		cfg.Scheduler.MisfireGrace = time.Duration(minutes) * time.Minute
	}

	if v := os.Getenv("FETCH_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FETCH_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Scanner.FetchTimeout = d
	}

	intOverrides := []struct {
		env    string
		target *int
	}{
		{"MAX_PARALLEL_FETCHES", &cfg.Scanner.MaxParallelFetches},
		{"PATTERN_MIN_OCCURRENCES", &cfg.Scanner.PatternMinOccurrences},
		{"ALERT_SEVERITY_THRESHOLD", &cfg.Scanner.AlertSeverityThreshold},
		{"MAX_PHONE_NUMBERS", &cfg.Scanner.MaxPhoneNumbers},
		{"MAX_URLS", &cfg.Scanner.MaxURLs},
		{"MAX_KEYWORDS", &cfg.Scanner.MaxKeywords},
		{"MAX_EXCERPT_LENGTH", &cfg.Scanner.MaxExcerptLength},
	}
	for _, o := range intOverrides {
		if v := os.Getenv(o.env); v != "" {
			n, err := parsePositiveInt(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", o.env, err)
			}
			*o.target = n
		}
	}

	if _, err := time.Parse("15:04", cfg.Scheduler.StatsTimeOfDay); err != nil {
		return Config{}, fmt.Errorf("invalid STATS_TIME_OF_DAY: must be HH:MM")
	}

	return cfg, nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
