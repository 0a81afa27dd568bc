package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress       string
	DatabaseURI      string
	CodGuardAPIURL   string
	ServiceToken     string
	LogLevel         string
	RatingTimeout    time.Duration
	FeedbackTimeout  time.Duration
	ImportTimeout    time.Duration
	BundleDelay      time.Duration
	QueueTTL         time.Duration
	BlockRetention   time.Duration
	TaskPollInterval time.Duration
	TaskWorkers      int
	ShutdownTimeout  time.Duration
	RatingRPS        float64
	SettingsSeedFile string
	TracingURL       string
	ServiceName      string
}

const (
	defaultRunAddress       = ":8080"
	defaultCodGuardAPIURL   = "https://api.codguard.com"
	defaultLogLevel         = "info"
	defaultRatingTimeout    = 10 * time.Second
	defaultFeedbackTimeout  = 5 * time.Second
	defaultImportTimeout    = 30 * time.Second
	defaultBundleDelay      = time.Hour
	defaultQueueTTL         = 24 * time.Hour
	defaultBlockRetention   = 90 * 24 * time.Hour
	defaultTaskPollInterval = 15 * time.Second
	defaultTaskWorkers      = 2
	defaultShutdownTimeout  = 10 * time.Second
	defaultServiceName      = "codguard"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:       getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:      getString(lookup, "DATABASE_URI", ""),
		CodGuardAPIURL:   getString(lookup, "CODGUARD_API_URL", defaultCodGuardAPIURL),
		ServiceToken:     getString(lookup, "SERVICE_TOKEN", ""),
		LogLevel:         getString(lookup, "LOG_LEVEL", defaultLogLevel),
		RatingTimeout:    getDuration(lookup, "RATING_TIMEOUT", defaultRatingTimeout),
		FeedbackTimeout:  getDuration(lookup, "FEEDBACK_TIMEOUT", defaultFeedbackTimeout),
		ImportTimeout:    getDuration(lookup, "IMPORT_TIMEOUT", defaultImportTimeout),
		BundleDelay:      getDuration(lookup, "BUNDLE_DELAY", defaultBundleDelay),
		QueueTTL:         getDuration(lookup, "QUEUE_TTL", defaultQueueTTL),
		BlockRetention:   getDuration(lookup, "BLOCK_RETENTION", defaultBlockRetention),
		TaskPollInterval: getDuration(lookup, "TASK_POLL_INTERVAL", defaultTaskPollInterval),
		TaskWorkers:      getInt(lookup, "TASK_WORKERS", defaultTaskWorkers),
		ShutdownTimeout:  getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		RatingRPS:        getFloat(lookup, "RATING_RPS", 0),
		SettingsSeedFile: getString(lookup, "SETTINGS_SEED_FILE", ""),
		TracingURL:       getString(lookup, "OTEL_TRACING_URL", ""),
		ServiceName:      getString(lookup, "OTEL_SERVICE_NAME", defaultServiceName),
	}

	fs := flag.NewFlagSet("codguard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		bundleDelayStr     = cfg.BundleDelay.String()
		pollIntervalStr    = cfg.TaskPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.CodGuardAPIURL, "u", cfg.CodGuardAPIURL, "CodGuard API base URL")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&bundleDelayStr, "bundle-delay", bundleDelayStr, "Delay before bundled orders are sent")
	fs.StringVar(&pollIntervalStr, "task-poll-interval", pollIntervalStr, "Interval between scheduled task polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.TaskWorkers, "task-workers", cfg.TaskWorkers, "Number of concurrent task workers")
	fs.StringVar(&cfg.SettingsSeedFile, "settings-seed", cfg.SettingsSeedFile, "YAML file with initial shop settings")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.BundleDelay, err = time.ParseDuration(bundleDelayStr); err != nil {
		return nil, fmt.Errorf("invalid bundle delay: %w", err)
	}

	if cfg.TaskPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid task poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if tokenFile, ok := lookup("SERVICE_TOKEN_FILE"); ok && tokenFile != "" {
		content, err := os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("read service token file: %w", err)
		}
		cfg.ServiceToken = strings.TrimSpace(string(content))
	}

	normalize(cfg)

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.CodGuardAPIURL == "" {
		return nil, fmt.Errorf("codguard api url must be provided")
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.RatingTimeout <= 0 {
		cfg.RatingTimeout = defaultRatingTimeout
	}
	if cfg.FeedbackTimeout <= 0 {
		cfg.FeedbackTimeout = defaultFeedbackTimeout
	}
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = defaultImportTimeout
	}
	if cfg.BundleDelay <= 0 {
		cfg.BundleDelay = defaultBundleDelay
	}
	if cfg.QueueTTL <= 0 {
		cfg.QueueTTL = defaultQueueTTL
	}
	if cfg.BlockRetention <= 0 {
		cfg.BlockRetention = defaultBlockRetention
	}
	if cfg.TaskPollInterval <= 0 {
		cfg.TaskPollInterval = defaultTaskPollInterval
	}
	if cfg.TaskWorkers <= 0 {
		cfg.TaskWorkers = defaultTaskWorkers
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.RatingRPS < 0 {
		cfg.RatingRPS = 0
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
