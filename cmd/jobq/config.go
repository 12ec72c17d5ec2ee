package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/jobq/pkg/logger"
)

var (
	ErrReadConfig      = errors.New("config: failed to read file")
	ErrParseConfig     = errors.New("config: failed to parse file")
	ErrInvalidConfig   = errors.New("config: invalid configuration")
	errTwoHistoryStore = errors.New("redis.url and database.url are mutually exclusive")
)

// Config is the server configuration. It is read from a YAML file, then
// selected fields are overridden from the environment.
type Config struct {
	Sentry    logger.SentryConfig `yaml:"sentry"`
	Redis     RedisConfig         `yaml:"redis"`
	Database  DatabaseConfig      `yaml:"database"`
	Address   string              `yaml:"address"`
	LogLevel  string              `yaml:"log_level"`
	LogFormat string              `yaml:"log_format"`
	Schedules []ScheduleConfig    `yaml:"schedules"`
	Queue     QueueConfig         `yaml:"queue"`
	Server    ServerConfig        `yaml:"server"`
}

// QueueConfig tunes the scheduler.
type QueueConfig struct {
	MaxPollInterval   time.Duration `yaml:"max_poll_interval"`
	BackoffBase       time.Duration `yaml:"backoff_base"`
	BackoffMax        time.Duration `yaml:"backoff_max"`
	HistoryTTL        time.Duration `yaml:"history_ttl"`
	HistoryMaxEntries int           `yaml:"history_max_entries"`
}

// ServerConfig tunes the HTTP runtime.
type ServerConfig struct {
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	BodyLimit       int64         `yaml:"body_limit"`
}

// RedisConfig enables the Redis job history when URL is set.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// DatabaseConfig enables the PostgreSQL job history when URL is set.
type DatabaseConfig struct {
	URL           string `yaml:"url"`
	PruneSchedule string `yaml:"prune_schedule"`
}

// ScheduleConfig submits a job on a cron schedule.
type ScheduleConfig struct {
	Payload  map[string]any `yaml:"payload"`
	Priority *int           `yaml:"priority"`
	Cron     string         `yaml:"cron"`
	Type     string         `yaml:"type"`
}

func defaultConfig() Config {
	return Config{
		Address:   ":8080",
		LogLevel:  "info",
		LogFormat: "json",
		Queue: QueueConfig{
			MaxPollInterval:   5 * time.Second,
			BackoffBase:       time.Second,
			HistoryTTL:        24 * time.Hour,
			HistoryMaxEntries: 10000,
		},
		Server: ServerConfig{
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			PruneSchedule: "0 * * * *",
		},
	}
}

// loadConfig reads path (if not empty) over the defaults, then applies
// environment overrides: JOBQ_ADDRESS, JOBQ_LOG_LEVEL, SENTRY_DSN,
// SENTRY_ENVIRONMENT, REDIS_URL and DATABASE_URL.
func loadConfig(path string, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Join(ErrReadConfig, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Join(ErrParseConfig, err)
		}
	}

	override(&cfg.Address, getenv("JOBQ_ADDRESS"))
	override(&cfg.LogLevel, getenv("JOBQ_LOG_LEVEL"))
	override(&cfg.Sentry.DSN, getenv("SENTRY_DSN"))
	override(&cfg.Sentry.Environment, getenv("SENTRY_ENVIRONMENT"))
	override(&cfg.Redis.URL, getenv("REDIS_URL"))
	override(&cfg.Database.URL, getenv("DATABASE_URL"))

	if err := cfg.validate(); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c Config) validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != string(logger.FormatJSON) && c.LogFormat != string(logger.FormatText) {
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	if c.Redis.URL != "" && c.Database.URL != "" {
		return errTwoHistoryStore
	}
	if c.Queue.BackoffBase <= 0 {
		return errors.New("queue.backoff_base must be positive")
	}
	if c.Queue.BackoffMax < 0 {
		return errors.New("queue.backoff_max must not be negative")
	}
	for i, s := range c.Schedules {
		if s.Cron == "" || s.Type == "" {
			return fmt.Errorf("schedules[%d]: cron and type are required", i)
		}
	}
	return nil
}
