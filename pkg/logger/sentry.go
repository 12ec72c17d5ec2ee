package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	Release     string `yaml:"release"`
	// MinLevel is the lowest level forwarded to Sentry as a log entry.
	// Errors always create issues.
	MinLevel slog.Level `yaml:"-"`
}

// FlushFunc waits up to timeout for buffered Sentry events to be sent.
type FlushFunc func(timeout time.Duration) bool

func noFlush(time.Duration) bool { return true }

// NewWithSentry creates a logger that writes locally and forwards warnings
// and errors to Sentry. With an empty DSN, or if the SDK fails to
// initialize, only local output is produced.
//
// Call the returned FlushFunc before exit so queued events are delivered.
func NewWithSentry(cfg SentryConfig, opts ...Option) (*slog.Logger, FlushFunc) {
	c := newConfig(opts...)
	local := c.handler()

	if cfg.DSN == "" {
		return slog.New(Decorate(local, c.extractors...)), noFlush
	}

	if cfg.Environment == "" {
		cfg.Environment = "production"
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize sentry", slog.Any("error", err))
		return slog.New(Decorate(local, c.extractors...)), noFlush
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   sentryLogLevels(cfg.MinLevel),
	}.NewSentryHandler(context.Background())

	return slog.New(Decorate(fanout{local, remote}, c.extractors...)), sentry.Flush
}

// sentryLogLevels lists the levels at or above minLevel that Sentry stores as logs.
// Anything below warn is clamped to warn.
func sentryLogLevels(minLevel slog.Level) []slog.Level {
	if minLevel >= slog.LevelError {
		return []slog.Level{slog.LevelError}
	}
	return []slog.Level{slog.LevelWarn, slog.LevelError}
}
