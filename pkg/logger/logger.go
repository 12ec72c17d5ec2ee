package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type config struct {
	writer     io.Writer
	format     Format
	extractors []ContextExtractor
	level      slog.Level
	addSource  bool
}

// Option configures a logger.
type Option func(*config)

// WithLevel sets the minimum level written. Default: info.
func WithLevel(l slog.Level) Option {
	return func(c *config) {
		c.level = l
	}
}

// WithWriter sets the output destination. Default: os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.writer = w
		}
	}
}

// WithFormat sets the output encoding. Unknown formats fall back to JSON.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithSource adds the caller's file and line to every record.
func WithSource() Option {
	return func(c *config) {
		c.addSource = true
	}
}

// WithExtractors adds context extractors applied on every log call.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		c.extractors = append(c.extractors, extractors...)
	}
}

func newConfig(opts ...Option) *config {
	c := &config{
		writer: os.Stdout,
		format: FormatJSON,
		level:  slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) handler() slog.Handler {
	ho := &slog.HandlerOptions{Level: c.level, AddSource: c.addSource}
	if c.format == FormatText {
		return slog.NewTextHandler(c.writer, ho)
	}
	return slog.NewJSONHandler(c.writer, ho)
}

// New creates a structured logger.
//
// Example:
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithExtractors(job.LogExtractors()...),
//	)
func New(opts ...Option) *slog.Logger {
	c := newConfig(opts...)
	return slog.New(Decorate(c.handler(), c.extractors...))
}

// Discard returns a logger that drops everything.
// Use it as a default when logging is not configured.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name such as "debug" or "WARN" into a slog.Level.
// An empty string yields info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logger: invalid level %q: %w", s, err)
	}
	return l, nil
}
