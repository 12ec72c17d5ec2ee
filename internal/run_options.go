package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/jobq/middlewares"
	"github.com/dmitrymomot/jobq/pkg/health"
	"github.com/dmitrymomot/jobq/pkg/job"
)

const (
	defaultAddress           = ":8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
	defaultRequestTimeout    = 10 * time.Second
	defaultHealthTimeout     = 5 * time.Second
)

// RunOption configures Run.
type RunOption func(*runConfig)

// runConfig holds runtime configuration for the server.
type runConfig struct {
	baseCtx         context.Context
	queue           *job.Queue
	logger          *slog.Logger
	metrics         http.Handler
	listener        net.Listener
	checks          health.Checks
	address         string
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
	requestTimeout  time.Duration
	healthTimeout   time.Duration
	bodyLimit       int64
}

// buildRunConfig creates a runConfig from the provided options.
func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		address:         defaultAddress,
		checks:          make(health.Checks),
		shutdownTimeout: defaultShutdownTimeout,
		requestTimeout:  defaultRequestTimeout,
		healthTimeout:   defaultHealthTimeout,
		bodyLimit:       middlewares.DefaultBodyLimit,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithQueue serves q over HTTP and ties its lifecycle to the server:
// it starts before the listener accepts requests and stops after the
// server has drained. Its health check is added to readiness.
func WithQueue(q *job.Queue) RunOption {
	return func(c *runConfig) {
		if q != nil {
			c.queue = q
		}
	}
}

// WithAddress sets the HTTP listen address. Defaults to ":8080".
func WithAddress(addr string) RunOption {
	return func(c *runConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// WithListener serves on ln instead of listening on the address.
func WithListener(ln net.Listener) RunOption {
	return func(c *runConfig) {
		if ln != nil {
			c.listener = ln
		}
	}
}

// WithLogger sets the server logger. If nil, logging is disabled.
func WithLogger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics exposes h at GET /metrics.
func WithMetrics(h http.Handler) RunOption {
	return func(c *runConfig) {
		if h != nil {
			c.metrics = h
		}
	}
}

// WithReadinessCheck adds a named check to GET /health/ready.
//
// Example:
//
//	jobq.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if name != "" && fn != nil {
			c.checks[name] = fn
		}
	}
}

// WithHealthTimeout bounds a readiness run. Defaults to 5 seconds.
func WithHealthTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.healthTimeout = d
		}
	}
}

// WithBodyLimit caps API request bodies. Defaults to 1MB.
func WithBodyLimit(n int64) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.bodyLimit = n
		}
	}
}

// WithRequestTimeout sets the API request deadline. Defaults to 10 seconds.
func WithRequestTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithShutdownTimeout sets the timeout for graceful shutdown.
// It covers draining the HTTP server, stopping the queue and running
// shutdown hooks. Defaults to 30 seconds.
func WithShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// WithStartupHook registers a function that runs before the server accepts
// requests. Hooks run in registration order; the first error aborts Run.
func WithStartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// WithShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
//
// Example:
//
//	jobq.WithShutdownHook(redis.Shutdown(client))
func WithShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets the base context for signal handling.
// Cancelling it triggers a graceful shutdown like SIGTERM does.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
