package jobq

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/jobq/internal"
	"github.com/dmitrymomot/jobq/pkg/job"
)

// Type aliases - public API
type (
	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// Queue is the part of a job queue the HTTP API serves.
	Queue = internal.Queue

	// HTTPError is an API error with the status code it renders as.
	HTTPError = internal.HTTPError

	// SubmitRequest is the body of POST /jobs.
	SubmitRequest = internal.SubmitRequest

	// SubmitResponse is the body of a successful POST /jobs.
	SubmitResponse = internal.SubmitResponse

	// ClearResponse is the body of DELETE /jobs.
	ClearResponse = internal.ClearResponse

	// TasksResponse is the body of GET /tasks.
	TasksResponse = internal.TasksResponse
)

// Run serves the queue over HTTP and blocks until shutdown.
//
// Example:
//
//	err := jobq.Run(
//	    jobq.WithQueue(q),
//	    jobq.WithAddress(":8080"),
//	    jobq.WithLogger(log),
//	    jobq.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	    jobq.WithShutdownHook(redis.Shutdown(client)),
//	)
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// Run options

// WithQueue serves q and ties its lifecycle to the server.
func WithQueue(q *job.Queue) RunOption {
	return internal.WithQueue(q)
}

// WithAddress sets the HTTP listen address. Defaults to ":8080".
func WithAddress(addr string) RunOption {
	return internal.WithAddress(addr)
}

// WithListener serves on ln instead of listening on the address.
func WithListener(ln net.Listener) RunOption {
	return internal.WithListener(ln)
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) RunOption {
	return internal.WithLogger(l)
}

// WithMetrics exposes h at GET /metrics.
func WithMetrics(h http.Handler) RunOption {
	return internal.WithMetrics(h)
}

// WithReadinessCheck adds a named check to GET /health/ready.
func WithReadinessCheck(name string, fn func(context.Context) error) RunOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithHealthTimeout bounds a readiness run.
func WithHealthTimeout(d time.Duration) RunOption {
	return internal.WithHealthTimeout(d)
}

// WithBodyLimit caps API request bodies.
func WithBodyLimit(n int64) RunOption {
	return internal.WithBodyLimit(n)
}

// WithRequestTimeout sets the API request deadline.
func WithRequestTimeout(d time.Duration) RunOption {
	return internal.WithRequestTimeout(d)
}

// WithShutdownTimeout sets the timeout for graceful shutdown.
func WithShutdownTimeout(d time.Duration) RunOption {
	return internal.WithShutdownTimeout(d)
}

// WithStartupHook registers a function that runs before the server
// accepts requests.
func WithStartupHook(fn func(context.Context) error) RunOption {
	return internal.WithStartupHook(fn)
}

// WithShutdownHook registers a cleanup function to run during shutdown.
func WithShutdownHook(fn func(context.Context) error) RunOption {
	return internal.WithShutdownHook(fn)
}

// WithContext sets the base context. Cancelling it shuts the server down.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}
