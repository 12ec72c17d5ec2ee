package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dmitrymomot/jobq/pkg/job"
)

// Run serves the queue's HTTP API and blocks until shutdown.
//
// The queue configured with WithQueue is started once the listener is open
// and stopped after the server drains, ahead of any other shutdown hooks.
// If a startup hook fails, the queue is stopped and every shutdown hook runs
// before Run returns.
//
// Example:
//
//	err := jobq.Run(
//	    jobq.WithQueue(q),
//	    jobq.WithAddress(":8080"),
//	    jobq.WithLogger(log),
//	    jobq.WithShutdownHook(redis.Shutdown(client)),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks

	rc := routerConfig{
		logger:         logger,
		metrics:        cfg.metrics,
		checks:         cfg.checks,
		bodyLimit:      cfg.bodyLimit,
		requestTimeout: cfg.requestTimeout,
		healthTimeout:  cfg.healthTimeout,
	}

	if cfg.queue != nil {
		rc.queue = cfg.queue
		cfg.checks["queue"] = job.Healthcheck(cfg.queue)
		startupHooks = append([]func(context.Context) error{cfg.queue.StartFunc()}, startupHooks...)
		shutdownHooks = append([]func(context.Context) error{stopQueue(cfg.queue)}, shutdownHooks...)
	}

	return runServer(runtimeConfig{
		baseCtx:         cfg.baseCtx,
		handler:         newRouter(rc),
		listener:        cfg.listener,
		logger:          logger,
		address:         cfg.address,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		shutdownTimeout: cfg.shutdownTimeout,
	})
}

// stopQueue stops q, treating a queue that never started as stopped.
func stopQueue(q *job.Queue) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := q.Stop(ctx); err != nil && !errors.Is(err, job.ErrNotStarted) {
			return err
		}
		return nil
	}
}
