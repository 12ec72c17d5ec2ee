package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// runtimeConfig holds configuration for running the HTTP server.
type runtimeConfig struct {
	baseCtx         context.Context
	handler         http.Handler
	listener        net.Listener
	logger          *slog.Logger
	address         string
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

// runServer opens the listener and runs startup hooks, then serves until a
// signal, a cancelled base context or a serve error, then drains the server
// and runs shutdown hooks. A failing startup hook closes the listener and
// runs every shutdown hook before returning.
func runServer(cfg runtimeConfig) error {
	if cfg.address == "" {
		cfg.address = defaultAddress
	}
	if cfg.shutdownTimeout == 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	baseCtx := cfg.baseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ln := cfg.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", cfg.address); err != nil {
			return err
		}
	}

	for i, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			logger.Error("startup hook failed", slog.Int("hook", i), slog.Any("error", err))
			errs := []error{fmt.Errorf("startup hook %d: %w", i, err)}
			if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = append(errs, err)
			}
			errs = append(errs, runShutdownHooks(cfg, logger)...)
			return errors.Join(errs...)
		}
	}

	server := &http.Server{
		Handler:           cfg.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
		defer shutdownCancel()

		var errs []error

		// Drain HTTP first so no submission races the queue stopping.
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, callShutdownHooks(shutdownCtx, cfg.shutdownHooks, logger)...)

		if len(errs) > 0 {
			logger.Error("shutdown completed with errors")
			return errors.Join(errs...)
		}

		logger.Info("shutdown completed")
		return nil
	})

	return g.Wait()
}

// runShutdownHooks runs the shutdown hooks under a fresh shutdown timeout.
func runShutdownHooks(cfg runtimeConfig, logger *slog.Logger) []error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()
	return callShutdownHooks(ctx, cfg.shutdownHooks, logger)
}

func callShutdownHooks(ctx context.Context, hooks []func(context.Context) error, logger *slog.Logger) []error {
	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			logger.Error("shutdown hook failed", slog.Any("error", err))
		}
	}
	return errs
}
