package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Option configures a PostgreSQL connection pool.
type Option func(*options)

type options struct {
	maxConns          int32
	minConns          int32
	healthCheckPeriod time.Duration
	maxConnIdleTime   time.Duration
	maxConnLifetime   time.Duration
	retryAttempts     int
	retryInterval     time.Duration
}

func defaultOptions() *options {
	return &options{
		maxConns:          4,
		minConns:          1,
		healthCheckPeriod: time.Minute,
		maxConnIdleTime:   10 * time.Minute,
		maxConnLifetime:   30 * time.Minute,
		retryAttempts:     3,
		retryInterval:     5 * time.Second,
	}
}

// WithMaxConns sets the pool size bounds.
// Default: 4 max, 1 min.
func WithMaxConns(maxConns, minConns int32) Option {
	return func(o *options) {
		if maxConns > 0 {
			o.maxConns = maxConns
		}
		if minConns >= 0 && minConns <= o.maxConns {
			o.minConns = minConns
		}
	}
}

// WithConnLifetime sets how long a connection may idle and live before
// the pool replaces it. Default: 10 minutes idle, 30 minutes total.
func WithConnLifetime(idle, total time.Duration) Option {
	return func(o *options) {
		if idle > 0 {
			o.maxConnIdleTime = idle
		}
		if total > 0 {
			o.maxConnLifetime = total
		}
	}
}

// WithRetry configures how often Open tries before giving up.
// The wait grows linearly: interval, 2*interval, ...
// Default: 3 attempts, 5 seconds.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *options) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// Open establishes a PostgreSQL connection pool and verifies it with a ping.
//
// Example:
//
//	pool, err := db.Open(ctx, cfg.DatabaseURL, db.WithRetry(5, time.Second))
//	if err != nil {
//	    return err
//	}
//	if err := db.Migrate(ctx, pool, log); err != nil {
//	    return err
//	}
func Open(ctx context.Context, url string, opts ...Option) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	connConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	connConfig.MaxConns = o.maxConns
	connConfig.MinConns = o.minConns
	connConfig.HealthCheckPeriod = o.healthCheckPeriod
	connConfig.MaxConnIdleTime = o.maxConnIdleTime
	connConfig.MaxConnLifetime = o.maxConnLifetime

	return connect(ctx, connConfig, o.retryAttempts, o.retryInterval)
}

func connect(ctx context.Context, cfg *pgxpool.Config, attempts int, interval time.Duration) (*pgxpool.Pool, error) {
	attempts = max(attempts, 1)

	var lastErr error
	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			// Ping catches authentication and permission problems.
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-time.After(time.Duration(i+1) * interval):
		}
	}

	return nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}
