package job

import (
	"context"
	"log/slog"
	"time"
)

// defaultMaxPollInterval bounds how long the loop sleeps before
// re-checking the store for a delayed job.
const defaultMaxPollInterval = 5 * time.Second

// config holds queue configuration.
type config struct {
	registry        *taskRegistry
	logger          *slog.Logger
	backoff         Backoff
	history         History
	observers       []Observer
	schedules       []scheduleConfig
	maxPollInterval time.Duration
}

// newConfig creates a config with defaults.
func newConfig() *config {
	return &config{
		registry:        newTaskRegistry(),
		backoff:         DefaultBackoff(),
		maxPollInterval: defaultMaxPollInterval,
	}
}

// Option configures the queue.
type Option func(*config)

// WithTask registers a task handler using structural typing.
// The task must implement Name() and Handle(ctx, P) methods.
// The payload type P is inferred from the Handle method signature.
//
// Example:
//
//	type SendWelcome struct {
//	    mailer mail.Mailer
//	}
//
//	func (t *SendWelcome) Name() string { return "send_welcome" }
//	func (t *SendWelcome) Handle(ctx context.Context, p SendWelcomePayload) error {
//	    return t.mailer.Send(ctx, "welcome", p.Email)
//	}
//
//	job.WithTask(tasks.NewSendWelcome(mailer))
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), taskHandler[P](task))
	}
}

// WithHandler registers a handler for jobType at construction time.
// Equivalent to calling Queue.RegisterHandler after NewQueue.
func WithHandler(jobType string, h HandlerFunc) Option {
	return func(c *config) {
		if jobType != "" && h != nil {
			c.registry.register(jobType, h)
		}
	}
}

// WithLogger sets the logger for queue processing.
// If not set, a noop logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBackoff replaces the retry delay strategy.
// Defaults to 2^attempt seconds.
//
// Example:
//
//	job.WithBackoff(job.Exponential{Base: time.Second, Max: time.Minute})
func WithBackoff(b Backoff) Option {
	return func(c *config) {
		if b != nil {
			c.backoff = b
		}
	}
}

// WithMaxPollInterval caps how long the loop waits for a delayed job before
// looking at the store again. Defaults to 5 seconds.
func WithMaxPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.maxPollInterval = d
		}
	}
}

// WithHistory keeps terminal jobs in h so Lookup can report their outcome.
// Without a history, jobs are forgotten as soon as they complete or fail.
func WithHistory(h History) Option {
	return func(c *config) {
		if h != nil {
			c.history = h
		}
	}
}

// WithObserver adds a lifecycle event observer. May be given multiple times.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}
