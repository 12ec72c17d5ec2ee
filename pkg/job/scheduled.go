package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// scheduleConfig holds a periodic submission.
//
//nolint:betteralign // all fields contain pointers, no optimization possible
type scheduleConfig struct {
	payload any
	expr    string
	jobType string
	opts    []SubmitOption
}

// WithSchedule submits a jobType job with payload every time the cron
// expression fires while the queue is started. Expressions use 5 fields:
// minute hour day-of-month month day-of-week.
//
// Example:
//
//	job.WithSchedule("*/15 * * * *", "sync_accounts", nil, job.Priority(8))
func WithSchedule(expr, jobType string, payload any, opts ...SubmitOption) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			expr:    expr,
			jobType: jobType,
			payload: payload,
			opts:    opts,
		})
	}
}

// WithScheduledTask registers a periodic task using structural typing.
// The task must implement Name(), Schedule(), and Handle(ctx) methods.
// Schedule() should return a cron expression (5 fields: min hour day month weekday).
// Each firing submits a job of type Name() that goes through the queue
// like any other job, including retries.
//
// Example:
//
//	type CleanupSessions struct {
//	    repo *repository.Queries
//	}
//
//	func (t *CleanupSessions) Name() string     { return "cleanup_sessions" }
//	func (t *CleanupSessions) Schedule() string { return "0 * * * *" } // Every hour
//	func (t *CleanupSessions) Handle(ctx context.Context) error {
//	    return t.repo.DeleteExpiredSessions(ctx)
//	}
//
//	job.WithScheduledTask(tasks.NewCleanupSessions(repo))
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), func(ctx context.Context, _ any) (any, error) {
			return nil, task.Handle(ctx)
		})
		c.schedules = append(c.schedules, scheduleConfig{
			expr:    task.Schedule(),
			jobType: task.Name(),
		})
	}
}

// newCron builds the cron runner that feeds scheduled submissions into q.
func newCron(q *Queue, schedules []scheduleConfig) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cronLogger{logger: q.logger}))

	for _, sched := range schedules {
		schedule, err := parseCronSchedule(sched.expr)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, sched.expr, err)
		}
		if sched.jobType == "" {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, sched.expr, ErrEmptyType)
		}

		c.Schedule(schedule, cron.FuncJob(func() {
			q.mu.Lock()
			ctx := q.baseCtx
			q.mu.Unlock()

			if _, err := q.Submit(ctx, sched.jobType, sched.payload, sched.opts...); err != nil {
				q.logger.ErrorContext(ctx, "scheduled submission failed",
					slog.String("job_type", sched.jobType),
					slog.Any("error", err),
				)
			}
		}))
	}

	return c, nil
}

func parseCronSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.Any("error", err))...)
}
