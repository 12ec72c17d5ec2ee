package job

import "time"

// submitConfig holds options for submitting a job.
type submitConfig struct {
	scheduledAt *time.Time
	delay       time.Duration
	maxAttempts int
	priority    int
}

func newSubmitConfig(opts ...SubmitOption) *submitConfig {
	cfg := &submitConfig{
		maxAttempts: DefaultMaxAttempts,
		priority:    DefaultPriority,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// scheduledFor resolves the first eligible dispatch time.
func (c *submitConfig) scheduledFor(now time.Time) time.Time {
	if c.scheduledAt != nil {
		return *c.scheduledAt
	}
	if c.delay > 0 {
		return now.Add(c.delay)
	}
	return now
}

// SubmitOption configures job submission.
type SubmitOption func(*submitConfig)

// Priority sets the job priority (lower numbers = higher priority).
// Among due jobs, lower values are dispatched first.
// Defaults to 5 if not set.
//
// Example:
//
//	q.Submit(ctx, "urgent_task", payload, job.Priority(0))  // ahead of defaults
//	q.Submit(ctx, "bulk_task", payload, job.Priority(10))   // behind defaults
func Priority(p int) SubmitOption {
	return func(c *submitConfig) {
		c.priority = p
	}
}

// Delay postpones the first dispatch by d.
// The job will not be processed before submission time + d.
//
// Example:
//
//	q.Submit(ctx, "send_reminder", payload, job.Delay(24*time.Hour))
func Delay(d time.Duration) SubmitOption {
	return func(c *submitConfig) {
		c.delay = d
		c.scheduledAt = nil
	}
}

// ScheduledAt schedules the first dispatch at a specific time.
// Times in the past make the job immediately eligible.
//
// Example:
//
//	tomorrow := time.Now().Add(24 * time.Hour)
//	q.Submit(ctx, "send_reminder", payload, job.ScheduledAt(tomorrow))
func ScheduledAt(t time.Time) SubmitOption {
	return func(c *submitConfig) {
		c.scheduledAt = &t
	}
}

// MaxAttempts sets the retry budget, counting the first attempt.
// Defaults to 3 if not set; non-positive values are ignored.
//
// Example:
//
//	q.Submit(ctx, "process_payment", payload, job.MaxAttempts(5))
func MaxAttempts(n int) SubmitOption {
	return func(c *submitConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}
