// Package job provides an in-process background job scheduler.
//
// Callers submit units of work tagged with a type, a priority, an optional
// delay and a retry budget. A single consumer goroutine dispatches each job
// to the handler registered for its type, retrying failed attempts with
// exponential backoff until the job succeeds or runs out of attempts.
//
// # Features
//
//   - Priority ordering among due jobs (lower value first), FIFO on ties
//   - Delayed and scheduled-at submissions
//   - Retry with exponential backoff (2^attempt seconds by default)
//   - Type-safe handler registration via generics or structural typing
//   - Periodic submissions with cron expressions
//   - Lifecycle events for metrics and auditing
//   - Optional history of terminal jobs for fire-and-forget lookups
//   - Health check integration
//
// # Queue Lifecycle
//
// A Queue is an explicit value passed to collaborators; there is no global
// instance. Jobs can be submitted before Start and stay pending until the
// queue starts:
//
//	q, err := job.NewQueue(
//	    job.WithLogger(slog.Default()),
//	    job.WithTask(tasks.NewSendWelcome(mailer)),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := q.Start(ctx); err != nil {
//	    return err
//	}
//	defer q.Stop(context.Background())
//
// # Handlers
//
// Handlers can be registered as plain functions over untyped payloads:
//
//	q.RegisterHandler("notify", func(ctx context.Context, payload any) (any, error) {
//	    return nil, notifier.Send(ctx, payload.(string))
//	})
//
// or with a typed payload and result:
//
//	job.Register(q, "resize", func(ctx context.Context, p ResizePayload) (ResizeResult, error) {
//	    return images.Resize(ctx, p.Key, p.Width)
//	})
//
// Registering a type twice replaces the previous handler. A job whose type
// has no handler at dispatch time is logged and dropped without retry.
//
// # Submitting Jobs
//
//	id, err := q.Submit(ctx, "send_reminder", payload,
//	    job.Priority(1),
//	    job.Delay(time.Hour),
//	    job.MaxAttempts(5),
//	)
//
// Submit returns as soon as the job is stored. Use Lookup with a History
// configured to inspect the outcome later.
//
// # Ordering and Execution
//
// Among jobs whose scheduled time has passed, the one with the smallest
// (priority, scheduledFor) pair runs next. Jobs run one at a time; a slow
// handler delays every job behind it, and there is no handler timeout.
// When nothing is due, the loop sleeps until the earliest delayed job, a new
// submission, or at most the poll interval (5s by default).
//
// # Retries
//
// After a failed attempt k, the job becomes pending again with
// scheduledFor = now + 2^k seconds. Once attempts reach MaxAttempts the
// job is failed for good and its last error is kept in LastError.
// Panics in handlers are recovered and treated as failures.
//
// # Error Handling
//
// The package defines sentinel errors for common failure modes:
//
//   - [ErrUnknownTask] - No handler registered for a dispatched job
//   - [ErrInvalidPayload] - Payload cannot be converted for a typed handler
//   - [ErrHandlerPanic] - Handler panicked
//   - [ErrEmptyType] - Submit called without a job type
//   - [ErrAlreadyStarted] - Queue already running
//   - [ErrNotStarted] - Queue not running
//   - [ErrJobNotFound] - Lookup found neither a live job nor a history entry
//   - [ErrInvalidSchedule] - Cron expression could not be parsed
//   - [ErrHealthcheckFailed] - Health check failed
package job
