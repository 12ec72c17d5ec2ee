package job

import "errors"

// Job errors.
var (
	// ErrUnknownTask is reported when a job is dispatched but no handler
	// is registered for its type. Such jobs are dropped, never retried.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned by typed handlers when the submitted
	// payload cannot be converted into the expected type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrHandlerPanic wraps a panic recovered from a handler.
	ErrHandlerPanic = errors.New("job: handler panicked")

	// ErrEmptyType is returned when Submit is called without a job type.
	ErrEmptyType = errors.New("job: job type is required")

	// ErrAlreadyStarted is returned when attempting to start a queue
	// that is already running.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned when attempting to stop a queue
	// that is not running.
	ErrNotStarted = errors.New("job: not started")

	// ErrJobNotFound is returned by Lookup when the job is neither live
	// nor present in the configured history.
	ErrJobNotFound = errors.New("job: not found")

	// ErrInvalidSchedule is returned when a cron expression cannot be parsed.
	ErrInvalidSchedule = errors.New("job: invalid schedule")
)
