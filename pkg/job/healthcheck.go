package job

import (
	"context"
	"errors"
)

// ErrHealthcheckFailed is returned when the queue health check fails.
var ErrHealthcheckFailed = errors.New("job: healthcheck failed")

var (
	errQueueNil        = errors.New("queue is nil")
	errQueueNotStarted = errors.New("queue not started")
)

// Healthcheck returns a health check function for the queue.
// The check verifies that the queue has been started.
//
// Example:
//
//	jobq.WithReadinessCheck("jobs", job.Healthcheck(q))
func Healthcheck(q *Queue) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if q == nil {
			return errors.Join(ErrHealthcheckFailed, errQueueNil)
		}

		q.mu.Lock()
		started := q.started
		q.mu.Unlock()

		if !started {
			return errors.Join(ErrHealthcheckFailed, errQueueNotStarted)
		}

		return nil
	}
}
