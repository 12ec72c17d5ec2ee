package job

import "time"

// EventKind identifies a job lifecycle transition.
type EventKind string

const (
	// EventSubmitted fires after a job enters the store.
	EventSubmitted EventKind = "submitted"
	// EventStarted fires when the loop picks a job and begins an attempt.
	EventStarted EventKind = "started"
	// EventCompleted fires when a handler succeeds.
	EventCompleted EventKind = "completed"
	// EventRetrying fires when a failed job is rescheduled.
	EventRetrying EventKind = "retrying"
	// EventFailed fires when a job exhausts its attempts.
	EventFailed EventKind = "failed"
	// EventDropped fires when a job has no registered handler.
	EventDropped EventKind = "dropped"
	// EventCleared fires for every pending job removed by ClearAll.
	EventCleared EventKind = "cleared"
)

// Event describes a single transition. Job is a snapshot taken right after
// the transition was applied.
type Event struct {
	At       time.Time
	Err      error
	Kind     EventKind
	Job      Job
	Duration time.Duration // handler run time, set for completed, retrying and failed
}

// Observer receives lifecycle events. Observers are called synchronously
// while the queue lock is held, so they see events in transition order.
// They must return quickly and must not call back into the Queue.
type Observer func(Event)
