package job

import "time"

// Status is the lifecycle state of a job.
type Status string

const (
	// StatusPending means the job sits in the store waiting to become due.
	StatusPending Status = "pending"
	// StatusProcessing means the scheduler loop is executing the job.
	StatusProcessing Status = "processing"
	// StatusCompleted means the handler succeeded. Terminal.
	StatusCompleted Status = "completed"
	// StatusFailed means every attempt failed. Terminal.
	StatusFailed Status = "failed"
)

// IsTerminal reports whether no further transitions can happen.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

const (
	// DefaultPriority is used when Submit is called without Priority.
	DefaultPriority = 5
	// DefaultMaxAttempts is used when Submit is called without MaxAttempts.
	DefaultMaxAttempts = 3
)

// Job is a unit of background work together with its execution state.
//
// Values returned by the queue are snapshots: mutating them has no effect
// on the scheduled job.
type Job struct {
	CreatedAt    time.Time  `json:"created_at"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Payload      any        `json:"payload,omitempty"`
	Result       any        `json:"result,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	FailedAt     *time.Time `json:"failed_at,omitempty"`
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Status       Status     `json:"status"`
	LastError    string     `json:"last_error,omitempty"`
	Attempts     int        `json:"attempts"`
	MaxAttempts  int        `json:"max_attempts"`
	Priority     int        `json:"priority"`

	// seq breaks ties between jobs with equal priority and scheduledFor,
	// keeping submission order.
	seq uint64
	// index is the position inside the heap, -1 when not stored.
	index int
}

// snapshot returns a detached copy of the job.
// Timestamp pointers are cloned so callers never share them with the queue.
func (j *Job) snapshot() Job {
	c := *j
	c.StartedAt = cloneTime(j.StartedAt)
	c.CompletedAt = cloneTime(j.CompletedAt)
	c.FailedAt = cloneTime(j.FailedAt)
	c.index = -1
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
