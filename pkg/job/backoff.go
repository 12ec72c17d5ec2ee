package job

import "time"

// maxBackoffShift keeps Base<<attempt from overflowing time.Duration.
const maxBackoffShift = 30

// Backoff computes the delay before the next attempt of a failed job.
type Backoff interface {
	// Delay returns how long to wait after a failure on the given attempt
	// (1-indexed: attempt 1 is the first dispatch).
	Delay(attempt int) time.Duration
}

// BackoffFunc adapts a plain function to the Backoff interface.
type BackoffFunc func(attempt int) time.Duration

// Delay calls f(attempt).
func (f BackoffFunc) Delay(attempt int) time.Duration { return f(attempt) }

// Exponential doubles the delay with every attempt: Base * 2^attempt.
// A zero Max means no cap.
type Exponential struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns Base * 2^attempt, capped at Max.
func (e Exponential) Delay(attempt int) time.Duration {
	attempt = min(max(attempt, 0), maxBackoffShift)
	d := e.Base << attempt
	if e.Max > 0 && d > e.Max {
		return e.Max
	}
	return d
}

// DefaultBackoff waits 2^attempt seconds: 2s after the first failure,
// 4s after the second, and so on.
func DefaultBackoff() Backoff {
	return Exponential{Base: time.Second}
}
