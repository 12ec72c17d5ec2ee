package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// HandlerFunc performs one attempt of a job. The returned value is stored
// as the job result on success; a non-nil error triggers the retry policy.
type HandlerFunc func(ctx context.Context, payload any) (any, error)

// taskRegistry stores handlers by job type.
type taskRegistry struct {
	handlers map[string]HandlerFunc
	mu       sync.RWMutex
}

// newTaskRegistry creates a new task registry.
func newTaskRegistry() *taskRegistry {
	return &taskRegistry{
		handlers: make(map[string]HandlerFunc),
	}
}

// register adds a handler, replacing any handler already registered for the type.
func (r *taskRegistry) register(jobType string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = h
}

// get retrieves a handler by job type.
func (r *taskRegistry) get(jobType string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok && h != nil
}

// names returns all registered job types, sorted.
func (r *taskRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.handlers))
}

// Register installs a typed handler for jobType on q.
// The payload is converted to P before the call (see decodePayload).
//
// Example:
//
//	job.Register(q, "send_welcome", func(ctx context.Context, p WelcomePayload) (string, error) {
//	    return mailer.Send(ctx, p.Email)
//	})
func Register[P, R any](q *Queue, jobType string, fn func(context.Context, P) (R, error)) {
	q.RegisterHandler(jobType, typedHandler(fn))
}

// typedHandler wraps a typed function into a HandlerFunc.
func typedHandler[P, R any](fn func(context.Context, P) (R, error)) HandlerFunc {
	return func(ctx context.Context, raw any) (any, error) {
		payload, err := decodePayload[P](raw)
		if err != nil {
			return nil, err
		}
		return fn(ctx, payload)
	}
}

// taskHandler wraps a structural task (Name + Handle) into a HandlerFunc.
func taskHandler[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) HandlerFunc {
	return typedHandler(func(ctx context.Context, p P) (any, error) {
		return nil, task.Handle(ctx, p)
	})
}

// decodePayload converts a submitted payload into P.
// Values already of type P pass through. Raw JSON ([]byte, json.RawMessage)
// and generic JSON objects (map[string]any) are decoded into P. A nil
// payload yields the zero value.
func decodePayload[P any](raw any) (P, error) {
	var payload P
	if raw == nil {
		return payload, nil
	}
	if p, ok := raw.(P); ok {
		return p, nil
	}

	var data []byte
	switch v := raw.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return payload, errors.Join(ErrInvalidPayload, err)
		}
		data = b
	default:
		return payload, fmt.Errorf("%w: got %T, want %T", ErrInvalidPayload, raw, payload)
	}

	if len(data) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, errors.Join(ErrInvalidPayload, err)
	}
	return payload, nil
}
