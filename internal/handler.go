package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/jobq/pkg/job"
)

// Queue is the part of *job.Queue the API serves.
type Queue interface {
	Submit(ctx context.Context, jobType string, payload any, opts ...job.SubmitOption) (string, error)
	Lookup(ctx context.Context, id string) (job.Job, error)
	ClearAll() int
	Status() job.QueueStatus
	Tasks() []string
}

// HandlerFunc is an API handler that reports failures as errors.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// SubmitRequest is the body of POST /jobs.
type SubmitRequest struct {
	ScheduledAt *time.Time      `json:"scheduled_at,omitempty"`
	Priority    *int            `json:"priority,omitempty"`
	Type        string          `json:"type"`
	Delay       string          `json:"delay,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	MaxAttempts int             `json:"max_attempts,omitempty"`
}

// options converts the request fields into submit options.
func (req SubmitRequest) options() ([]job.SubmitOption, error) {
	var opts []job.SubmitOption
	if req.Priority != nil {
		opts = append(opts, job.Priority(*req.Priority))
	}
	if req.MaxAttempts < 0 {
		return nil, fmt.Errorf("max_attempts must not be negative, got %d", req.MaxAttempts)
	}
	if req.MaxAttempts > 0 {
		opts = append(opts, job.MaxAttempts(req.MaxAttempts))
	}
	if req.Delay != "" && req.ScheduledAt != nil {
		return nil, errors.New("delay and scheduled_at are mutually exclusive")
	}
	if req.Delay != "" {
		d, err := time.ParseDuration(req.Delay)
		if err != nil {
			return nil, fmt.Errorf("invalid delay %q: %w", req.Delay, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("delay must not be negative, got %s", d)
		}
		opts = append(opts, job.Delay(d))
	}
	if req.ScheduledAt != nil {
		opts = append(opts, job.ScheduledAt(*req.ScheduledAt))
	}
	return opts, nil
}

// SubmitResponse is the body of a successful POST /jobs.
type SubmitResponse struct {
	ID string `json:"id"`
}

// ClearResponse is the body of DELETE /jobs.
type ClearResponse struct {
	Removed int `json:"removed"`
}

// TasksResponse is the body of GET /tasks.
type TasksResponse struct {
	Tasks []string `json:"tasks"`
}

// api serves the queue over HTTP.
type api struct {
	queue  Queue
	logger *slog.Logger
}

func newAPI(q Queue, log *slog.Logger) *api {
	return &api{queue: q, logger: log}
}

// Routes declares the queue endpoints on r.
func (a *api) Routes(r chi.Router) {
	r.Post("/jobs", a.wrap(a.submit))
	r.Get("/jobs/{id}", a.wrap(a.lookup))
	r.Delete("/jobs", a.wrap(a.clear))
	r.Get("/status", a.wrap(a.status))
	r.Get("/tasks", a.wrap(a.tasks))
}

func (a *api) wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			writeError(w, r, a.logger, err)
		}
	}
}

func (a *api) submit(w http.ResponseWriter, r *http.Request) error {
	var req SubmitRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return newHTTPError(http.StatusRequestEntityTooLarge, "request body too large", err)
		}
		return ErrBadRequest("invalid request body", err)
	}

	opts, err := req.options()
	if err != nil {
		return ErrBadRequest(err.Error(), err)
	}

	var payload any
	if len(req.Payload) > 0 && string(req.Payload) != "null" {
		payload = req.Payload
	}

	id, err := a.queue.Submit(r.Context(), req.Type, payload, opts...)
	if err != nil {
		return err
	}

	w.Header().Set("Location", "/jobs/"+id)
	writeJSON(w, http.StatusAccepted, SubmitResponse{ID: id})
	return nil
}

func (a *api) lookup(w http.ResponseWriter, r *http.Request) error {
	j, err := a.queue.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, j)
	return nil
}

func (a *api) clear(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, ClearResponse{Removed: a.queue.ClearAll()})
	return nil
}

func (a *api) status(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, a.queue.Status())
	return nil
}

func (a *api) tasks(w http.ResponseWriter, _ *http.Request) error {
	tasks := a.queue.Tasks()
	if tasks == nil {
		tasks = []string{}
	}
	writeJSON(w, http.StatusOK, TasksResponse{Tasks: tasks})
	return nil
}
