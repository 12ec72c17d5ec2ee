package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/jobq/pkg/job"
)

const (
	defaultHistoryPrefix = "jobq:history"
	defaultHistoryTTL    = 24 * time.Hour
)

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithHistoryPrefix sets the key namespace. Keys are stored as "{prefix}:{job id}".
// Default: "jobq:history"
func WithHistoryPrefix(prefix string) HistoryOption {
	return func(h *History) {
		if prefix != "" {
			h.prefix = prefix
		}
	}
}

// WithHistoryTTL sets how long terminal jobs stay retrievable.
// Non-positive values keep entries until Redis evicts them.
// Default: 24 hours.
func WithHistoryTTL(d time.Duration) HistoryOption {
	return func(h *History) {
		h.ttl = d
	}
}

// History stores terminal job snapshots in Redis as JSON, so outcomes stay
// visible across restarts and to other processes sharing the instance.
//
// Payload and Result round-trip through JSON: a struct payload comes back
// as map[string]any.
type History struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewHistory creates a Redis-backed job history.
//
// Example:
//
//	q, err := job.NewQueue(job.WithHistory(redis.NewHistory(client)))
func NewHistory(client redis.UniversalClient, opts ...HistoryOption) *History {
	h := &History{
		client: client,
		prefix: defaultHistoryPrefix,
		ttl:    defaultHistoryTTL,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record stores j, replacing any previous snapshot with the same ID.
func (h *History) Record(ctx context.Context, j job.Job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}
	if err := h.client.Set(ctx, h.key(j.ID), data, max(h.ttl, 0)).Err(); err != nil {
		return errors.Join(ErrHistoryWrite, err)
	}
	return nil
}

// Get returns the stored snapshot or job.ErrJobNotFound.
func (h *History) Get(ctx context.Context, id string) (job.Job, error) {
	data, err := h.client.Get(ctx, h.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return job.Job{}, job.ErrJobNotFound
		}
		return job.Job{}, errors.Join(ErrHistoryRead, err)
	}

	var j job.Job
	if err := json.Unmarshal(data, &j); err != nil {
		return job.Job{}, errors.Join(ErrUnmarshal, err)
	}
	return j, nil
}

func (h *History) key(id string) string {
	return h.prefix + ":" + id
}

var _ job.History = (*History)(nil)
