package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/jobq/pkg/job"
)

const defaultHistoryTTL = 7 * 24 * time.Hour

const (
	upsertHistorySQL = `INSERT INTO jobq_history (id, job_type, status, data, recorded_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    job_type = EXCLUDED.job_type,
    status = EXCLUDED.status,
    data = EXCLUDED.data,
    recorded_at = EXCLUDED.recorded_at,
    expires_at = EXCLUDED.expires_at`

	selectHistorySQL = `SELECT data FROM jobq_history
WHERE id = $1 AND (expires_at IS NULL OR expires_at > $2)`

	pruneHistorySQL = `DELETE FROM jobq_history
WHERE expires_at IS NOT NULL AND expires_at <= $1`
)

// Querier is the subset of *pgxpool.Pool used by History.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithHistoryTTL sets how long terminal jobs stay retrievable.
// Non-positive values keep rows until deleted by hand.
// Default: 7 days.
func WithHistoryTTL(d time.Duration) HistoryOption {
	return func(h *History) {
		h.ttl = d
	}
}

// History stores terminal job snapshots in the jobq_history table.
// Run Migrate before first use.
//
// Expired rows are hidden from Get immediately but stay on disk until
// Prune deletes them.
type History struct {
	db  Querier
	now func() time.Time
	ttl time.Duration
}

// NewHistory creates a PostgreSQL-backed job history.
//
// Example:
//
//	q, err := job.NewQueue(job.WithHistory(db.NewHistory(pool)))
func NewHistory(db Querier, opts ...HistoryOption) *History {
	h := &History{
		db:  db,
		now: time.Now,
		ttl: defaultHistoryTTL,
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

	now := h.now()
	var expiresAt *time.Time
	if h.ttl > 0 {
		t := now.Add(h.ttl)
		expiresAt = &t
	}

	if _, err := h.db.Exec(ctx, upsertHistorySQL,
		j.ID, j.Type, string(j.Status), data, now, expiresAt,
	); err != nil {
		return errors.Join(ErrHistoryWrite, err)
	}
	return nil
}

// Get returns the stored snapshot or job.ErrJobNotFound.
func (h *History) Get(ctx context.Context, id string) (job.Job, error) {
	var data []byte
	if err := h.db.QueryRow(ctx, selectHistorySQL, id, h.now()).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

// Prune deletes expired rows and returns how many were removed.
//
// Example:
//
//	job.Register(q, "history.prune", func(ctx context.Context, _ struct{}) (int64, error) {
//	    return history.Prune(ctx)
//	})
func (h *History) Prune(ctx context.Context) (int64, error) {
	tag, err := h.db.Exec(ctx, pruneHistorySQL, h.now())
	if err != nil {
		return 0, errors.Join(ErrHistoryPrune, err)
	}
	return tag.RowsAffected(), nil
}

var _ job.History = (*History)(nil)
