package job

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestHistory(clock *fakeClock, opts ...MemoryHistoryOption) *MemoryHistory {
	h := NewMemoryHistory(opts...)
	h.now = clock.Now
	return h
}

func TestMemoryHistory_RecordAndGet(t *testing.T) {
	t.Parallel()

	h := NewMemoryHistory()
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, Job{ID: "a", Status: StatusCompleted, Result: "ok"}))

	j, err := h.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, j.Status)
	assert.Equal(t, "ok", j.Result)

	_, err = h.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryHistory_RecordReplaces(t *testing.T) {
	t.Parallel()

	h := NewMemoryHistory()
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, Job{ID: "a", Status: StatusFailed}))
	require.NoError(t, h.Record(ctx, Job{ID: "a", Status: StatusCompleted}))

	j, err := h.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, j.Status)
	assert.Equal(t, 1, h.Len())
}

func TestMemoryHistory_TTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	h := newTestHistory(clock, WithHistoryTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, Job{ID: "a"}))

	clock.Advance(59 * time.Second)
	_, err := h.Get(ctx, "a")
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = h.Get(ctx, "a")
	require.ErrorIs(t, err, ErrJobNotFound)
	assert.Equal(t, 0, h.Len(), "expired entry is collected on access")
}

func TestMemoryHistory_NoTTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	h := newTestHistory(clock, WithHistoryTTL(0))
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, Job{ID: "a"}))
	clock.Advance(24 * 365 * time.Hour)

	_, err := h.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMemoryHistory_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	h := NewMemoryHistory(WithHistoryMaxEntries(3))
	ctx := context.Background()

	for i := range 3 {
		require.NoError(t, h.Record(ctx, Job{ID: fmt.Sprintf("job-%d", i)}))
	}

	// Touch the oldest entry so job-1 becomes the eviction candidate.
	_, err := h.Get(ctx, "job-0")
	require.NoError(t, err)

	require.NoError(t, h.Record(ctx, Job{ID: "job-3"}))
	assert.Equal(t, 3, h.Len())

	_, err = h.Get(ctx, "job-1")
	require.ErrorIs(t, err, ErrJobNotFound)

	for _, id := range []string{"job-0", "job-2", "job-3"} {
		_, err := h.Get(ctx, id)
		assert.NoError(t, err, id)
	}
}

func TestMemoryHistory_Unbounded(t *testing.T) {
	t.Parallel()

	h := NewMemoryHistory(WithHistoryMaxEntries(0))
	ctx := context.Background()

	for i := range 50 {
		require.NoError(t, h.Record(ctx, Job{ID: fmt.Sprintf("job-%d", i)}))
	}
	assert.Equal(t, 50, h.Len())
}
