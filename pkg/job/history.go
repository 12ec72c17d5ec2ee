package job

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// History keeps terminal jobs around after they leave the queue so callers
// can look up the outcome of fire-and-forget submissions.
type History interface {
	// Record stores a terminal job snapshot, replacing any previous entry
	// with the same ID.
	Record(ctx context.Context, j Job) error

	// Get returns a stored snapshot or ErrJobNotFound.
	Get(ctx context.Context, id string) (Job, error)
}

const (
	defaultHistoryEntries = 10_000
	defaultHistoryTTL     = time.Hour
)

// MemoryHistoryOption configures a MemoryHistory.
type MemoryHistoryOption func(*MemoryHistory)

// WithHistoryMaxEntries bounds the number of retained jobs.
// The least recently recorded or read entry is evicted first.
// Default: 10000. Non-positive values disable the bound.
func WithHistoryMaxEntries(n int) MemoryHistoryOption {
	return func(h *MemoryHistory) {
		h.maxEntries = n
	}
}

// WithHistoryTTL sets how long a terminal job stays retrievable.
// Default: 1 hour. Non-positive values keep entries until evicted.
func WithHistoryTTL(d time.Duration) MemoryHistoryOption {
	return func(h *MemoryHistory) {
		h.ttl = d
	}
}

// historyEntry is a retained job with its expiration time.
type historyEntry struct {
	expiresAt time.Time // zero value = never expires
	job       Job
}

// MemoryHistory is an in-process History with LRU eviction and TTL expiry.
// Expired entries are removed lazily on access.
type MemoryHistory struct {
	items      map[string]*list.Element
	order      *list.List
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	mu         sync.Mutex
}

// NewMemoryHistory creates an in-memory history.
//
// Example:
//
//	q, err := job.NewQueue(
//	    job.WithHistory(job.NewMemoryHistory(job.WithHistoryTTL(24 * time.Hour))),
//	)
func NewMemoryHistory(opts ...MemoryHistoryOption) *MemoryHistory {
	h := &MemoryHistory{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
		ttl:        defaultHistoryTTL,
		maxEntries: defaultHistoryEntries,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record stores a terminal job snapshot.
func (h *MemoryHistory) Record(_ context.Context, j Job) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var expiresAt time.Time
	if h.ttl > 0 {
		expiresAt = h.now().Add(h.ttl)
	}

	if elem, ok := h.items[j.ID]; ok {
		e := elem.Value.(*historyEntry)
		e.job = j
		e.expiresAt = expiresAt
		h.order.MoveToFront(elem)
		return nil
	}

	if h.maxEntries > 0 && len(h.items) >= h.maxEntries {
		if oldest := h.order.Back(); oldest != nil {
			h.remove(oldest)
		}
	}

	h.items[j.ID] = h.order.PushFront(&historyEntry{job: j, expiresAt: expiresAt})
	return nil
}

// Get returns a stored snapshot or ErrJobNotFound.
func (h *MemoryHistory) Get(_ context.Context, id string) (Job, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	elem, ok := h.items[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}

	e := elem.Value.(*historyEntry)
	if !e.expiresAt.IsZero() && h.now().After(e.expiresAt) {
		h.remove(elem)
		return Job{}, ErrJobNotFound
	}

	h.order.MoveToFront(elem)
	return e.job, nil
}

// Len returns the number of retained entries, including expired ones not yet collected.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

func (h *MemoryHistory) remove(elem *list.Element) {
	e := elem.Value.(*historyEntry)
	delete(h.items, e.job.ID)
	h.order.Remove(elem)
}

var _ History = (*MemoryHistory)(nil)
