package job

import (
	"container/heap"
	"time"
)

// store holds every pending job in two heaps: delayed jobs keyed by
// scheduledFor, and due jobs keyed by (priority, scheduledFor, seq).
// Jobs migrate from delayed to ready once their time comes, so the ready
// head is always the eligible job with the smallest (priority, scheduledFor).
//
// store is not safe for concurrent use; the queue guards it with its mutex.
type store struct {
	ready   jobHeap
	delayed jobHeap
}

func newStore() *store {
	return &store{
		ready:   jobHeap{less: byPriority},
		delayed: jobHeap{less: bySchedule},
	}
}

// push inserts a pending job into the heap matching its schedule.
func (s *store) push(j *Job, now time.Time) {
	if j.ScheduledFor.After(now) {
		heap.Push(&s.delayed, j)
		return
	}
	heap.Push(&s.ready, j)
}

// promote moves every delayed job due at now into the ready heap.
func (s *store) promote(now time.Time) {
	for len(s.delayed.items) > 0 && !s.delayed.items[0].ScheduledFor.After(now) {
		j, _ := heap.Pop(&s.delayed).(*Job)
		heap.Push(&s.ready, j)
	}
}

// next returns the job that should be dispatched at now, removing it from
// the store. When nothing is due it returns nil and the time at which the
// earliest delayed job becomes eligible (zero when the store is empty).
func (s *store) next(now time.Time) (*Job, time.Time) {
	s.promote(now)
	if len(s.ready.items) > 0 {
		j, _ := heap.Pop(&s.ready).(*Job)
		return j, time.Time{}
	}
	if len(s.delayed.items) > 0 {
		return nil, s.delayed.items[0].ScheduledFor
	}
	return nil, time.Time{}
}

// clear removes every job and returns them.
func (s *store) clear() []*Job {
	removed := make([]*Job, 0, s.len())
	removed = append(removed, s.ready.items...)
	removed = append(removed, s.delayed.items...)
	for _, j := range removed {
		j.index = -1
	}
	s.ready.items = nil
	s.delayed.items = nil
	return removed
}

func (s *store) len() int {
	return len(s.ready.items) + len(s.delayed.items)
}

func byPriority(a, b *Job) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return bySchedule(a, b)
}

func bySchedule(a, b *Job) bool {
	if !a.ScheduledFor.Equal(b.ScheduledFor) {
		return a.ScheduledFor.Before(b.ScheduledFor)
	}
	return a.seq < b.seq
}

// jobHeap implements heap.Interface over jobs with a pluggable ordering.
type jobHeap struct {
	less  func(a, b *Job) bool
	items []*Job
}

func (h *jobHeap) Len() int { return len(h.items) }

func (h *jobHeap) Less(i, k int) bool { return h.less(h.items[i], h.items[k]) }

func (h *jobHeap) Swap(i, k int) {
	h.items[i], h.items[k] = h.items[k], h.items[i]
	h.items[i].index = i
	h.items[k].index = k
}

func (h *jobHeap) Push(x any) {
	j, _ := x.(*Job)
	j.index = len(h.items)
	h.items = append(h.items, j)
}

func (h *jobHeap) Pop() any {
	n := len(h.items)
	j := h.items[n-1]
	h.items[n-1] = nil
	j.index = -1
	h.items = h.items[:n-1]
	return j
}
