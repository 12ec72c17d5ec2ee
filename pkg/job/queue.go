package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Bounds for terminal jobs kept in memory after a failed history write.
const (
	unrecordedMaxEntries = 1000
	unrecordedTTL        = time.Hour
)

// QueueStatus is a point-in-time view of a queue.
type QueueStatus struct {
	QueueLength int  `json:"queue_length"`
	Running     bool `json:"running"`
	Pending     int  `json:"pending"`
	Processing  int  `json:"processing"`
}

// Queue is an in-process job scheduler with a single serial consumer.
//
// Jobs are dispatched one at a time in (priority, scheduledFor) order among
// the jobs that are due. A slow handler delays every job behind it.
// Failed attempts are retried with backoff until MaxAttempts is reached.
// Jobs can be submitted before Start; they are processed once the queue starts.
type Queue struct {
	registry  *taskRegistry
	store     *store
	live      map[string]*Job
	history   History
	// unrecorded keeps terminal jobs whose history write failed.
	unrecorded *MemoryHistory
	backoff   Backoff
	logger    *slog.Logger
	cron      *cron.Cron
	observers []Observer

	baseCtx  context.Context
	wake     chan struct{}
	stop     chan struct{}
	loopDone chan struct{}

	maxPollInterval time.Duration
	seq             uint64
	processing      int

	mu      sync.Mutex
	started bool
	running bool
}

// NewQueue creates a queue with the given options.
// Handlers can be registered with options or later with RegisterHandler.
// Call Start to begin processing.
func NewQueue(opts ...Option) (*Queue, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var unrecorded *MemoryHistory
	if cfg.history != nil {
		unrecorded = NewMemoryHistory(
			WithHistoryMaxEntries(unrecordedMaxEntries),
			WithHistoryTTL(unrecordedTTL),
		)
	}

	q := &Queue{
		registry:        cfg.registry,
		store:           newStore(),
		live:            make(map[string]*Job),
		history:         cfg.history,
		unrecorded:      unrecorded,
		backoff:         cfg.backoff,
		logger:          cfg.logger,
		observers:       cfg.observers,
		baseCtx:         context.Background(),
		wake:            make(chan struct{}, 1),
		maxPollInterval: cfg.maxPollInterval,
	}

	if len(cfg.schedules) > 0 {
		c, err := newCron(q, cfg.schedules)
		if err != nil {
			return nil, err
		}
		q.cron = c
	}

	return q, nil
}

// RegisterHandler associates jobType with h.
// Registering the same type again replaces the previous handler.
func (q *Queue) RegisterHandler(jobType string, h HandlerFunc) {
	q.registry.register(jobType, h)
}

// Tasks returns the registered job types, sorted.
func (q *Queue) Tasks() []string {
	return q.registry.names()
}

// HasHandler reports whether a handler is registered for jobType.
func (q *Queue) HasHandler(jobType string) bool {
	_, ok := q.registry.get(jobType)
	return ok
}

// Submit adds a job to the queue and returns its ID without waiting for
// execution. The job keeps its place in the store until it is dispatched,
// cleared, or the process exits.
func (q *Queue) Submit(ctx context.Context, jobType string, payload any, opts ...SubmitOption) (string, error) {
	if jobType == "" {
		return "", ErrEmptyType
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("job: generate id: %w", err)
	}

	cfg := newSubmitConfig(opts...)
	now := time.Now()
	j := &Job{
		ID:           id.String(),
		Type:         jobType,
		Payload:      payload,
		Status:       StatusPending,
		MaxAttempts:  cfg.maxAttempts,
		Priority:     cfg.priority,
		CreatedAt:    now,
		ScheduledFor: cfg.scheduledFor(now),
		index:        -1,
	}

	q.mu.Lock()
	q.seq++
	j.seq = q.seq
	q.store.push(j, now)
	q.live[j.ID] = j
	q.emitLocked(Event{Kind: EventSubmitted, Job: j.snapshot(), At: now})
	q.ensureLoopLocked()
	q.mu.Unlock()

	q.logger.DebugContext(ctx, "job submitted",
		slog.String("job_id", j.ID),
		slog.String("job_type", jobType),
		slog.Int("priority", j.Priority),
		slog.Time("scheduled_for", j.ScheduledFor),
	)

	return j.ID, nil
}

// ClearAll removes every pending job from the store and returns how many
// were removed. A job that is already processing is not affected.
func (q *Queue) ClearAll() int {
	q.mu.Lock()
	removed := q.store.clear()
	now := time.Now()
	for _, j := range removed {
		delete(q.live, j.ID)
		q.emitLocked(Event{Kind: EventCleared, Job: j.snapshot(), At: now})
	}
	q.signalLocked()
	q.mu.Unlock()

	q.logger.Info("queue cleared", slog.Int("removed", len(removed)))
	return len(removed)
}

// Status returns a snapshot of the queue counters.
func (q *Queue) Status() QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.store.len()
	return QueueStatus{
		QueueLength: n,
		Running:     q.running,
		Pending:     n,
		Processing:  q.processing,
	}
}

// Lookup returns a snapshot of the job with the given ID. Pending and
// processing jobs are always found; terminal jobs are found only while the
// configured History retains them.
func (q *Queue) Lookup(ctx context.Context, id string) (Job, error) {
	q.mu.Lock()
	if j, ok := q.live[id]; ok {
		snap := j.snapshot()
		q.mu.Unlock()
		return snap, nil
	}
	q.mu.Unlock()

	if q.history == nil {
		return Job{}, ErrJobNotFound
	}

	j, err := q.history.Get(ctx, id)
	if err != nil {
		if fallback, ferr := q.unrecorded.Get(ctx, id); ferr == nil {
			return fallback, nil
		}
		if errors.Is(err, ErrJobNotFound) {
			return Job{}, ErrJobNotFound
		}
		return Job{}, fmt.Errorf("job: history lookup: %w", err)
	}
	return j, nil
}

// Start begins processing jobs. Handlers receive a context derived from ctx
// that is never cancelled by the queue.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return ErrAlreadyStarted
	}

	q.started = true
	q.stop = make(chan struct{})
	q.baseCtx = context.WithoutCancel(ctx)
	if q.cron != nil {
		q.cron.Start()
	}
	q.ensureLoopLocked()

	q.logger.Info("job queue started",
		slog.Int("tasks", len(q.registry.names())),
		slog.Int("pending", q.store.len()),
	)

	return nil
}

// Stop halts dispatching. The loop exits at the next job boundary; a
// handler that is already running is not interrupted and Stop waits for it
// until ctx is done. Pending jobs stay in the store for a later Start.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return ErrNotStarted
	}
	q.started = false
	close(q.stop)
	done := q.loopDone
	running := q.running
	q.mu.Unlock()

	if q.cron != nil {
		select {
		case <-q.cron.Stop().Done():
		case <-ctx.Done():
			return fmt.Errorf("job: stop scheduler: %w", ctx.Err())
		}
	}

	if running && done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("job: stop: %w", ctx.Err())
		}
	}

	q.logger.Info("job queue stopped")
	return nil
}

// StartFunc returns a startup function for the queue.
func (q *Queue) StartFunc() func(context.Context) error {
	return func(ctx context.Context) error {
		return q.Start(ctx)
	}
}

// Shutdown returns a shutdown function for the queue.
func (q *Queue) Shutdown() func(context.Context) error {
	return func(ctx context.Context) error {
		return q.Stop(ctx)
	}
}

// ensureLoopLocked starts the loop when the queue is started, has work and
// no loop is running; otherwise it wakes the running loop. Caller holds q.mu.
func (q *Queue) ensureLoopLocked() {
	if !q.started || q.store.len() == 0 {
		return
	}
	if q.running {
		q.signalLocked()
		return
	}
	q.running = true
	q.loopDone = make(chan struct{})
	go q.loop(q.loopDone)
}

// signalLocked wakes a sleeping loop without blocking.
func (q *Queue) signalLocked() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// loop is the single consumer. It exits when the store is empty or the
// queue is stopped; Submit or Start starts a fresh one.
func (q *Queue) loop(done chan struct{}) {
	defer close(done)

	for {
		q.mu.Lock()
		if !q.started || q.store.len() == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}

		now := time.Now()
		j, dueAt := q.store.next(now)
		if j == nil {
			stop := q.stop
			q.mu.Unlock()
			q.sleep(min(dueAt.Sub(now), q.maxPollInterval), stop)
			continue
		}

		j.Status = StatusProcessing
		j.Attempts++
		if j.StartedAt == nil {
			started := now
			j.StartedAt = &started
		}

		handler, ok := q.registry.get(j.Type)
		if !ok {
			q.dropLocked(j)
			q.mu.Unlock()
			continue
		}

		q.processing++
		q.emitLocked(Event{Kind: EventStarted, Job: j.snapshot(), At: now})
		ctx := withJob(q.baseCtx, j)
		q.mu.Unlock()

		q.logger.DebugContext(ctx, "dispatching job",
			slog.String("job_id", j.ID),
			slog.String("job_type", j.Type),
			slog.Int("attempt", j.Attempts),
		)

		start := time.Now()
		result, err := q.execute(ctx, handler, j)
		q.finish(ctx, j, result, err, time.Since(start))
	}
}

// sleep waits for d, a Submit/ClearAll signal or Stop, whichever comes first.
func (q *Queue) sleep(d time.Duration, stop <-chan struct{}) {
	timer := time.NewTimer(max(d, 0))
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-q.wake:
	case <-stop:
	}
}

// execute runs one attempt, turning a panic into an error.
func (q *Queue) execute(ctx context.Context, h HandlerFunc, j *Job) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.ErrorContext(ctx, "job handler panicked",
				slog.String("job_id", j.ID),
				slog.String("job_type", j.Type),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			result = nil
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h(ctx, j.Payload)
}

// finish applies the outcome of an attempt.
func (q *Queue) finish(ctx context.Context, j *Job, result any, handlerErr error, elapsed time.Duration) {
	now := time.Now()

	q.mu.Lock()
	q.processing--

	if handlerErr == nil {
		j.Status = StatusCompleted
		j.Result = result
		j.CompletedAt = &now
		snap := j.snapshot()
		q.mu.Unlock()

		q.logger.DebugContext(ctx, "job completed",
			slog.String("job_id", j.ID),
			slog.String("job_type", j.Type),
			slog.Int("attempt", j.Attempts),
			slog.Duration("duration", elapsed),
		)
		q.retire(ctx, j, Event{Kind: EventCompleted, Job: snap, At: now, Duration: elapsed})
		return
	}

	j.LastError = handlerErr.Error()

	if j.Attempts < j.MaxAttempts {
		delay := q.backoff.Delay(j.Attempts)
		j.Status = StatusPending
		j.ScheduledFor = now.Add(delay)
		q.store.push(j, now)
		q.emitLocked(Event{Kind: EventRetrying, Job: j.snapshot(), Err: handlerErr, At: now, Duration: elapsed})
		q.mu.Unlock()

		q.logger.WarnContext(ctx, "job failed, scheduling retry",
			slog.String("job_id", j.ID),
			slog.String("job_type", j.Type),
			slog.Int("attempt", j.Attempts),
			slog.Int("max_attempts", j.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", handlerErr),
		)
		return
	}

	j.Status = StatusFailed
	j.FailedAt = &now
	snap := j.snapshot()
	q.mu.Unlock()

	q.logger.ErrorContext(ctx, "job failed",
		slog.String("job_id", j.ID),
		slog.String("job_type", j.Type),
		slog.Int("attempts", j.Attempts),
		slog.Any("error", handlerErr),
	)
	q.retire(ctx, j, Event{Kind: EventFailed, Job: snap, Err: handlerErr, At: now, Duration: elapsed})
}

// retire records a terminal job in history, then forgets it and emits ev.
// The job stays visible to Lookup until history has it. When the write
// fails, the snapshot goes to a bounded in-memory fallback instead.
func (q *Queue) retire(ctx context.Context, j *Job, ev Event) {
	if q.history != nil {
		if err := q.history.Record(ctx, ev.Job); err != nil {
			_ = q.unrecorded.Record(ctx, ev.Job)
			q.logger.WarnContext(ctx, "failed to record job history, keeping it in memory",
				slog.String("job_id", j.ID),
				slog.Any("error", err),
			)
		}
	}

	q.mu.Lock()
	delete(q.live, j.ID)
	q.emitLocked(ev)
	q.mu.Unlock()
}

// dropLocked discards a job without a handler. Caller holds q.mu.
func (q *Queue) dropLocked(j *Job) {
	err := fmt.Errorf("%w: %s", ErrUnknownTask, j.Type)
	j.LastError = err.Error()
	delete(q.live, j.ID)
	q.emitLocked(Event{Kind: EventDropped, Job: j.snapshot(), Err: err, At: time.Now()})

	q.logger.Error("dropping job without handler",
		slog.String("job_id", j.ID),
		slog.String("job_type", j.Type),
		slog.Any("error", err),
	)
}

// emitLocked delivers ev to every observer. Caller holds q.mu, which keeps
// events in transition order.
func (q *Queue) emitLocked(ev Event) {
	for _, o := range q.observers {
		o(ev)
	}
}
