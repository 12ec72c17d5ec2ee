package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/jobq/pkg/job"
)

type hookLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *hookLog) hook(name string, err error) func(context.Context) error {
	return func(context.Context) error {
		l.mu.Lock()
		l.calls = append(l.calls, name)
		l.mu.Unlock()
		return err
	}
}

func (l *hookLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return ln
}

func waitReady(t *testing.T, url string) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRun_Lifecycle(t *testing.T) {
	t.Parallel()

	q, err := job.NewQueue()
	require.NoError(t, err)

	ln := listen(t)
	base := "http://" + ln.Addr().String()
	ctx, cancel := context.WithCancel(context.Background())
	hooks := &hookLog{}

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(
			WithContext(ctx),
			WithListener(ln),
			WithQueue(q),
			WithStartupHook(hooks.hook("start", nil)),
			WithShutdownHook(hooks.hook("stop-1", nil)),
			WithShutdownHook(hooks.hook("stop-2", nil)),
			WithShutdownTimeout(5*time.Second),
		)
	}()

	// Readiness includes the queue check, so 200 means the queue started.
	waitReady(t, base+"/health/ready")
	require.NoError(t, job.Healthcheck(q)(context.Background()))

	resp, err := http.Post(base+"/jobs", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	assert.Equal(t, []string{"start", "stop-1", "stop-2"}, hooks.get())
	assert.False(t, q.Status().Running)
	assert.ErrorIs(t, job.Healthcheck(q)(context.Background()), job.ErrHealthcheckFailed)
}

func TestRun_StartupHookError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	hooks := &hookLog{}
	ln := listen(t)

	err := Run(
		WithListener(ln),
		WithStartupHook(hooks.hook("first", errBoom)),
		WithStartupHook(hooks.hook("second", nil)),
		WithShutdownHook(hooks.hook("stop", nil)),
	)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"first", "stop"}, hooks.get())

	_, err = ln.Accept()
	assert.ErrorIs(t, err, net.ErrClosed)
}

func TestRun_StartupHookErrorStopsQueue(t *testing.T) {
	t.Parallel()

	q, err := job.NewQueue()
	require.NoError(t, err)

	errBoom := errors.New("boom")
	errStop := errors.New("stop failed")
	hooks := &hookLog{}
	ln := listen(t)

	err = Run(
		WithListener(ln),
		WithQueue(q),
		WithStartupHook(hooks.hook("first", nil)),
		WithStartupHook(hooks.hook("second", errBoom)),
		WithShutdownHook(hooks.hook("stop-1", errStop)),
		WithShutdownHook(hooks.hook("stop-2", nil)),
	)
	require.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, err, errStop)
	assert.NotErrorIs(t, err, job.ErrNotStarted)
	assert.Equal(t, []string{"first", "second", "stop-1", "stop-2"}, hooks.get())

	// The queue was started by the first hook and stopped on the way out.
	assert.ErrorIs(t, job.Healthcheck(q)(context.Background()), job.ErrHealthcheckFailed)
	assert.ErrorIs(t, q.Stop(context.Background()), job.ErrNotStarted)

	_, err = ln.Accept()
	assert.ErrorIs(t, err, net.ErrClosed)
}

func TestStopQueue(t *testing.T) {
	t.Parallel()

	q, err := job.NewQueue()
	require.NoError(t, err)

	// A queue that never started counts as stopped.
	require.NoError(t, stopQueue(q)(context.Background()))

	require.NoError(t, q.Start(context.Background()))
	require.NoError(t, stopQueue(q)(context.Background()))
	assert.ErrorIs(t, job.Healthcheck(q)(context.Background()), job.ErrHealthcheckFailed)
}

func TestRun_ShutdownHookErrorsJoined(t *testing.T) {
	t.Parallel()

	errA := errors.New("a")
	errB := errors.New("b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(
		WithContext(ctx),
		WithListener(listen(t)),
		WithShutdownHook(func(context.Context) error { return errA }),
		WithShutdownHook(func(context.Context) error { return errB }),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestRun_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	ln := listen(t)
	base := "http://" + ln.Addr().String()
	ctx, cancel := context.WithCancel(context.Background())

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("jobq_up 1\n"))
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(WithContext(ctx), WithListener(ln), WithMetrics(metrics))
	}()

	waitReady(t, base+"/metrics")

	// Without a queue the API is not mounted.
	resp, err := http.Get(base + "/status")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	require.NoError(t, <-errCh)
}

func TestBuildRunConfig(t *testing.T) {
	t.Parallel()

	cfg := buildRunConfig()
	assert.Equal(t, defaultAddress, cfg.address)
	assert.Equal(t, defaultShutdownTimeout, cfg.shutdownTimeout)
	assert.Equal(t, defaultRequestTimeout, cfg.requestTimeout)
	assert.Equal(t, int64(1<<20), cfg.bodyLimit)
	assert.Nil(t, cfg.queue)

	cfg = buildRunConfig(
		WithAddress(""),
		WithQueue(nil),
		WithLogger(nil),
		WithBodyLimit(-1),
		WithRequestTimeout(0),
		WithReadinessCheck("", func(context.Context) error { return nil }),
		WithReadinessCheck("nil", nil),
	)
	assert.Equal(t, defaultAddress, cfg.address)
	assert.Equal(t, int64(1<<20), cfg.bodyLimit)
	assert.Equal(t, defaultRequestTimeout, cfg.requestTimeout)
	assert.Empty(t, cfg.checks)

	cfg = buildRunConfig(WithAddress(":9000"), WithBodyLimit(10), WithHealthTimeout(time.Second))
	assert.Equal(t, ":9000", cfg.address)
	assert.Equal(t, int64(10), cfg.bodyLimit)
	assert.Equal(t, time.Second, cfg.healthTimeout)
}
