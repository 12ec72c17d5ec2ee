package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/jobq/pkg/job"
	"github.com/dmitrymomot/jobq/pkg/logger"
)

func TestLogHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := logHandler(logger.New(logger.WithWriter(&buf), logger.WithLevel(-8)))

	out, err := h(context.Background(), LogPayload{Message: "hello", Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, "logged", out)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = h(context.Background(), LogPayload{Message: "x", Level: "loud"})
	assert.Error(t, err)
}

func TestWebhookHandler(t *testing.T) {
	t.Parallel()

	t.Run("delivered", func(t *testing.T) {
		t.Parallel()
		var gotBody []byte
		var gotHeader string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			gotHeader = r.Header.Get("X-Token")
			w.WriteHeader(http.StatusNoContent)
		}))
		t.Cleanup(srv.Close)

		res, err := webhookHandler(srv.Client())(context.Background(), WebhookPayload{
			URL:     srv.URL,
			Body:    json.RawMessage(`{"event":"done"}`),
			Headers: map[string]string{"X-Token": "secret"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, res.StatusCode)
		assert.JSONEq(t, `{"event":"done"}`, string(gotBody))
		assert.Equal(t, "secret", gotHeader)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)

		_, err := webhookHandler(srv.Client())(context.Background(), WebhookPayload{URL: srv.URL})
		assert.ErrorIs(t, err, errWebhookStatus)
	})

	t.Run("missing url", func(t *testing.T) {
		t.Parallel()
		_, err := webhookHandler(http.DefaultClient)(context.Background(), WebhookPayload{})
		assert.Error(t, err)
	})
}

func TestRegisterHandlers_ThroughQueue(t *testing.T) {
	t.Parallel()

	hits := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- r.Header.Get("X-Job-ID")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	q, err := job.NewQueue(job.WithHistory(job.NewMemoryHistory()))
	require.NoError(t, err)
	registerHandlers(q, logger.Discard(), srv.Client())
	assert.Equal(t, []string{"log", "webhook"}, q.Tasks())

	require.NoError(t, q.Start(context.Background()))
	t.Cleanup(func() { _ = q.Stop(context.Background()) })

	// Payload as decoded from the HTTP API.
	id, err := q.Submit(context.Background(), "webhook", json.RawMessage(`{"url":"`+srv.URL+`"}`))
	require.NoError(t, err)

	select {
	case got := <-hits:
		assert.Equal(t, id, got)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}
