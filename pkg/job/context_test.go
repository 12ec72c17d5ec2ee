package job

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/jobq/pkg/logger"
)

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	_, ok := IDFromContext(context.Background())
	assert.False(t, ok)

	ctx := withJob(context.Background(), &Job{ID: "job-1", Type: "email", Attempts: 2})

	id, ok := IDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "job-1", id)

	attempt, ok := AttemptFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, attempt)
}

func TestLogExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithWriter(&buf),
		logger.WithExtractors(LogExtractors()...),
	)

	ctx := withJob(context.Background(), &Job{ID: "job-1", Type: "email", Attempts: 3})
	log.InfoContext(ctx, "sending")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "job-1", line["job_id"])
	assert.Equal(t, "email", line["job_type"])
	assert.InDelta(t, 3, line["attempt"], 0)

	buf.Reset()
	log.InfoContext(context.Background(), "outside a job", slog.Bool("ok", true))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, buf.String(), "job_id")
}
