package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.Queue.MaxPollInterval)
	assert.Equal(t, time.Second, cfg.Queue.BackoffBase)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "0 * * * *", cfg.Database.PruneSchedule)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
address: ":9090"
log_level: debug
log_format: text
queue:
  max_poll_interval: 2s
  backoff_base: 500ms
  backoff_max: 1m
  history_ttl: 1h
server:
  request_timeout: 3s
  body_limit: 2048
sentry:
  dsn: https://key@sentry.example.com/1
  environment: staging
schedules:
  - cron: "*/5 * * * *"
    type: log
    priority: 1
    payload:
      message: tick
`)

	cfg, err := loadConfig(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 2*time.Second, cfg.Queue.MaxPollInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Queue.BackoffBase)
	assert.Equal(t, time.Minute, cfg.Queue.BackoffMax)
	assert.Equal(t, time.Hour, cfg.Queue.HistoryTTL)
	assert.Equal(t, 10000, cfg.Queue.HistoryMaxEntries)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(2048), cfg.Server.BodyLimit)
	assert.Equal(t, "staging", cfg.Sentry.Environment)

	require.Len(t, cfg.Schedules, 1)
	s := cfg.Schedules[0]
	assert.Equal(t, "*/5 * * * *", s.Cron)
	assert.Equal(t, "log", s.Type)
	require.NotNil(t, s.Priority)
	assert.Equal(t, 1, *s.Priority)
	assert.Equal(t, map[string]any{"message": "tick"}, s.Payload)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "address: \":9090\"\nsentry:\n  dsn: from-file\n")

	cfg, err := loadConfig(path, env(map[string]string{
		"JOBQ_ADDRESS":   ":7070",
		"JOBQ_LOG_LEVEL": "warn",
		"SENTRY_DSN":     "from-env",
		"REDIS_URL":      "redis://localhost:6379/1",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Address)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.Sentry.DSN)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	assert.ErrorIs(t, err, ErrReadConfig)

	_, err = loadConfig(writeConfig(t, "address: [\n"), env(nil))
	assert.ErrorIs(t, err, ErrParseConfig)

	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad level", body: "log_level: loud\n"},
		{name: "bad format", body: "log_format: xml\n"},
		{name: "negative backoff", body: "queue:\n  backoff_base: -1s\n"},
		{name: "zero backoff", body: "queue:\n  backoff_base: 0s\n"},
		{name: "negative backoff max", body: "queue:\n  backoff_max: -1s\n"},
		{name: "schedule without type", body: "schedules:\n  - cron: \"* * * * *\"\n"},
		{
			name: "two history stores",
			env:  map[string]string{"REDIS_URL": "redis://localhost:6379/0", "DATABASE_URL": "postgres://localhost/jobq"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := ""
			if tt.body != "" {
				path = writeConfig(t, tt.body)
			}
			_, err := loadConfig(path, env(tt.env))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
