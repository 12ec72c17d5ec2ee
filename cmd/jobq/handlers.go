package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/jobq/pkg/db"
	"github.com/dmitrymomot/jobq/pkg/job"
)

var errWebhookStatus = errors.New("webhook: unexpected status")

// LogPayload is the payload of the "log" job.
type LogPayload struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

// WebhookPayload is the payload of the "webhook" job.
type WebhookPayload struct {
	Body    json.RawMessage   `json:"body"`
	Headers map[string]string `json:"headers"`
	URL     string            `json:"url"`
}

// WebhookResult is stored as the result of a delivered webhook.
type WebhookResult struct {
	StatusCode int `json:"status_code"`
}

// registerHandlers installs the built-in job types on q.
func registerHandlers(q *job.Queue, log *slog.Logger, client *http.Client) {
	job.Register(q, "log", logHandler(log))
	job.Register(q, "webhook", webhookHandler(client))
}

// registerPrune installs the history cleanup job.
func registerPrune(q *job.Queue, history *db.History) {
	job.Register(q, "history.prune", func(ctx context.Context, _ struct{}) (int64, error) {
		return history.Prune(ctx)
	})
}

func logHandler(log *slog.Logger) func(context.Context, LogPayload) (string, error) {
	return func(ctx context.Context, p LogPayload) (string, error) {
		level := slog.LevelInfo
		if p.Level != "" {
			if err := level.UnmarshalText([]byte(p.Level)); err != nil {
				return "", fmt.Errorf("log: %w", err)
			}
		}
		log.Log(ctx, level, p.Message)
		return "logged", nil
	}
}

func webhookHandler(client *http.Client) func(context.Context, WebhookPayload) (WebhookResult, error) {
	return func(ctx context.Context, p WebhookPayload) (WebhookResult, error) {
		if p.URL == "" {
			return WebhookResult{}, errors.New("webhook: url is required")
		}

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(p.Body))
		if err != nil {
			return WebhookResult{}, fmt.Errorf("webhook: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range p.Headers {
			req.Header.Set(k, v)
		}
		if id, ok := job.IDFromContext(ctx); ok {
			req.Header.Set("X-Job-ID", id)
		}

		resp, err := client.Do(req)
		if err != nil {
			return WebhookResult{}, fmt.Errorf("webhook: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return WebhookResult{}, fmt.Errorf("%w: %d", errWebhookStatus, resp.StatusCode)
		}
		return WebhookResult{StatusCode: resp.StatusCode}, nil
	}
}
