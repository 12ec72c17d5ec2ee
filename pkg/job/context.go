package job

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/jobq/pkg/logger"
)

type contextKey struct{}

// jobInfo is what a handler context carries about the running attempt.
type jobInfo struct {
	id      string
	jobType string
	attempt int
}

func withJob(ctx context.Context, j *Job) context.Context {
	return context.WithValue(ctx, contextKey{}, jobInfo{
		id:      j.ID,
		jobType: j.Type,
		attempt: j.Attempts,
	})
}

func infoFromContext(ctx context.Context) (jobInfo, bool) {
	info, ok := ctx.Value(contextKey{}).(jobInfo)
	return info, ok
}

// IDFromContext returns the ID of the job whose handler received ctx.
func IDFromContext(ctx context.Context) (string, bool) {
	info, ok := infoFromContext(ctx)
	return info.id, ok
}

// AttemptFromContext returns the current attempt number (1-indexed).
func AttemptFromContext(ctx context.Context) (int, bool) {
	info, ok := infoFromContext(ctx)
	return info.attempt, ok
}

// LogExtractors returns context extractors that add job_id, job_type
// and attempt to log lines written with a handler's context.
//
// Example:
//
//	log := logger.New(logger.WithExtractors(job.LogExtractors()...))
func LogExtractors() []logger.ContextExtractor {
	return []logger.ContextExtractor{
		func(ctx context.Context) (slog.Attr, bool) {
			info, ok := infoFromContext(ctx)
			if !ok {
				return slog.Attr{}, false
			}
			return slog.String("job_id", info.id), true
		},
		func(ctx context.Context) (slog.Attr, bool) {
			info, ok := infoFromContext(ctx)
			if !ok {
				return slog.Attr{}, false
			}
			return slog.String("job_type", info.jobType), true
		},
		func(ctx context.Context) (slog.Attr, bool) {
			info, ok := infoFromContext(ctx)
			if !ok {
				return slog.Attr{}, false
			}
			return slog.Int("attempt", info.attempt), true
		},
	}
}
