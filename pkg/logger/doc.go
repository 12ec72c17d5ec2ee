// Package logger builds slog loggers with context extraction and optional
// Sentry forwarding.
//
// # Basic Usage
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithFormat(logger.FormatText),
//	)
//
// # Context Extractors
//
// A ContextExtractor pulls one attribute out of a context. Extractors run on
// every log call made with a context, so values that change per request or
// per job attempt are always current:
//
//	log := logger.New(logger.WithExtractors(job.LogExtractors()...))
//	log.InfoContext(ctx, "sending webhook") // adds job_id, job_type, attempt
//
// Returning false skips the attribute for that call. Decorate applies the
// same behaviour to any slog.Handler.
//
// # Sentry Integration
//
//	log, flush := logger.NewWithSentry(logger.SentryConfig{
//	    DSN:         os.Getenv("SENTRY_DSN"),
//	    Environment: "production",
//	    MinLevel:    slog.LevelWarn,
//	})
//	defer flush(2 * time.Second)
//
// Errors create Sentry issues; warnings are stored as logs. With an empty
// DSN the logger writes locally only, so the same code path works in
// development.
package logger
