// Package db connects to PostgreSQL and stores job history there.
//
// [Open] parses a postgres:// URL, applies pool limits, and pings with
// retries before returning the pool. [Migrate] applies the embedded goose
// migrations that create the jobq_history table:
//
//	pool, err := db.Open(ctx, os.Getenv("DATABASE_URL"))
//	if err != nil {
//	    return err
//	}
//	if err := db.Migrate(ctx, pool, log); err != nil {
//	    return err
//	}
//
// [History] implements job.History. Each terminal job is upserted as a
// JSONB row with an expiry; [History.Prune] deletes expired rows and is
// meant to run as a scheduled job:
//
//	history := db.NewHistory(pool, db.WithHistoryTTL(72*time.Hour))
//	q, err := job.NewQueue(
//	    job.WithHistory(history),
//	    job.WithSchedule("0 * * * *", "history.prune", nil),
//	)
//
// # Error Handling
//
//   - [ErrEmptyConnectionURL] - Empty connection URL provided
//   - [ErrFailedToParseDBConfig] - Invalid connection URL
//   - [ErrFailedToOpenDBConnection] - Connection failed after all retry attempts
//   - [ErrHealthcheckFailed] - Database ping failed
//   - [ErrSetDialect], [ErrApplyMigrations] - Migration failure
//   - [ErrHistoryWrite], [ErrHistoryRead], [ErrHistoryPrune] - Query failure
//
// A missing or expired history row is reported as job.ErrJobNotFound.
package db
