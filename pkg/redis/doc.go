// Package redis connects to Redis and stores job history there.
//
// [Open] parses a redis:// or rediss:// URL, applies pool and timeout
// settings, and pings with retries before returning the client:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//	    redis.WithRetry(5, time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//
// [History] implements job.History on top of the client. Terminal jobs are
// stored as JSON under "{prefix}:{job id}" with a TTL, so a job's outcome
// can be looked up after it leaves the queue, even from another process:
//
//	q, err := job.NewQueue(
//	    job.WithHistory(redis.NewHistory(client, redis.WithHistoryTTL(time.Hour))),
//	)
//
// [Healthcheck] and [Shutdown] plug into the readiness endpoint and the
// shutdown hooks of jobq.Run.
//
// # Error Handling
//
//   - [ErrEmptyConnectionURL] - Empty connection URL provided
//   - [ErrFailedToParseURL] - Invalid connection URL format or scheme
//   - [ErrConnectionFailed] - Connection failed after all retry attempts
//   - [ErrHealthcheckFailed] - Redis ping failed
//   - [ErrMarshal], [ErrUnmarshal] - Job snapshot could not be encoded or decoded
//   - [ErrHistoryWrite], [ErrHistoryRead] - Redis rejected a history command
//
// A missing history entry is reported as job.ErrJobNotFound.
package redis
