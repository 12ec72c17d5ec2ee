// Package health runs named dependency checks and serves liveness and
// readiness endpoints.
//
// Checks share the func(context.Context) error shape of job.Healthcheck and
// redis.Healthcheck, run concurrently, and are bounded by one timeout:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "queue": job.Healthcheck(q),
//	    "redis": redis.Healthcheck(client),
//	}, health.WithTimeout(2*time.Second)))
//
// Readiness responds 200 or 503 with a JSON body:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "queue": {"status": "healthy", "duration": "3µs"},
//	    "redis": {"status": "unhealthy", "error": "redis: healthcheck failed\n...", "duration": "2s"}
//	  }
//	}
//
// [Run] returns the same [Report] for callers that want to check
// dependencies outside HTTP, for example at startup.
//
// A check still running when the timeout expires is reported with
// [ErrCheckTimeout].
package health
