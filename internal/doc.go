// Package internal implements the HTTP runtime behind jobq.Run.
//
// Import "github.com/dmitrymomot/jobq" instead, which re-exports the public API.
//
// The runtime serves a chi router with:
//
//	POST   /jobs          submit a job, 202 with {"id": "..."}
//	GET    /jobs/{id}     job snapshot, 404 once it leaves the queue and history
//	DELETE /jobs          clear pending jobs, {"removed": n}
//	GET    /status        queue counters
//	GET    /tasks         registered job types
//	GET    /health/live   liveness probe
//	GET    /health/ready  readiness probe, includes the queue check
//	GET    /metrics       when a metrics handler is configured
//
// Startup hooks run before the listener accepts requests. On SIGINT,
// SIGTERM or a cancelled base context, the server drains first, then the
// queue stops, then the remaining shutdown hooks run, all under one timeout.
package internal
