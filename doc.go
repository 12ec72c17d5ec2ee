// Package jobq provides an in-process background job scheduler with an
// optional HTTP surface.
//
// Jobs are submitted with a type, a payload and a priority, and run one at
// a time by the handler registered for their type. Lower priority numbers
// run first; among equal priorities the job scheduled earliest runs first.
// A failed attempt is retried after 2^k seconds until the job runs out of
// attempts.
//
// # Quick Start
//
// Create a queue with job.NewQueue, register handlers, and serve it:
//
//	q, err := job.NewQueue(
//	    job.WithLogger(log),
//	    job.WithHistory(job.NewMemoryHistory()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	job.Register(q, "send_email", func(ctx context.Context, p EmailPayload) (string, error) {
//	    return mailer.Send(ctx, p.To)
//	})
//
//	err = jobq.Run(
//	    jobq.WithQueue(q),
//	    jobq.WithAddress(":8080"),
//	    jobq.WithLogger(log),
//	)
//
// Run starts the queue before accepting requests and stops it after the
// server drains on SIGINT or SIGTERM.
//
// # Embedding Without HTTP
//
// The queue works on its own. Call Start and Stop directly:
//
//	if err := q.Start(ctx); err != nil {
//	    return err
//	}
//	defer q.Stop(context.Background())
//
//	id, err := q.Submit(ctx, "send_email", EmailPayload{To: "a@example.com"},
//	    job.Priority(1),
//	    job.Delay(time.Minute),
//	)
//
// # HTTP API
//
//	POST   /jobs          {"type": "...", "payload": {...}, "priority": 1, "delay": "30s"}
//	GET    /jobs/{id}     job snapshot
//	DELETE /jobs          remove all pending jobs
//	GET    /status        queue counters
//	GET    /tasks         registered job types
//	GET    /health/live   liveness
//	GET    /health/ready  readiness
//	GET    /metrics       Prometheus metrics when WithMetrics is set
//
// # Observability
//
// Queue events can feed Prometheus through pkg/metrics:
//
//	reg := prometheus.NewRegistry()
//	m, _ := metrics.New(reg)
//	q, _ := job.NewQueue(job.WithObserver(m.Observe))
//	reg.MustRegister(metrics.NewStatusCollector(q))
//
//	jobq.Run(jobq.WithQueue(q), jobq.WithMetrics(metrics.Handler(reg)))
//
// Handler logs carry job_id, job_type and attempt when the logger is built
// with logger.WithExtractors(job.LogExtractors()...).
package jobq
