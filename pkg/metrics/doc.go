// Package metrics exports job queue metrics to Prometheus.
//
// [Metrics.Observe] is a job.Observer that counts lifecycle events and
// records handler durations. [NewStatusCollector] samples the queue's
// counters at scrape time:
//
//	reg := prometheus.NewRegistry()
//	m, err := metrics.New(reg)
//	if err != nil {
//	    return err
//	}
//	q, err := job.NewQueue(job.WithObserver(m.Observe))
//	if err != nil {
//	    return err
//	}
//	reg.MustRegister(metrics.NewStatusCollector(q))
//	r.Handle("/metrics", metrics.Handler(reg))
package metrics
