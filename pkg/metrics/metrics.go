package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/jobq/pkg/job"
)

const (
	defaultNamespace = "jobq"
	// unregisteredType replaces job types rejected by the type filter.
	unregisteredType = "unregistered"
)

// StatusSource reports queue counters. *job.Queue satisfies it.
type StatusSource interface {
	Status() job.QueueStatus
}

// Option configures Metrics.
type Option func(*config)

type config struct {
	namespace  string
	buckets    []float64
	typeFilter func(jobType string) bool
}

// WithNamespace sets the metric name prefix. Default: "jobq".
func WithNamespace(ns string) Option {
	return func(c *config) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// WithBuckets sets the handler duration histogram buckets, in seconds.
// Default: prometheus.DefBuckets.
func WithBuckets(b ...float64) Option {
	return func(c *config) {
		if len(b) > 0 {
			c.buckets = b
		}
	}
}

// WithTypeFilter limits the type label to types for which known returns true.
// Other types are reported as "unregistered", which keeps label cardinality
// bounded when clients can submit arbitrary types.
//
// Example:
//
//	metrics.WithTypeFilter(q.HasHandler)
func WithTypeFilter(known func(jobType string) bool) Option {
	return func(c *config) {
		if known != nil {
			c.typeFilter = known
		}
	}
}

// Metrics turns job lifecycle events into Prometheus series.
//
//	jobq_job_events_total{event, type}
//	jobq_job_duration_seconds{type, outcome}
type Metrics struct {
	events     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	typeFilter func(jobType string) bool
}

// New creates and registers the event metrics on reg.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	m, err := metrics.New(reg)
//	if err != nil {
//	    return err
//	}
//	q, err := job.NewQueue(job.WithObserver(m.Observe))
func New(reg prometheus.Registerer, opts ...Option) (*Metrics, error) {
	cfg := &config{namespace: defaultNamespace, buckets: prometheus.DefBuckets}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Metrics{
		typeFilter: cfg.typeFilter,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: "job",
			Name:      "events_total",
			Help:      "Job lifecycle transitions by event and job type.",
		}, []string{"event", "type"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Subsystem: "job",
			Name:      "duration_seconds",
			Help:      "Handler run time per attempt.",
			Buckets:   cfg.buckets,
		}, []string{"type", "outcome"}),
	}

	for _, c := range []prometheus.Collector{m.events, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records ev. It has the job.Observer signature.
func (m *Metrics) Observe(ev job.Event) {
	jobType := m.typeLabel(ev.Job.Type)
	m.events.WithLabelValues(string(ev.Kind), jobType).Inc()

	switch ev.Kind {
	case job.EventCompleted, job.EventRetrying, job.EventFailed:
		outcome := "success"
		if ev.Kind != job.EventCompleted {
			outcome = "error"
		}
		m.duration.WithLabelValues(jobType, outcome).Observe(ev.Duration.Seconds())
	}
}

func (m *Metrics) typeLabel(jobType string) string {
	if m.typeFilter != nil && !m.typeFilter(jobType) {
		return unregisteredType
	}
	return jobType
}

// statusCollector reads queue counters at scrape time.
type statusCollector struct {
	src        StatusSource
	pending    *prometheus.Desc
	processing *prometheus.Desc
	running    *prometheus.Desc
}

// NewStatusCollector exposes the queue's pending and processing counts and
// whether its loop is running, sampled on every scrape.
func NewStatusCollector(src StatusSource, opts ...Option) prometheus.Collector {
	cfg := &config{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(cfg)
	}
	name := func(n string) string {
		return prometheus.BuildFQName(cfg.namespace, "queue", n)
	}
	return &statusCollector{
		src:        src,
		pending:    prometheus.NewDesc(name("pending"), "Jobs waiting in the store.", nil, nil),
		processing: prometheus.NewDesc(name("processing"), "Jobs currently in a handler.", nil, nil),
		running:    prometheus.NewDesc(name("running"), "1 while the dispatch loop is active.", nil, nil),
	}
}

func (c *statusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pending
	ch <- c.processing
	ch <- c.running
}

func (c *statusCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Status()
	running := 0.0
	if s.Running {
		running = 1
	}
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(s.Pending))
	ch <- prometheus.MustNewConstMetric(c.processing, prometheus.GaugeValue, float64(s.Processing))
	ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, running)
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
