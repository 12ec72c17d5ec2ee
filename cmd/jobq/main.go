package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/jobq"
	"github.com/dmitrymomot/jobq/middlewares"
	"github.com/dmitrymomot/jobq/pkg/db"
	"github.com/dmitrymomot/jobq/pkg/job"
	"github.com/dmitrymomot/jobq/pkg/logger"
	"github.com/dmitrymomot/jobq/pkg/metrics"
	"github.com/dmitrymomot/jobq/pkg/redis"
)

func main() {
	configPath := flag.String("config", os.Getenv("JOBQ_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath, os.Getenv)
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	cfg.Sentry.MinLevel = slog.LevelWarn
	log, flush := logger.NewWithSentry(cfg.Sentry,
		logger.WithLevel(level),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithExtractors(append(job.LogExtractors(), middlewares.RequestIDExtractor())...),
	)
	defer flush(2 * time.Second)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		flush(2 * time.Second)
		os.Exit(1)
	}
}

func run(cfg Config, log *slog.Logger) error {
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	// Types without a handler share one label value; POST /jobs accepts any type.
	var q *job.Queue
	m, err := metrics.New(reg, metrics.WithTypeFilter(func(jobType string) bool {
		return q != nil && q.HasHandler(jobType)
	}))
	if err != nil {
		return err
	}

	qopts := []job.Option{
		job.WithLogger(log),
		job.WithObserver(m.Observe),
		job.WithMaxPollInterval(cfg.Queue.MaxPollInterval),
		job.WithBackoff(job.Exponential{Base: cfg.Queue.BackoffBase, Max: cfg.Queue.BackoffMax}),
	}
	for _, s := range cfg.Schedules {
		var sopts []job.SubmitOption
		if s.Priority != nil {
			sopts = append(sopts, job.Priority(*s.Priority))
		}
		qopts = append(qopts, job.WithSchedule(s.Cron, s.Type, s.Payload, sopts...))
	}

	runOpts := []jobq.RunOption{
		jobq.WithAddress(cfg.Address),
		jobq.WithLogger(log),
		jobq.WithMetrics(metrics.Handler(reg)),
		jobq.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		jobq.WithRequestTimeout(cfg.Server.RequestTimeout),
		jobq.WithBodyLimit(cfg.Server.BodyLimit),
	}

	var pgHistory *db.History
	switch {
	case cfg.Redis.URL != "":
		client, err := redis.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		qopts = append(qopts, job.WithHistory(redis.NewHistory(client, redis.WithHistoryTTL(cfg.Queue.HistoryTTL))))
		runOpts = append(runOpts,
			jobq.WithReadinessCheck("redis", redis.Healthcheck(client)),
			jobq.WithShutdownHook(redis.Shutdown(client)),
		)
		log.Info("job history stored in redis")

	case cfg.Database.URL != "":
		pool, err := db.Open(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		if err := db.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return err
		}
		pgHistory = db.NewHistory(pool, db.WithHistoryTTL(cfg.Queue.HistoryTTL))
		qopts = append(qopts, job.WithHistory(pgHistory))
		if cfg.Database.PruneSchedule != "" {
			qopts = append(qopts, job.WithSchedule(cfg.Database.PruneSchedule, "history.prune", nil, job.Priority(9)))
		}
		runOpts = append(runOpts,
			jobq.WithReadinessCheck("postgres", db.Healthcheck(pool)),
			jobq.WithShutdownHook(db.Shutdown(pool)),
		)
		log.Info("job history stored in postgres")

	default:
		qopts = append(qopts, job.WithHistory(job.NewMemoryHistory(
			job.WithHistoryTTL(cfg.Queue.HistoryTTL),
			job.WithHistoryMaxEntries(cfg.Queue.HistoryMaxEntries),
		)))
	}

	q, err = job.NewQueue(qopts...)
	if err != nil {
		return err
	}
	registerHandlers(q, log, &http.Client{})
	if pgHistory != nil {
		registerPrune(q, pgHistory)
	}

	reg.MustRegister(metrics.NewStatusCollector(q))

	return jobq.Run(append(runOpts, jobq.WithQueue(q))...)
}
