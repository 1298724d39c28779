package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/nagd/internal/config"
	"github.com/sandeepkv93/nagd/internal/lock"
	"github.com/sandeepkv93/nagd/internal/logger"
	"github.com/sandeepkv93/nagd/internal/notify"
	"github.com/sandeepkv93/nagd/internal/quote"
	"github.com/sandeepkv93/nagd/internal/reminder"
	"github.com/sandeepkv93/nagd/internal/scheduler"
	"github.com/sandeepkv93/nagd/internal/storage"
)

// app holds every wired component for one process.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	repo    *storage.SQLiteRepository
	engine  *scheduler.Engine
	tray    *notify.Tray
	runner  *reminder.Runner
	service *reminder.Service
}

type appOptions struct {
	logOutput io.Writer
	withTray  bool
}

func newApp(cfg *config.Config, opts appOptions) (*app, error) {
	log := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: opts.logOutput})

	repo, err := storage.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	engine := scheduler.NewEngine(cfg.Scheduler.Buffer,
		scheduler.WithPersister(repo.Jobs()),
		scheduler.WithLogger(log.With("component", "scheduler")),
	)

	var sink notify.Sink = notify.NewDesktop(cfg.Notifications.Desktop)
	var tray *notify.Tray
	if opts.withTray {
		tray = notify.NewTray()
		sink = notify.Multi{tray, sink}
	}
	sink = notify.Logging{Next: sink, Logger: log.With("component", "notify")}

	provider := quote.NewProvider(repo, quote.NewFetcher(cfg.Quotes.Endpoint, cfg.Quotes.Timeout), cfg.Quotes.Timeout, log.With("component", "quote"))
	job := engine.Job(reminder.JobName)

	loop := &reminder.Loop{
		Tasks:    repo,
		DueTimes: repo.DueTimes(),
		Quotes:   provider,
		Sink:     sink,
		Job:      job,
		Policy:   reminder.NewDelayPolicy(nil),
		Interval: cfg.Scheduler.LoopInterval,
		Logger:   log.With("component", "reminder"),
	}

	return &app{
		cfg:    cfg,
		logger: log,
		repo:   repo,
		engine: engine,
		tray:   tray,
		runner: &reminder.Runner{
			Engine:     engine,
			Loop:       loop,
			Lease:      lock.NewLease(lock.NewMutexMap(), reminder.JobName, cfg.LockFilePath()),
			RetryDelay: cfg.Scheduler.RetryDelay,
			Logger:     log.With("component", "runner"),
		},
		service: &reminder.Service{
			Repo:         repo,
			DueTimes:     repo.DueTimes(),
			Quotes:       provider,
			Sink:         sink,
			Job:          job,
			InitialDelay: cfg.Scheduler.InitialDelay,
			Logger:       log.With("component", "service"),
		},
	}, nil
}

func (a *app) Close() error {
	a.engine.Stop()
	return a.repo.Close()
}

// restoreJobs re-arms invocations persisted by this or another nagd
// process. Restore keeps existing jobs, so repeating it is harmless.
func (a *app) restoreJobs(ctx context.Context) error {
	jobs, err := a.repo.Jobs().ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("list persisted jobs: %w", err)
	}
	return a.engine.Restore(jobs)
}

// runScheduler starts the engine and serves loop invocations until ctx is
// done. Jobs armed by other processes, such as `nagd add`, are picked up
// on every loop interval.
func (a *app) runScheduler(ctx context.Context) error {
	if err := a.restoreJobs(ctx); err != nil {
		a.logger.Warn("restore jobs failed", "error", err)
	}
	a.engine.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.runner.Run(gctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(a.cfg.Scheduler.LoopInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := a.restoreJobs(gctx); err != nil {
					a.logger.Warn("sync persisted jobs failed", "error", err)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
