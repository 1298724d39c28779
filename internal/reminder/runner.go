package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/nagd/internal/lock"
	"github.com/sandeepkv93/nagd/internal/scheduler"
)

// Runner executes the loop whenever the engine delivers its job. Each run
// holds the lease, so two runs never overlap in this process or across
// processes sharing the lock file.
type Runner struct {
	Engine     *scheduler.Engine
	Loop       *Loop
	Lease      *lock.Lease
	RetryDelay time.Duration
	Logger     *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Run consumes engine deliveries until ctx is done or the engine stops.
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-r.Engine.C():
			if !ok {
				return nil
			}
			if job.Name != JobName {
				r.logger().Warn("ignoring unknown job", "job", job.Name)
				r.Engine.Done(job.Name)
				continue
			}
			r.handle(ctx, job)
		}
	}
}

func (r *Runner) handle(ctx context.Context, delivered scheduler.Job) {
	job := r.Engine.Job(delivered.Name)
	log := r.logger().With("job", job.Name(), "run_id", uuid.NewString())
	start := time.Now()
	res, err := r.Execute(ctx)
	job.Done()

	switch {
	case errors.Is(err, lock.ErrLocked):
		log.Info("reminder run skipped", "reason", err)
		r.retry(ctx, log)
	case err != nil:
		log.Error("reminder run failed", "error", err, "duration", time.Since(start))
		r.retry(ctx, log)
	case res.StoodDown:
		log.Info("reminder loop stood down", "cleared", res.Pruned)
	default:
		log.Info("reminder run complete",
			"active", res.Active,
			"seeded", res.Seeded,
			"fired", res.Fired,
			"pruned", res.Pruned,
			"duration", time.Since(start),
		)
	}
}

// Execute runs the loop once under the lease.
func (r *Runner) Execute(ctx context.Context) (Result, error) {
	if r.Lease != nil {
		if err := r.Lease.TryAcquire(); err != nil {
			return Result{}, err
		}
		defer func() {
			if err := r.Lease.Release(); err != nil {
				r.logger().Warn("release lease failed", "error", err)
			}
		}()
	}
	return r.Loop.Run(ctx)
}

func (r *Runner) retry(ctx context.Context, log *slog.Logger) {
	if r.RetryDelay <= 0 {
		return
	}
	if err := r.Engine.Job(JobName).EnsureArmed(ctx, r.RetryDelay, scheduler.KeepExisting); err != nil {
		log.Warn("arm retry failed", "error", err)
		return
	}
	log.Debug("retry armed", "delay", r.RetryDelay)
}

// Describe reports the pending invocation for status output.
func (r *Runner) Describe() string {
	if r.Engine.Running(JobName) {
		return "running"
	}
	status := "idle"
	if at, ok := r.Engine.Pending(JobName); ok {
		status = fmt.Sprintf("next run %s", at.Local().Format(time.DateTime))
	}
	if n := r.Engine.Deferred(); n > 0 {
		status += fmt.Sprintf(" (%d deferred)", n)
	}
	return status
}
