package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandeepkv93/nagd/internal/model"
	"github.com/sandeepkv93/nagd/internal/notify"
	"github.com/sandeepkv93/nagd/internal/scheduler"
	"github.com/sandeepkv93/nagd/internal/storage"
)

// JobName identifies the single reminder loop job in the job host.
const JobName = "reminder_loop"

const (
	DefaultLoopInterval = 5 * time.Minute
	DefaultInitialDelay = time.Minute
)

type TaskSource interface {
	ListActiveTasks(ctx context.Context) ([]model.Task, error)
}

type QuoteSource interface {
	QuotesEnabled(ctx context.Context) (bool, error)
	RefreshIfStale(ctx context.Context, force bool) bool
	CachedQuote(ctx context.Context) (*model.Quote, error)
}

// JobHost arms the next invocation of the loop.
type JobHost interface {
	EnsureArmed(ctx context.Context, delay time.Duration, policy scheduler.Policy) error
}

// Result summarizes one loop run.
type Result struct {
	Active    int
	Seeded    int
	Fired     int
	Pruned    int
	StoodDown bool
}

type Loop struct {
	Tasks    TaskSource
	DueTimes storage.DueTimeStore
	Quotes   QuoteSource
	Sink     notify.Sink
	Job      JobHost
	Policy   *DelayPolicy
	Interval time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

func (l *Loop) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

func (l *Loop) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l *Loop) interval() time.Duration {
	if l.Interval <= 0 {
		return DefaultLoopInterval
	}
	return l.Interval
}

// Run executes one pass: prune due entries of inactive tasks, seed new
// tasks, fire overdue ones and re-arm. With no active tasks it clears every
// due entry, withdraws all reminders and does not re-arm. Storage errors
// abort the pass; quote and notification failures never do.
func (l *Loop) Run(ctx context.Context) (Result, error) {
	var res Result
	log := l.logger()
	now := l.now()

	tasks, err := l.Tasks.ListActiveTasks(ctx)
	if err != nil {
		return res, fmt.Errorf("list active tasks: %w", err)
	}
	res.Active = len(tasks)

	if len(tasks) == 0 {
		cleared, err := l.DueTimes.Clear(ctx)
		if err != nil {
			return res, fmt.Errorf("clear due times: %w", err)
		}
		if err := l.Sink.CancelAll(ctx); err != nil {
			log.Warn("cancel reminders failed", "error", err)
		}
		res.Pruned = cleared
		res.StoodDown = true
		return res, nil
	}

	active := model.ActiveIDs(tasks)
	pruned, err := l.DueTimes.RemoveWhere(ctx, func(id int64) bool { return !active[id] })
	if err != nil {
		return res, fmt.Errorf("prune due times: %w", err)
	}
	res.Pruned = pruned

	quote := l.quote(ctx)

	for _, task := range tasks {
		dueAt, ok, err := l.DueTimes.Get(ctx, task.ID)
		if err != nil {
			return res, fmt.Errorf("read due time for task %d: %w", task.ID, err)
		}
		switch {
		case !ok:
			next := now.Add(l.Policy.FirstDelay(task.Intensity))
			if err := l.DueTimes.Set(ctx, task.ID, next); err != nil {
				return res, fmt.Errorf("seed due time for task %d: %w", task.ID, err)
			}
			res.Seeded++
		case !now.Before(dueAt):
			if err := l.Sink.ShowReminder(ctx, model.NewReminder(task, quote)); err != nil {
				log.Debug("show reminder failed", "task_id", task.ID, "error", err)
			}
			next := now.Add(l.Policy.RecurringDelay(task.Intensity))
			if err := l.DueTimes.Set(ctx, task.ID, next); err != nil {
				return res, fmt.Errorf("advance due time for task %d: %w", task.ID, err)
			}
			res.Fired++
		}
	}

	if err := l.Job.EnsureArmed(ctx, l.interval(), scheduler.Replace); err != nil {
		return res, fmt.Errorf("re-arm loop: %w", err)
	}
	return res, nil
}

func (l *Loop) quote(ctx context.Context) *model.Quote {
	if l.Quotes == nil {
		return nil
	}
	enabled, err := l.Quotes.QuotesEnabled(ctx)
	if err != nil {
		l.logger().Warn("read quote setting failed", "error", err)
		return nil
	}
	if !enabled {
		return nil
	}
	l.Quotes.RefreshIfStale(ctx, false)
	q, err := l.Quotes.CachedQuote(ctx)
	if err != nil {
		l.logger().Warn("read cached quote failed", "error", err)
		return nil
	}
	return q
}
