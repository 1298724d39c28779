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

// Service applies user actions and keeps the reminder loop in step with
// them.
type Service struct {
	Repo         storage.Repository
	DueTimes     storage.DueTimeStore
	Quotes       QuoteSource
	Sink         notify.Sink
	Job          JobHost
	InitialDelay time.Duration
	Logger       *slog.Logger
}

// Settings is the user-facing settings snapshot.
type Settings struct {
	Theme         model.ThemeMode
	QuotesEnabled bool
	Quote         *model.Quote
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// EnsureScheduled arms the loop unless an invocation is already pending or
// running.
func (s *Service) EnsureScheduled(ctx context.Context) error {
	delay := s.InitialDelay
	if delay <= 0 {
		delay = DefaultInitialDelay
	}
	return s.Job.EnsureArmed(ctx, delay, scheduler.KeepExisting)
}

// Foreground is called whenever the user opens the app.
func (s *Service) Foreground(ctx context.Context) error {
	if err := s.EnsureScheduled(ctx); err != nil {
		return fmt.Errorf("ensure scheduled: %w", err)
	}
	if s.Quotes != nil {
		s.Quotes.RefreshIfStale(ctx, false)
	}
	return nil
}

// AddTask stores a new task with intensity clamped to 0..100.
func (s *Service) AddTask(ctx context.Context, text string, intensity int) (model.Task, error) {
	task, err := s.Repo.CreateTask(ctx, text, model.ClampIntensity(intensity))
	if err != nil {
		return model.Task{}, err
	}
	if err := s.EnsureScheduled(ctx); err != nil {
		return task, fmt.Errorf("ensure scheduled: %w", err)
	}
	return task, nil
}

func (s *Service) MarkDone(ctx context.Context, id int64) error {
	if err := s.Repo.MarkDone(ctx, id); err != nil {
		return err
	}
	return s.forget(ctx, id)
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if err := s.Repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	return s.forget(ctx, id)
}

// MarkTodo restores a done task. Its due entry is cleared so the next run
// seeds it with a fresh first delay.
func (s *Service) MarkTodo(ctx context.Context, id int64) error {
	if err := s.Repo.MarkTodo(ctx, id); err != nil {
		return err
	}
	if err := s.DueTimes.Remove(ctx, id); err != nil {
		return fmt.Errorf("clear due time: %w", err)
	}
	return s.EnsureScheduled(ctx)
}

func (s *Service) forget(ctx context.Context, id int64) error {
	if err := s.DueTimes.Remove(ctx, id); err != nil {
		return fmt.Errorf("clear due time: %w", err)
	}
	if err := s.Sink.CancelReminder(ctx, id); err != nil {
		s.logger().Debug("cancel reminder failed", "task_id", id, "error", err)
	}
	return nil
}

func (s *Service) Tasks(ctx context.Context, done bool) ([]model.Task, error) {
	if done {
		return s.Repo.ListTasks(ctx, storage.DoneFilter())
	}
	return s.Repo.ListTasks(ctx, storage.TodoFilter())
}

func (s *Service) Settings(ctx context.Context) (Settings, error) {
	theme, err := s.Repo.ThemeMode(ctx)
	if err != nil {
		return Settings{}, err
	}
	enabled, err := s.Repo.QuotesEnabled(ctx)
	if err != nil {
		return Settings{}, err
	}
	out := Settings{Theme: theme, QuotesEnabled: enabled}
	if enabled {
		cached, err := s.Repo.CachedQuote(ctx)
		if err != nil {
			return Settings{}, err
		}
		out.Quote = cached.Quote()
	}
	return out, nil
}

func (s *Service) SetThemeMode(ctx context.Context, mode model.ThemeMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid theme mode %q", mode)
	}
	return s.Repo.SetThemeMode(ctx, mode)
}

// SetQuotesEnabled stores the toggle and, when turning quotes on, fetches a
// fresh one right away.
func (s *Service) SetQuotesEnabled(ctx context.Context, enabled bool) error {
	if err := s.Repo.SetQuotesEnabled(ctx, enabled); err != nil {
		return err
	}
	if enabled && s.Quotes != nil {
		s.Quotes.RefreshIfStale(ctx, true)
	}
	return nil
}

// RefreshQuote forces a fetch and reports whether a new quote was stored.
func (s *Service) RefreshQuote(ctx context.Context) bool {
	if s.Quotes == nil {
		return false
	}
	return s.Quotes.RefreshIfStale(ctx, true)
}
