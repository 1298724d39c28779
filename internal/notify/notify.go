// Package notify delivers task reminders to the user.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sandeepkv93/nagd/internal/model"
)

// Sink shows and withdraws reminders. Showing a reminder for a task that
// already has one on screen replaces it.
type Sink interface {
	ShowReminder(ctx context.Context, r model.Reminder) error
	CancelReminder(ctx context.Context, taskID int64) error
	CancelAll(ctx context.Context) error
}

// Multi fans each call out to every sink and joins their errors.
type Multi []Sink

func (m Multi) ShowReminder(ctx context.Context, r model.Reminder) error {
	var errs []error
	for _, s := range m {
		if err := s.ShowReminder(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) CancelReminder(ctx context.Context, taskID int64) error {
	var errs []error
	for _, s := range m {
		if err := s.CancelReminder(ctx, taskID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) CancelAll(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if err := s.CancelAll(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logging wraps a sink and records every delivery at debug level.
type Logging struct {
	Next   Sink
	Logger *slog.Logger
}

func (l Logging) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l Logging) ShowReminder(ctx context.Context, r model.Reminder) error {
	err := l.Next.ShowReminder(ctx, r)
	l.logger().Debug("reminder shown", "task_id", r.TaskID, "quote", r.Quote != nil, "error", err)
	return err
}

func (l Logging) CancelReminder(ctx context.Context, taskID int64) error {
	err := l.Next.CancelReminder(ctx, taskID)
	l.logger().Debug("reminder cancelled", "task_id", taskID, "error", err)
	return err
}

func (l Logging) CancelAll(ctx context.Context) error {
	err := l.Next.CancelAll(ctx)
	l.logger().Debug("all reminders cancelled", "error", err)
	return err
}
