package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/nagd/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateTask(ctx context.Context, text string, intensity int) (model.Task, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)
	ListActiveTasks(ctx context.Context) ([]model.Task, error)
	MarkDone(ctx context.Context, id int64) error
	MarkTodo(ctx context.Context, id int64) error
	DeleteTask(ctx context.Context, id int64) error

	ThemeMode(ctx context.Context) (model.ThemeMode, error)
	SetThemeMode(ctx context.Context, mode model.ThemeMode) error
	QuotesEnabled(ctx context.Context) (bool, error)
	SetQuotesEnabled(ctx context.Context, enabled bool) error
	CachedQuote(ctx context.Context) (CachedQuote, error)
	SaveQuote(ctx context.Context, quote CachedQuote) error
}

// DueTimeStore maps task ids to the next instant a reminder is considered.
type DueTimeStore interface {
	Get(ctx context.Context, taskID int64) (time.Time, bool, error)
	Set(ctx context.Context, taskID int64, dueAt time.Time) error
	Remove(ctx context.Context, taskID int64) error
	RemoveWhere(ctx context.Context, pred func(taskID int64) bool) (int, error)
	Keys(ctx context.Context) ([]int64, error)
	Clear(ctx context.Context) (int, error)
}
