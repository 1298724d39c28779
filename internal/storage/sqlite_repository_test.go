package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/nagd/internal/model"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nagd-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	repo.now = func() time.Time { return time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC) }
	return repo
}

func TestTaskLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	task, err := repo.CreateTask(ctx, "  Write report  ", 130)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID <= 0 || task.Text != "Write report" || task.Intensity != 100 {
		t.Fatalf("unexpected created task: %#v", task)
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("created task should validate: %v", err)
	}

	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Text != task.Text || got.Done || !got.CreatedAt.Equal(task.CreatedAt) {
		t.Fatalf("unexpected task get result: %#v", got)
	}

	if err := repo.MarkDone(ctx, task.ID); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	done, err := repo.ListTasks(ctx, DoneFilter())
	if err != nil {
		t.Fatalf("list done: %v", err)
	}
	if len(done) != 1 || done[0].ID != task.ID || !done[0].Done {
		t.Fatalf("unexpected done list: %#v", done)
	}
	active, err := repo.ListActiveTasks(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active tasks, got %#v", active)
	}

	if err := repo.MarkTodo(ctx, task.ID); err != nil {
		t.Fatalf("mark todo: %v", err)
	}
	active, err = repo.ListActiveTasks(ctx)
	if err != nil || len(active) != 1 {
		t.Fatalf("expected restored task to be active: %#v %v", active, err)
	}

	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	_, err = repo.GetTask(ctx, task.ID)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestCreateTaskRejectsBlankText(t *testing.T) {
	repo := setupRepo(t)
	if _, err := repo.CreateTask(context.Background(), "   ", 10); !errors.Is(err, model.ErrBlankText) {
		t.Fatalf("expected ErrBlankText, got %v", err)
	}
}

func TestListTasksOrderAndPagination(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	for _, text := range []string{"one", "two", "three"} {
		if _, err := repo.CreateTask(ctx, text, 50); err != nil {
			t.Fatalf("create %s: %v", text, err)
		}
	}

	todo, err := repo.ListTasks(ctx, TodoFilter())
	if err != nil {
		t.Fatalf("list todo: %v", err)
	}
	if len(todo) != 3 || todo[0].Text != "three" || todo[2].Text != "one" {
		t.Fatalf("expected newest first, got %#v", todo)
	}

	page, err := repo.ListTasks(ctx, TaskListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].Text != "two" {
		t.Fatalf("unexpected page: %#v", page)
	}

	tail, err := repo.ListTasks(ctx, TaskListFilter{Offset: 2})
	if err != nil {
		t.Fatalf("list tail: %v", err)
	}
	if len(tail) != 1 || tail[0].Text != "one" {
		t.Fatalf("unexpected tail: %#v", tail)
	}
}

func TestMissingTaskMutationsReturnNotFound(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	if err := repo.MarkDone(ctx, 404); err != ErrNotFound {
		t.Fatalf("mark done: expected ErrNotFound, got %v", err)
	}
	if err := repo.MarkTodo(ctx, 404); err != ErrNotFound {
		t.Fatalf("mark todo: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteTask(ctx, 404); err != ErrNotFound {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestSettingsDefaultsAndUpdates(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	mode, err := repo.ThemeMode(ctx)
	if err != nil || mode != model.ThemeSystem {
		t.Fatalf("expected system theme default, got %q %v", mode, err)
	}
	enabled, err := repo.QuotesEnabled(ctx)
	if err != nil || enabled {
		t.Fatalf("expected quotes disabled by default, got %v %v", enabled, err)
	}

	if err := repo.SetThemeMode(ctx, model.ThemeDark); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if err := repo.SetQuotesEnabled(ctx, true); err != nil {
		t.Fatalf("set quotes: %v", err)
	}
	mode, _ = repo.ThemeMode(ctx)
	enabled, _ = repo.QuotesEnabled(ctx)
	if mode != model.ThemeDark || !enabled {
		t.Fatalf("unexpected settings after update: %q %v", mode, enabled)
	}

	if err := repo.SetThemeMode(ctx, model.ThemeMode("neon")); err != nil {
		t.Fatalf("set unknown theme: %v", err)
	}
	if mode, _ = repo.ThemeMode(ctx); mode != model.ThemeSystem {
		t.Fatalf("unknown theme should store as system, got %q", mode)
	}
}

func TestCachedQuoteRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	empty, err := repo.CachedQuote(ctx)
	if err != nil {
		t.Fatalf("cached quote: %v", err)
	}
	if empty.Quote() != nil || empty.EpochDay != 0 {
		t.Fatalf("expected no cached quote, got %#v", empty)
	}

	in := CachedQuote{Text: "Be strong and courageous.", Reference: "", EpochDay: 20500}
	if err := repo.SaveQuote(ctx, in); err != nil {
		t.Fatalf("save quote: %v", err)
	}
	got, err := repo.CachedQuote(ctx)
	if err != nil {
		t.Fatalf("cached quote: %v", err)
	}
	if got != in {
		t.Fatalf("unexpected cached quote: %#v", got)
	}
	if q := got.Quote(); q == nil || q.Reference != "Bible" {
		t.Fatalf("expected fallback reference, got %#v", q)
	}
}

func TestJobStoreKeepJobLeavesExistingRow(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	jobs := repo.Jobs()
	runAt := time.Date(2026, 2, 9, 12, 5, 0, 0, time.UTC)

	got, stored, err := jobs.KeepJob(ctx, "loop", runAt)
	if err != nil || !stored || !got.Equal(runAt) {
		t.Fatalf("first keep = %v %v %v", got, stored, err)
	}
	got, stored, err = jobs.KeepJob(ctx, "loop", runAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("second keep: %v", err)
	}
	if stored || !got.Equal(runAt) {
		t.Fatalf("second keep = %v %v, want existing %v", got, stored, runAt)
	}
	all, _ := jobs.ListJobs(ctx)
	if !all["loop"].Equal(runAt) {
		t.Fatalf("row overwritten: %#v", all)
	}
}

func TestJobStoreSaveListDelete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	jobs := repo.Jobs()
	runAt := time.Date(2026, 2, 9, 12, 5, 0, 0, time.UTC)

	if err := jobs.SaveJob(ctx, "loop", runAt); err != nil {
		t.Fatalf("save job: %v", err)
	}
	if err := jobs.SaveJob(ctx, "loop", runAt.Add(time.Minute)); err != nil {
		t.Fatalf("overwrite job: %v", err)
	}
	all, err := jobs.ListJobs(ctx)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(all) != 1 || !all["loop"].Equal(runAt.Add(time.Minute)) {
		t.Fatalf("unexpected jobs: %#v", all)
	}
	if err := jobs.DeleteJob(ctx, "loop"); err != nil {
		t.Fatalf("delete job: %v", err)
	}
	all, _ = jobs.ListJobs(ctx)
	if len(all) != 0 {
		t.Fatalf("expected no jobs, got %#v", all)
	}
}
