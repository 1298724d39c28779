package reminder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/nagd/internal/model"
	"github.com/sandeepkv93/nagd/internal/scheduler"
	"github.com/sandeepkv93/nagd/internal/storage"
)

type serviceFixture struct {
	repo   *storage.SQLiteRepository
	due    *storage.SQLiteDueTimeStore
	sink   *recordingSink
	job    *recordingJob
	quotes *stubQuotes
	svc    *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "nagd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	f := &serviceFixture{
		repo:   repo,
		due:    repo.DueTimes(),
		sink:   &recordingSink{},
		job:    &recordingJob{},
		quotes: &stubQuotes{},
	}
	f.svc = &Service{
		Repo:     repo,
		DueTimes: f.due,
		Quotes:   f.quotes,
		Sink:     f.sink,
		Job:      f.job,
	}
	return f
}

var keepInitial = armCall{delay: DefaultInitialDelay, policy: scheduler.KeepExisting}

func TestAddTaskEnsuresScheduled(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	tk, err := f.svc.AddTask(ctx, "  Renew passport ", model.DefaultIntensity)
	require.NoError(t, err)
	assert.Equal(t, "Renew passport", tk.Text)
	assert.Equal(t, []armCall{keepInitial}, f.job.calls)

	_, err = f.svc.AddTask(ctx, "   ", 10)
	require.ErrorIs(t, err, model.ErrBlankText)
	assert.Len(t, f.job.calls, 1)
}

func TestAddTaskClampsIntensity(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	loud, err := f.svc.AddTask(ctx, "Pay the fine", 150)
	require.NoError(t, err)
	assert.Equal(t, model.MaxIntensity, loud.Intensity)

	quiet, err := f.svc.AddTask(ctx, "Sort photos", -20)
	require.NoError(t, err)
	assert.Equal(t, model.MinIntensity, quiet.Intensity)

	stored, err := f.svc.Tasks(ctx, false)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, model.MinIntensity, stored[0].Intensity)
	assert.Equal(t, model.MaxIntensity, stored[1].Intensity)
}

func TestMarkDoneClearsDueAndCancels(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	tk, err := f.svc.AddTask(ctx, "Call the bank", 60)
	require.NoError(t, err)
	require.NoError(t, f.due.Set(ctx, tk.ID, time.Now().Add(time.Hour)))

	require.NoError(t, f.svc.MarkDone(ctx, tk.ID))
	_, ok, err := f.due.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []int64{tk.ID}, f.sink.cancelled)

	done, err := f.svc.Tasks(ctx, true)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.True(t, done[0].Done)
}

func TestMarkTodoReseedsOnNextRun(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	tk, err := f.svc.AddTask(ctx, "Water plants", 20)
	require.NoError(t, err)
	require.NoError(t, f.svc.MarkDone(ctx, tk.ID))
	require.NoError(t, f.due.Set(ctx, tk.ID, time.Now()))
	f.job.calls = nil

	require.NoError(t, f.svc.MarkTodo(ctx, tk.ID))
	_, ok, err := f.due.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []armCall{keepInitial}, f.job.calls)

	todo, err := f.svc.Tasks(ctx, false)
	require.NoError(t, err)
	require.Len(t, todo, 1)
}

func TestDeleteTask(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	tk, err := f.svc.AddTask(ctx, "Old idea", 0)
	require.NoError(t, err)
	require.NoError(t, f.due.Set(ctx, tk.ID, time.Now()))

	require.NoError(t, f.svc.DeleteTask(ctx, tk.ID))
	keys, err := f.due.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.ErrorIs(t, f.svc.DeleteTask(ctx, tk.ID), storage.ErrNotFound)
}

func TestForegroundArmsAndRefreshes(t *testing.T) {
	f := newServiceFixture(t)
	f.svc.InitialDelay = 3 * time.Minute

	require.NoError(t, f.svc.Foreground(context.Background()))
	assert.Equal(t, []armCall{{delay: 3 * time.Minute, policy: scheduler.KeepExisting}}, f.job.calls)
	assert.Equal(t, []bool{false}, f.quotes.refreshes)
}

func TestSettingsRoundTrip(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SetThemeMode(ctx, model.ThemeDark))
	require.Error(t, f.svc.SetThemeMode(ctx, model.ThemeMode("neon")))

	require.NoError(t, f.svc.SetQuotesEnabled(ctx, true))
	assert.Equal(t, []bool{true}, f.quotes.refreshes, "enabling forces a refresh")
	require.NoError(t, f.repo.SaveQuote(ctx, storage.CachedQuote{Text: "Fear not.", Reference: "Isaiah 41:10", EpochDay: 1}))

	s, err := f.svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, s.Theme)
	assert.True(t, s.QuotesEnabled)
	require.NotNil(t, s.Quote)
	assert.Equal(t, "Isaiah 41:10", s.Quote.Reference)

	require.NoError(t, f.svc.SetQuotesEnabled(ctx, false))
	assert.Len(t, f.quotes.refreshes, 1, "disabling does not fetch")
	s, err = f.svc.Settings(ctx)
	require.NoError(t, err)
	assert.Nil(t, s.Quote)

	f.svc.RefreshQuote(ctx)
	assert.Equal(t, []bool{true, true}, f.quotes.refreshes)
}

// The loop and the service share one SQLite database end to end.
func TestLoopAgainstSQLite(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	a, err := f.svc.AddTask(ctx, "A", 100)
	require.NoError(t, err)
	b, err := f.svc.AddTask(ctx, "B", 0)
	require.NoError(t, err)

	now := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	loop := &Loop{
		Tasks:    f.repo,
		DueTimes: f.due,
		Sink:     f.sink,
		Job:      f.job,
		Policy:   NewDelayPolicy(nil),
		Now:      func() time.Time { return now },
	}
	_, err = loop.Run(ctx)
	require.NoError(t, err)
	dueA, ok, err := f.due.Get(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now.Add(5*time.Minute).UnixMilli(), dueA.UnixMilli())

	require.NoError(t, f.svc.MarkDone(ctx, b.ID))
	now = now.Add(6 * time.Minute)
	res, err := loop.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fired)
	require.Len(t, f.sink.shown, 1)
	assert.Equal(t, a.ID, f.sink.shown[0].TaskID)

	require.NoError(t, f.svc.MarkDone(ctx, a.ID))
	res, err = loop.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.StoodDown)
	assert.Equal(t, 1, f.sink.cancelAll)
}
