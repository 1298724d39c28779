package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sandeepkv93/nagd/internal/model"
	"github.com/sandeepkv93/nagd/internal/scheduler"
)

var errStorage = errors.New("disk unavailable")

type taskList struct {
	mu    sync.Mutex
	tasks []model.Task
	err   error
}

func (l *taskList) ListActiveTasks(context.Context) ([]model.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	out := make([]model.Task, 0, len(l.tasks))
	for _, t := range l.tasks {
		if t.Active() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (l *taskList) set(tasks ...model.Task) {
	l.mu.Lock()
	l.tasks = tasks
	l.mu.Unlock()
}

type memDueTimes struct {
	mu      sync.Mutex
	entries map[int64]time.Time
	setErr  error
	sets    int
}

func newMemDueTimes() *memDueTimes {
	return &memDueTimes{entries: make(map[int64]time.Time)}
}

func (m *memDueTimes) Get(_ context.Context, id int64) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.entries[id]
	return at, ok, nil
}

func (m *memDueTimes) Set(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.entries[id] = at
	return nil
}

func (m *memDueTimes) Remove(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *memDueTimes) RemoveWhere(_ context.Context, pred func(int64) bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id := range m.entries {
		if pred(id) {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

func (m *memDueTimes) Keys(context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0, len(m.entries))
	for id := range m.entries {
		out = append(out, id)
	}
	return out, nil
}

func (m *memDueTimes) Clear(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	clear(m.entries)
	return n, nil
}

func (m *memDueTimes) snapshot() map[int64]time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]time.Time, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}

type recordingSink struct {
	mu        sync.Mutex
	shown     []model.Reminder
	cancelled []int64
	cancelAll int
	showErr   error
}

func (s *recordingSink) ShowReminder(_ context.Context, r model.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, r)
	return s.showErr
}

func (s *recordingSink) CancelReminder(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, id)
	return nil
}

func (s *recordingSink) CancelAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAll++
	return nil
}

type armCall struct {
	delay  time.Duration
	policy scheduler.Policy
}

type recordingJob struct {
	mu    sync.Mutex
	calls []armCall
	err   error
}

func (j *recordingJob) EnsureArmed(_ context.Context, delay time.Duration, policy scheduler.Policy) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, armCall{delay: delay, policy: policy})
	return j.err
}

type stubQuotes struct {
	enabled   bool
	quote     *model.Quote
	refreshes []bool
}

func (q *stubQuotes) QuotesEnabled(context.Context) (bool, error) { return q.enabled, nil }

func (q *stubQuotes) RefreshIfStale(_ context.Context, force bool) bool {
	q.refreshes = append(q.refreshes, force)
	return false
}

func (q *stubQuotes) CachedQuote(context.Context) (*model.Quote, error) { return q.quote, nil }
