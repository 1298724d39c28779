package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sandeepkv93/nagd/internal/model"
)

// Posted is a reminder currently visible in the tray.
type Posted struct {
	Reminder model.Reminder
	PostedAt time.Time
	Repeats  int
}

// Tray keeps the visible reminders in memory, one per task. The TUI reads
// it to render its reminder panel.
type Tray struct {
	mu      sync.Mutex
	posted  map[int64]Posted
	now     func() time.Time
	changed chan struct{}
}

func NewTray() *Tray {
	return &Tray{
		posted:  make(map[int64]Posted),
		now:     time.Now,
		changed: make(chan struct{}, 1),
	}
}

func (t *Tray) ShowReminder(_ context.Context, r model.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	prev, ok := t.posted[r.TaskID]
	p := Posted{Reminder: r, PostedAt: t.now()}
	if ok {
		p.Repeats = prev.Repeats + 1
	}
	t.posted[r.TaskID] = p
	t.mu.Unlock()
	t.signal()
	return nil
}

func (t *Tray) CancelReminder(_ context.Context, taskID int64) error {
	t.mu.Lock()
	_, ok := t.posted[taskID]
	delete(t.posted, taskID)
	t.mu.Unlock()
	if ok {
		t.signal()
	}
	return nil
}

func (t *Tray) CancelAll(context.Context) error {
	t.mu.Lock()
	n := len(t.posted)
	clear(t.posted)
	t.mu.Unlock()
	if n > 0 {
		t.signal()
	}
	return nil
}

// Snapshot returns the visible reminders, newest first.
func (t *Tray) Snapshot() []Posted {
	t.mu.Lock()
	out := make([]Posted, 0, len(t.posted))
	for _, p := range t.posted {
		out = append(out, p)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostedAt.Equal(out[j].PostedAt) {
			return out[i].Reminder.TaskID > out[j].Reminder.TaskID
		}
		return out[i].PostedAt.After(out[j].PostedAt)
	})
	return out
}

// Changed is signalled after the visible set changes. Signals coalesce.
func (t *Tray) Changed() <-chan struct{} { return t.changed }

func (t *Tray) signal() {
	select {
	case t.changed <- struct{}{}:
	default:
	}
}
