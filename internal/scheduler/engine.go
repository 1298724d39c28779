package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrInvalidJobName     = errors.New("scheduler: job name is required")
	ErrEngineStopped      = errors.New("scheduler: engine stopped")
)

// redeliverDelay is how long a due job waits before another delivery
// attempt when the consumer channel is full.
const redeliverDelay = time.Second

// Policy decides what Arm does when the named job already exists.
type Policy int

const (
	// KeepExisting leaves a pending or running job alone.
	KeepExisting Policy = iota
	// Replace drops the pending job, if any, and arms a new one.
	Replace
)

func (p Policy) String() string {
	switch p {
	case KeepExisting:
		return "keep"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

type Job struct {
	Name  string
	RunAt time.Time
}

// Persister stores pending jobs so they can be restored after a restart.
// The store may be shared by several processes.
type Persister interface {
	SaveJob(ctx context.Context, name string, runAt time.Time) error
	// KeepJob stores runAt only when name has no saved invocation. It
	// returns the run time on record and whether runAt was stored.
	KeepJob(ctx context.Context, name string, runAt time.Time) (time.Time, bool, error)
	DeleteJob(ctx context.Context, name string) error
}

type queueItem struct {
	job   Job
	index int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].job.RunAt.Before(pq[j].job.RunAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// Engine is an in-process job host. Each job name has at most one pending
// and at most one running invocation; due jobs are delivered on C() and
// stay running until Done is called.
type Engine struct {
	mu       sync.Mutex
	queue    priorityQueue
	pending  map[string]*queueItem
	running  map[string]bool
	out      chan Job
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	deferred uint64

	persist Persister
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Engine)

func WithPersister(p Persister) Option {
	return func(e *Engine) { e.persist = p }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(bufferSize int, opts ...Option) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	e := &Engine{
		queue:   make(priorityQueue, 0),
		pending: make(map[string]*queueItem),
		running: make(map[string]bool),
		out:     make(chan Job, bufferSize),
		wakeup:  make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) C() <-chan Job {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Arm schedules name to run after delay. It reports whether a new
// invocation was armed; KeepExisting returns false when one already exists,
// in this engine or in the persister.
func (e *Engine) Arm(name string, delay time.Duration, policy Policy) (bool, error) {
	if delay < 0 {
		delay = 0
	}
	return e.Schedule(Job{Name: name, RunAt: e.now().Add(delay)}, policy)
}

func (e *Engine) Schedule(job Job, policy Policy) (bool, error) {
	if strings.TrimSpace(job.Name) == "" {
		return false, ErrInvalidJobName
	}
	if job.RunAt.IsZero() {
		return false, ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return false, ErrEngineStopped
	}

	existing, isPending := e.pending[job.Name]
	if policy == KeepExisting && (isPending || e.running[job.Name]) {
		return false, nil
	}
	if isPending {
		heap.Remove(&e.queue, existing.index)
		delete(e.pending, job.Name)
	}

	armed := true
	if policy == KeepExisting {
		job.RunAt, armed = e.keep(job)
	} else {
		e.save(job)
	}

	item := &queueItem{job: job}
	heap.Push(&e.queue, item)
	e.pending[job.Name] = item
	e.signalWakeup()
	return armed, nil
}

// Restore re-arms persisted jobs with KeepExisting. Jobs already overdue
// fire on the next loop iteration.
func (e *Engine) Restore(jobs map[string]time.Time) error {
	var errs []error
	for name, runAt := range jobs {
		if _, err := e.Schedule(Job{Name: name, RunAt: runAt}, KeepExisting); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Done marks the running invocation of name as finished.
func (e *Engine) Done(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, name)
	if _, ok := e.pending[name]; !ok {
		e.remove(name)
	}
}

func (e *Engine) Pending(name string) (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.pending[name]
	if !ok {
		return time.Time{}, false
	}
	return item.job.RunAt, true
}

func (e *Engine) Running(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running[name]
}

// Deferred counts deliveries postponed because the consumer was slow.
func (e *Engine) Deferred() uint64 {
	return atomic.LoadUint64(&e.deferred)
}

func (e *Engine) Job(name string) NamedJob {
	return NamedJob{engine: e, name: name}
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := next.RunAt.Sub(e.now())
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, job := range e.popDue(e.now()) {
				select {
				case e.out <- job:
				default:
					atomic.AddUint64(&e.deferred, 1)
					e.redeliver(job)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Job, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return Job{}, false
	}
	return e.queue[0].job, true
}

func (e *Engine) popDue(now time.Time) []Job {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Job, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].job
		if next.RunAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(*queueItem)
		delete(e.pending, item.job.Name)
		e.running[item.job.Name] = true
		out = append(out, item.job)
	}
	return out
}

func (e *Engine) redeliver(job Job) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, job.Name)
	if _, ok := e.pending[job.Name]; ok || e.stopped {
		return
	}
	job.RunAt = e.now().Add(redeliverDelay)
	item := &queueItem{job: job}
	heap.Push(&e.queue, item)
	e.pending[job.Name] = item
}

func (e *Engine) save(job Job) {
	if e.persist == nil {
		return
	}
	if err := e.persist.SaveJob(context.Background(), job.Name, job.RunAt); err != nil {
		e.logger.Warn("persist job failed", "job", job.Name, "error", err)
	}
}

// keep adopts an invocation another process already saved for job.Name,
// storing job only when there is none.
func (e *Engine) keep(job Job) (time.Time, bool) {
	if e.persist == nil {
		return job.RunAt, true
	}
	runAt, stored, err := e.persist.KeepJob(context.Background(), job.Name, job.RunAt)
	if err != nil {
		e.logger.Warn("persist job failed", "job", job.Name, "error", err)
		return job.RunAt, true
	}
	if !stored {
		e.logger.Debug("adopted persisted job", "job", job.Name, "run_at", runAt)
	}
	return runAt, stored
}

func (e *Engine) remove(name string) {
	if e.persist == nil {
		return
	}
	if err := e.persist.DeleteJob(context.Background(), name); err != nil {
		e.logger.Warn("forget job failed", "job", name, "error", err)
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
