package session

import (
	"context"
	"sync"
	"time"
)

// job is one unit of work submitted to a session's executor: a mutation, a
// fired delayed-action timer, or a reconciliation sweep.
type job struct {
	fn   func(ctx context.Context)
	done chan struct{}
}

// Executor serializes every mutating operation for one session onto a
// single goroutine (§5: "a practical realization is a per-session task
// queue"), the same actor shape this codebase's Hub uses per connection.
// Reads from other sessions proceed independently; nothing here blocks
// them.
type Executor struct {
	inbox  chan job
	timers map[string]*time.Timer
	mu     sync.Mutex
	closed chan struct{}
}

func newExecutor() *Executor {
	e := &Executor{
		inbox:  make(chan job, 256),
		timers: map[string]*time.Timer{},
		closed: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Executor) run() {
	for {
		select {
		case j := <-e.inbox:
			j.fn(context.Background())
			close(j.done)
		case <-e.closed:
			return
		}
	}
}

// Submit runs fn on the session's owning goroutine and blocks the caller
// until it completes (or ctx is done first). fn itself must not block on
// unrelated I/O longer than necessary, since it holds up every other
// queued mutation for this session.
func (e *Executor) Submit(ctx context.Context, fn func(ctx context.Context)) {
	j := job{fn: fn, done: make(chan struct{})}
	select {
	case e.inbox <- j:
	case <-e.closed:
		return
	case <-ctx.Done():
		return
	}
	select {
	case <-j.done:
	case <-ctx.Done():
	}
}

// ScheduleDelayed queues fn to run on the session's executor after delay,
// as a one-shot timer (§4.7, §5). The timer is tracked under key so a
// subsequent Close can cancel every still-pending delayed action for this
// session before it fires.
func (e *Executor) ScheduleDelayed(key string, delay time.Duration, fn func(ctx context.Context)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timers == nil {
		return // executor already closed; session completion discards pending actions
	}
	t := time.AfterFunc(delay, func() {
		e.mu.Lock()
		delete(e.timers, key)
		e.mu.Unlock()
		select {
		case e.inbox <- job{fn: fn, done: make(chan struct{})}:
		case <-e.closed:
		}
	})
	e.timers[key] = t
}

// Close cancels every pending delayed action and stops the executor's
// goroutine, per §5's "session completion cancels pending delayed actions".
func (e *Executor) Close() {
	e.mu.Lock()
	for _, t := range e.timers {
		t.Stop()
	}
	e.timers = nil
	e.mu.Unlock()
	close(e.closed)
}

// executorRegistry lazily creates and tracks one Executor per session id.
type executorRegistry struct {
	mu        sync.Mutex
	executors map[string]*Executor
}

func newExecutorRegistry() *executorRegistry {
	return &executorRegistry{executors: map[string]*Executor{}}
}

func (r *executorRegistry) get(sessionID string) *Executor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.executors[sessionID]; ok {
		return e
	}
	e := newExecutor()
	r.executors[sessionID] = e
	return e
}

func (r *executorRegistry) remove(sessionID string) {
	r.mu.Lock()
	e, ok := r.executors[sessionID]
	delete(r.executors, sessionID)
	r.mu.Unlock()
	if ok {
		e.Close()
	}
}
