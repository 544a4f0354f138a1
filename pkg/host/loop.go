package host

import (
	"context"
	"sync"
)

// Loop is a single-consumer task queue. Producers on any goroutine call
// Dispatch; one goroutine drains the queue with Run, Flush or Step, so tasks
// never run concurrently with each other.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	idle  []func()
	wake  chan struct{}

	observers listenerSet[struct{}]
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Dispatch queues fn. It is safe for concurrent use.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.signal()
}

// RequestIdle queues fn to run once the task queue is empty.
func (l *Loop) RequestIdle(fn func()) {
	l.mu.Lock()
	l.idle = append(l.idle, fn)
	l.mu.Unlock()
	l.signal()
}

// OnTask registers fn to run after every task. The TUI uses it to repaint.
func (l *Loop) OnTask(fn func()) (unsubscribe func()) {
	return l.observers.add(func(struct{}) { fn() })
}

// Pending reports the number of queued tasks and idle callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks) + len(l.idle)
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// pop returns the next task, falling back to an idle callback when no task
// is queued.
func (l *Loop) pop(allowIdle bool) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) > 0 {
		fn := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		return fn, true
	}
	if allowIdle && len(l.idle) > 0 {
		fn := l.idle[0]
		l.idle[0] = nil
		l.idle = l.idle[1:]
		return fn, true
	}
	return nil, false
}

func (l *Loop) exec(fn func()) {
	fn()
	l.observers.emit(struct{}{})
}

// Flush runs queued tasks and idle callbacks on the calling goroutine until
// both queues are empty, including work queued by the tasks themselves.
// It returns the number of callbacks run.
func (l *Loop) Flush() int {
	n := 0
	for {
		fn, ok := l.pop(true)
		if !ok {
			return n
		}
		l.exec(fn)
		n++
	}
}

// Step blocks until a task is queued, then runs it. Idle callbacks are not
// considered. It returns ctx.Err() if ctx ends first.
func (l *Loop) Step(ctx context.Context) error {
	for {
		if fn, ok := l.pop(false); ok {
			l.exec(fn)
			return nil
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Run drains the loop until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if fn, ok := l.pop(true); ok {
			l.exec(fn)
			continue
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
