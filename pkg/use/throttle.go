package use

import (
	"sync"
	"time"

	"github.com/vango-dev/usekit/pkg/host"
)

// Throttled limits calls to fn to one per wait interval. The first call in
// a quiet period runs fn at once; calls during the interval collapse into a
// single trailing invocation when it ends.
type Throttled struct {
	env  *host.Env
	fn   func()
	wait time.Duration

	mu      sync.Mutex
	timer   *host.Timer
	pending bool
}

// Throttle wraps fn using the current env's clock.
func Throttle(fn func(), wait time.Duration) *Throttled {
	return &Throttled{env: host.Current(), fn: fn, wait: wait}
}

// Call invokes fn now or schedules the trailing invocation.
func (t *Throttled) Call() {
	t.mu.Lock()
	if t.timer != nil {
		t.pending = true
		t.mu.Unlock()
		return
	}
	t.timer = t.env.AfterFunc(t.wait, t.trailingEdge)
	t.mu.Unlock()
	t.fn()
}

func (t *Throttled) trailingEdge() {
	t.mu.Lock()
	if !t.pending {
		t.timer = nil
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.timer = t.env.AfterFunc(t.wait, t.trailingEdge)
	t.mu.Unlock()
	t.fn()
}

// Cancel drops any scheduled trailing invocation and ends the interval.
func (t *Throttled) Cancel() {
	t.mu.Lock()
	timer := t.timer
	t.timer = nil
	t.pending = false
	t.mu.Unlock()
	timer.Stop()
}

// Flush runs a scheduled trailing invocation immediately.
func (t *Throttled) Flush() {
	t.mu.Lock()
	pending := t.pending
	timer := t.timer
	t.timer = nil
	t.pending = false
	t.mu.Unlock()
	timer.Stop()
	if pending {
		t.fn()
	}
}

// Pending reports whether a trailing invocation is scheduled.
func (t *Throttled) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}
