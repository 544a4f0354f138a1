package host

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vango-dev/usekit/pkg/reactive"
)

// IdleScheduler runs callbacks when the host has nothing else to do
// (requestIdleCallback). Callbacks must run on the env loop. An Env without
// one runs such work immediately.
type IdleScheduler interface {
	RequestIdle(fn func())
}

// Env bundles the host services hooks depend on.
type Env struct {
	Clock    clock.Clock
	Loop     *Loop
	Idle     IdleScheduler
	Window   *Window
	Document *Document
	Storage  Storage
	Logger   *slog.Logger
}

// NewEnv returns an Env with a real clock, a fresh loop that also serves
// idle callbacks, a focused 1280x800 window, an empty document and memory
// storage.
func NewEnv() *Env {
	loop := NewLoop()
	return &Env{
		Clock:    clock.New(),
		Loop:     loop,
		Idle:     loop,
		Window:   NewWindow(1280, 800),
		Document: NewDocument(nil),
		Storage:  NewMemoryStorage(),
		Logger:   slog.Default().With("component", "usekit"),
	}
}

// Now returns the env clock's current time.
func (e *Env) Now() time.Time {
	return e.Clock.Now()
}

// NowMillis returns the current time in unix milliseconds, the unit the
// SWR cached-time entry is stored in.
func (e *Env) NowMillis() int64 {
	return e.Clock.Now().UnixMilli()
}

// Timer is a one-shot timer whose callback runs on the env loop.
type Timer struct {
	t       *clock.Timer
	stopped atomic.Bool
}

// Stop cancels the timer. A callback that was already queued on the loop
// when Stop is called does not run. It reports whether the call prevented
// the callback.
func (t *Timer) Stop() bool {
	if t == nil {
		return false
	}
	if t.stopped.Swap(true) {
		return false
	}
	t.t.Stop()
	return true
}

// AfterFunc schedules fn on the loop after d.
func (e *Env) AfterFunc(d time.Duration, fn func()) *Timer {
	timer := &Timer{}
	timer.t = e.Clock.AfterFunc(d, func() {
		e.Loop.Dispatch(func() {
			if timer.stopped.Swap(true) {
				return
			}
			fn()
		})
	})
	return timer
}

// RequestIdle runs fn through the idle scheduler, or immediately when the
// env has none. It reports whether fn was deferred.
func (e *Env) RequestIdle(fn func()) bool {
	if e.Idle == nil {
		fn()
		return false
	}
	e.Idle.RequestIdle(fn)
	return true
}

type envKey struct{}

var defaultEnv atomic.Pointer[Env]

// Default returns the process-wide Env, creating it on first use.
func Default() *Env {
	if env := defaultEnv.Load(); env != nil {
		return env
	}
	defaultEnv.CompareAndSwap(nil, NewEnv())
	return defaultEnv.Load()
}

// SetDefault replaces the process-wide Env.
func SetDefault(env *Env) {
	defaultEnv.Store(env)
}

// Provide makes env visible to hooks running under owner and its
// descendants.
func Provide(owner *reactive.Owner, env *Env) {
	owner.Provide(envKey{}, env)
}

// Current returns the Env provided on the current owner chain, falling back
// to Default.
func Current() *Env {
	if owner := reactive.CurrentOwner(); owner != nil {
		if v, ok := owner.Inject(envKey{}); ok {
			return v.(*Env)
		}
	}
	return Default()
}
