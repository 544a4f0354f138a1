package reactive

import (
	"sync"
	"sync/atomic"
)

// maxEffectReruns bounds how many times an effect re-runs because it wrote a
// source it also reads, within a single notification.
const maxEffectReruns = 100

// Effect is a reactive side effect. It runs once on creation and again,
// synchronously, whenever a Ref or Computed it read during its last run
// changes. Inside a Batch the re-run is deferred until the batch ends.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	sourcesMu sync.Mutex
	sources   []*subscribers

	// runMu serialises runs triggered from different goroutines.
	runMu   sync.Mutex
	running atomic.Bool
	rerun   atomic.Bool

	disposed atomic.Bool
}

// NewEffect creates and runs an effect. When called inside WithOwner the
// effect is disposed together with the owner.
//
//	NewEffect(func() Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
func NewEffect(fn func() Cleanup) *Effect {
	e := &Effect{
		id: nextID(),
		fn: fn,
	}
	if owner := CurrentOwner(); owner != nil {
		owner.registerEffect(e)
	}
	e.MarkDirty()
	return e
}

// MarkDirty re-runs the effect. A notification that arrives while the effect
// is already running on this goroutine is folded into one follow-up run.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	if e.running.Load() {
		e.rerun.Store(true)
		return
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()

	e.running.Store(true)
	defer e.running.Store(false)

	for i := 0; i < maxEffectReruns; i++ {
		e.rerun.Store(false)
		e.run()
		if !e.rerun.Load() || e.disposed.Load() {
			return
		}
	}
}

// ID returns the effect's unique identifier.
func (e *Effect) ID() uint64 {
	return e.id
}

// Stop disposes the effect: its cleanup runs and it stops tracking.
func (e *Effect) Stop() {
	e.dispose()
}

func (e *Effect) run() {
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.unsubscribeAll()

	old := setCurrentListener(e)
	defer setCurrentListener(old)

	e.cleanup = e.fn()
}

func (e *Effect) addSource(s *subscribers) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	for _, existing := range e.sources {
		if existing == s {
			return
		}
	}
	e.sources = append(e.sources, s)
}

func (e *Effect) unsubscribeAll() {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	for _, s := range e.sources {
		s.unsubscribe(e)
	}
	e.sources = e.sources[:0]
}

func (e *Effect) dispose() {
	if e.disposed.Swap(true) {
		return
	}
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.unsubscribeAll()
}
