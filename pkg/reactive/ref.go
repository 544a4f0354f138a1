package reactive

import (
	"reflect"
	"sync"
)

// subscribers is the type-erased subscriber set shared by Ref and Computed.
type subscribers struct {
	id   uint64
	mu   sync.RWMutex
	subs []Listener
}

// subscribe adds l, deduplicating by listener ID.
func (s *subscribers) subscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}
	s.subs = append(s.subs, l)
}

func (s *subscribers) unsubscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

// notify marks every subscriber dirty, or queues them inside a Batch.
// Subscribers are copied first so no lock is held while they run.
func (s *subscribers) notify() {
	s.mu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	ctx := currentContext()
	if ctx.batchDepth > 0 {
		ctx.pending = append(ctx.pending, subs...)
		return
	}
	releaseContext(ctx)
	for _, sub := range subs {
		sub.MarkDirty()
	}
}

func (s *subscribers) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// sourceTracker is implemented by listeners that remember what they read so
// they can unsubscribe before re-running.
type sourceTracker interface {
	addSource(*subscribers)
}

// track subscribes the current listener, if any, to s.
func track(s *subscribers) {
	listener := getCurrentListener()
	if listener == nil {
		return
	}
	s.subscribe(listener)
	if t, ok := listener.(sourceTracker); ok {
		t.addSource(s)
	}
}

// Ref is an observable value container.
// Reading it with Get inside a Computed, Effect or Watch source subscribes
// that scope to later writes.
type Ref[T any] struct {
	base  subscribers
	mu    sync.RWMutex
	value T
	equal func(a, b T) bool
}

// NewRef creates a Ref holding initial.
func NewRef[T any](initial T) *Ref[T] {
	return &Ref[T]{
		base:  subscribers{id: nextID()},
		value: initial,
	}
}

// Get returns the current value and subscribes the current listener.
func (r *Ref[T]) Get() T {
	r.mu.RLock()
	value := r.value
	r.mu.RUnlock()

	track(&r.base)
	return value
}

// Peek returns the current value without subscribing.
func (r *Ref[T]) Peek() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set stores value and notifies subscribers when it differs from the
// previous value.
func (r *Ref[T]) Set(value T) {
	r.mu.Lock()
	changed := !r.equals(r.value, value)
	if changed {
		r.value = value
	}
	r.mu.Unlock()

	if changed {
		r.base.notify()
	}
}

// Update atomically replaces the value with fn(current).
func (r *Ref[T]) Update(fn func(T) T) {
	r.mu.Lock()
	next := fn(r.value)
	changed := !r.equals(r.value, next)
	if changed {
		r.value = next
	}
	r.mu.Unlock()

	if changed {
		r.base.notify()
	}
}

// WithEquals overrides the equality used to suppress no-op writes.
func (r *Ref[T]) WithEquals(fn func(a, b T) bool) *Ref[T] {
	r.equal = fn
	return r
}

// ID returns the Ref's unique identifier.
func (r *Ref[T]) ID() uint64 {
	return r.base.id
}

func (r *Ref[T]) equals(a, b T) bool {
	if r.equal != nil {
		return r.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for the common comparable kinds and
// reflect.DeepEqual otherwise.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case uint64:
		bv, ok := any(b).(uint64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	case error:
		bv, _ := any(b).(error)
		return av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}
