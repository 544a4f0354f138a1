package reactive

import (
	"sync"
	"sync/atomic"
)

// Computed is a cached derived value. It recomputes lazily on the first read
// after any dependency changes, and can itself be tracked like a Ref.
type Computed[T any] struct {
	base subscribers

	compute func() T

	mu    sync.RWMutex
	value T
	valid atomic.Bool

	sourcesMu sync.Mutex
	sources   []*subscribers

	// computing breaks cycles between computeds.
	computing atomic.Bool
}

// NewComputed creates a Computed. compute does not run until the first read.
func NewComputed[T any](compute func() T) *Computed[T] {
	return &Computed[T]{
		base:    subscribers{id: nextID()},
		compute: compute,
	}
}

// Get returns the value, recomputing if stale, and subscribes the current
// listener.
func (c *Computed[T]) Get() T {
	track(&c.base)
	return c.Peek()
}

// Peek returns the value without subscribing. It still recomputes when stale.
func (c *Computed[T]) Peek() T {
	if !c.valid.Load() {
		c.recompute()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// MarkDirty invalidates the cached value and propagates to subscribers.
func (c *Computed[T]) MarkDirty() {
	if c.valid.CompareAndSwap(true, false) {
		c.base.notify()
	}
}

// ID returns the Computed's unique identifier.
func (c *Computed[T]) ID() uint64 {
	return c.base.id
}

func (c *Computed[T]) addSource(s *subscribers) {
	c.sourcesMu.Lock()
	defer c.sourcesMu.Unlock()
	for _, existing := range c.sources {
		if existing == s {
			return
		}
	}
	c.sources = append(c.sources, s)
}

func (c *Computed[T]) recompute() {
	if c.computing.Swap(true) {
		return
	}
	defer c.computing.Store(false)

	c.sourcesMu.Lock()
	for _, s := range c.sources {
		s.unsubscribe(c)
	}
	c.sources = c.sources[:0]
	c.sourcesMu.Unlock()

	old := setCurrentListener(c)
	next := c.compute()
	setCurrentListener(old)

	c.mu.Lock()
	c.value = next
	c.mu.Unlock()
	c.valid.Store(true)
}
