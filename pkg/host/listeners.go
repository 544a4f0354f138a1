package host

import "sync"

// listenerSet is an ordered set of callbacks with removal by handle.
type listenerSet[T any] struct {
	mu   sync.Mutex
	next uint64
	fns  map[uint64]func(T)
	keys []uint64
}

// add registers fn and returns a function that removes it. Removing twice
// is harmless.
func (s *listenerSet[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[uint64]func(T))
	}
	s.next++
	id := s.next
	s.fns[id] = fn
	s.keys = append(s.keys, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.fns[id]; !ok {
			return
		}
		delete(s.fns, id)
		for i, k := range s.keys {
			if k == id {
				s.keys = append(s.keys[:i], s.keys[i+1:]...)
				break
			}
		}
	}
}

// emit calls every listener registered at the time of the call, in
// registration order, without holding the lock.
func (s *listenerSet[T]) emit(v T) {
	s.mu.Lock()
	fns := make([]func(T), 0, len(s.keys))
	for _, k := range s.keys {
		fns = append(fns, s.fns[k])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (s *listenerSet[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
