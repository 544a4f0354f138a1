package swr

import "sync"

// Cache holds the last fetched value per key.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapCache is a Cache backed by a map. It never evicts.
type MapCache struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{values: make(map[string]any)}
}

// Get implements Cache.
func (m *MapCache) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Set implements Cache.
func (m *MapCache) Set(key string, value any) {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

// Len returns the number of cached keys.
func (m *MapCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

var defaultCache = NewMapCache()

// DefaultCache returns the cache shared by every UseSWR without WithCache.
func DefaultCache() Cache {
	return defaultCache
}
