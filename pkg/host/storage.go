package host

import (
	"context"
	"sync"
)

// StorageEvent describes a change to a storage key, like the DOM "storage"
// event. Removed is set when the key was deleted.
type StorageEvent struct {
	Key      string
	OldValue string
	NewValue string
	Removed  bool
}

// Storage is string key/value storage with change notification.
type Storage interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Subscribe registers fn for changes to any key.
	Subscribe(fn func(StorageEvent)) (unsubscribe func())
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
	events listenerSet[StorageEvent]
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get implements Storage.
func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Storage.
func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	old, existed := m.values[key]
	m.values[key] = value
	m.mu.Unlock()

	if !existed || old != value {
		m.events.emit(StorageEvent{Key: key, OldValue: old, NewValue: value})
	}
	return nil
}

// Remove implements Storage.
func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	old, existed := m.values[key]
	delete(m.values, key)
	m.mu.Unlock()

	if existed {
		m.events.emit(StorageEvent{Key: key, OldValue: old, Removed: true})
	}
	return nil
}

// Subscribe implements Storage.
func (m *MemoryStorage) Subscribe(fn func(StorageEvent)) func() {
	return m.events.add(fn)
}

// diffSnapshots returns the events that turn before into after, in key
// order of after followed by removals.
func diffSnapshots(before, after map[string]string) []StorageEvent {
	var events []StorageEvent
	for _, k := range sortedKeys(after) {
		old, ok := before[k]
		if !ok || old != after[k] {
			events = append(events, StorageEvent{Key: k, OldValue: old, NewValue: after[k]})
		}
	}
	for _, k := range sortedKeys(before) {
		if _, ok := after[k]; !ok {
			events = append(events, StorageEvent{Key: k, OldValue: before[k], Removed: true})
		}
	}
	return events
}
