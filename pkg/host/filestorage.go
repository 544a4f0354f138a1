package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStorage persists keys as a JSON object in a single file. Changes made
// to the file by other processes are picked up through fsnotify and
// reported as StorageEvents, the way another tab's writes reach a page.
type FileStorage struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	values map[string]string
	events listenerSet[StorageEvent]

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// OpenFileStorage loads path (a missing file is an empty store) and starts
// watching its directory. Close stops the watcher.
func OpenFileStorage(path string, logger *slog.Logger) (*FileStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	values, err := readStorageFile(abs)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: atomic renames replace the file's inode.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch storage dir: %w", err)
	}

	fs := &FileStorage{
		path:    abs,
		logger:  logger.With("component", "filestorage", "path", abs),
		values:  values,
		watcher: watcher,
		done:    make(chan struct{}),
	}
	fs.wg.Add(1)
	go fs.watch()
	return fs, nil
}

// Path returns the absolute path of the backing file.
func (f *FileStorage) Path() string {
	return f.path
}

// Get implements Storage.
func (f *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok, nil
}

// Set implements Storage.
func (f *FileStorage) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	old, existed := f.values[key]
	if existed && old == value {
		f.mu.Unlock()
		return nil
	}
	next := maps.Clone(f.values)
	next[key] = value
	if err := writeStorageFile(f.path, next); err != nil {
		f.mu.Unlock()
		return err
	}
	f.values = next
	f.mu.Unlock()

	f.events.emit(StorageEvent{Key: key, OldValue: old, NewValue: value})
	return nil
}

// Remove implements Storage.
func (f *FileStorage) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	old, existed := f.values[key]
	if !existed {
		f.mu.Unlock()
		return nil
	}
	next := maps.Clone(f.values)
	delete(next, key)
	if err := writeStorageFile(f.path, next); err != nil {
		f.mu.Unlock()
		return err
	}
	f.values = next
	f.mu.Unlock()

	f.events.emit(StorageEvent{Key: key, OldValue: old, Removed: true})
	return nil
}

// Subscribe implements Storage.
func (f *FileStorage) Subscribe(fn func(StorageEvent)) func() {
	return f.events.add(fn)
}

// Close stops watching the file.
func (f *FileStorage) Close() error {
	select {
	case <-f.done:
		return nil
	default:
	}
	close(f.done)
	err := f.watcher.Close()
	f.wg.Wait()
	return err
}

func (f *FileStorage) watch() {
	defer f.wg.Done()
	for {
		select {
		case <-f.done:
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				f.reload()
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("storage watch error", "error", err)
		}
	}
}

// reload re-reads the file and emits events for keys that differ from the
// in-memory copy. The read happens under the lock so it cannot interleave
// with a Set; our own writes leave nothing to report.
func (f *FileStorage) reload() {
	f.mu.Lock()
	values, err := readStorageFile(f.path)
	if err != nil {
		f.mu.Unlock()
		f.logger.Warn("storage reload failed", "error", err)
		return
	}
	events := diffSnapshots(f.values, values)
	f.values = values
	f.mu.Unlock()

	for _, ev := range events {
		f.events.emit(ev)
	}
}

func readStorageFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse storage file: %w", err)
	}
	return values, nil
}

func writeStorageFile(path string, values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".usekit-storage-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
