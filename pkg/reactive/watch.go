package reactive

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	lazy bool
}

// Lazy skips the callback for the initial value; it only fires on changes.
func Lazy() WatchOption {
	return func(c *watchConfig) {
		c.lazy = true
	}
}

// LazyIf applies Lazy when cond is true.
func LazyIf(cond bool) WatchOption {
	return func(c *watchConfig) {
		c.lazy = cond
	}
}

// Watch calls cb with the value of source and the previous value every time
// a Ref read by source changes. Unless Lazy is given cb also runs once
// immediately, with old set to the zero value. cb runs untracked.
//
// Multiple sources are watched by returning them together:
//
//	Watch(func() [2]bool {
//	    return [2]bool{visible.Get(), focused.Get()}
//	}, func(v, _ [2]bool) { ... })
//
// The returned function stops the watcher. Inside WithOwner it is also
// stopped when the owner is disposed.
func Watch[T any](source func() T, cb func(value, old T), opts ...WatchOption) (stop func()) {
	var cfg watchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		old   T
		first = true
	)
	e := NewEffect(func() Cleanup {
		value := source()
		prev := old
		old = value
		if first {
			first = false
			if cfg.lazy {
				return nil
			}
		}
		Untracked(func() {
			cb(value, prev)
		})
		return nil
	})
	return e.Stop
}
