// Package reactive provides the observable runtime the usekit hooks are
// built on.
//
// The model follows fine-grained reactivity: reading a Ref inside a tracked
// scope (a Computed, an Effect or a Watch source) subscribes that scope, and
// writing the Ref re-runs it.
//
// # Core Types
//
// Ref[T] is an observable value container:
//
//	count := NewRef(0)
//	value := count.Get() // Read (subscribes current listener)
//	count.Set(5)         // Write (notifies subscribers)
//
// Computed[T] is a cached derived value:
//
//	doubled := NewComputed(func() int { return count.Get() * 2 })
//
// Watch observes a getter and calls back with the new and old value:
//
//	stop := Watch(count.Get, func(n, old int) {
//	    fmt.Println(old, "->", n)
//	}, Lazy())
//
// # Lifecycle
//
// An Owner is a component instance. Hooks running inside WithOwner register
// OnMounted and OnUnmounted callbacks on it; Mount runs the former and
// Dispose runs the latter, children first.
//
// # Thread Safety
//
// Refs and Computeds are safe for concurrent use. The tracking context is
// per goroutine, so hooks that spawn goroutines must route results back
// through a dispatcher rather than writing state from the worker.
package reactive
