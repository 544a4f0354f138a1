// Package use is a collection of composition hooks: timers, async state,
// window focus and visibility observers, persisted values, style variable
// bindings and throttling.
//
// Hooks are plain functions called during component setup, i.e. inside
// reactive.WithOwner. They read host services from host.Current, attach
// listeners and timers, and register their teardown with OnUnmounted, so
// disposing the owner releases everything they acquired. Called outside an
// owner they work the same but are never torn down automatically.
//
//	owner := reactive.NewOwner(nil)
//	host.Provide(owner, env)
//	reactive.WithOwner(owner, func() {
//	    ready, clear, again := use.UseTimeout(time.Second)
//	    ...
//	})
//	owner.Mount()
//
// Reactive state returned by hooks is only written from the env loop.
package use
