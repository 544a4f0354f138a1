package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state of a single goroutine.
type trackingContext struct {
	// owner adopts effects and lifecycle callbacks created by hooks.
	owner *Owner

	// listener is what is currently collecting dependencies.
	// nil means reads do not subscribe.
	listener Listener

	// batchDepth counts nested Batch calls.
	batchDepth int

	// pending accumulates listeners to notify when the outer batch ends.
	pending []Listener
}

var trackingContexts sync.Map

// goroutineID parses the current goroutine's ID from its stack header,
// which always starts with "goroutine <id> ".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func currentContext() *trackingContext {
	gid := goroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// releaseContext drops the current goroutine's context once it holds no
// state, so short-lived goroutines do not leak entries.
func releaseContext(ctx *trackingContext) {
	if ctx.owner == nil && ctx.listener == nil && ctx.batchDepth == 0 && len(ctx.pending) == 0 {
		trackingContexts.Delete(goroutineID())
	}
}

func getCurrentListener() Listener {
	return currentContext().listener
}

// setCurrentListener installs l and returns the previous listener.
func setCurrentListener(l Listener) Listener {
	ctx := currentContext()
	old := ctx.listener
	ctx.listener = l
	if l == nil {
		releaseContext(ctx)
	}
	return old
}

func setCurrentOwner(o *Owner) *Owner {
	ctx := currentContext()
	old := ctx.owner
	ctx.owner = o
	if o == nil {
		releaseContext(ctx)
	}
	return old
}

// CurrentOwner returns the Owner hooks on this goroutine attach to,
// or nil outside any component scope.
func CurrentOwner() *Owner {
	return currentContext().owner
}

// WithOwner runs fn with owner as the current owner. Hooks called inside fn
// register their lifecycle callbacks on owner.
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer setCurrentOwner(old)
	fn()
}
