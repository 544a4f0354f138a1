package reactive

import (
	"context"
	"sync"
	"sync/atomic"
)

// Owner is a component instance scope. Hooks called inside WithOwner attach
// their effects and lifecycle callbacks to it; disposing the owner tears
// them down, children first.
type Owner struct {
	id     uint64
	parent *Owner

	ctx    context.Context
	cancel context.CancelFunc

	childrenMu sync.Mutex
	children   []*Owner

	effectsMu sync.Mutex
	effects   []*Effect

	mountMu  sync.Mutex
	mounts   []func()
	mounted  bool
	cleanups []func()

	valuesMu sync.RWMutex
	values   map[any]any

	disposed atomic.Bool
}

// NewOwner creates an Owner registered as a child of parent.
// A nil parent creates a root owner whose context derives from
// context.Background.
func NewOwner(parent *Owner) *Owner {
	base := context.Background()
	if parent != nil {
		base = parent.ctx
	}
	ctx, cancel := context.WithCancel(base)

	o := &Owner{
		id:     nextID(),
		parent: parent,
		ctx:    ctx,
		cancel: cancel,
	}
	if parent != nil {
		parent.addChild(o)
	}
	return o
}

// ID returns the owner's unique identifier.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent owner, or nil for a root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// Context is cancelled when the owner is disposed.
func (o *Owner) Context() context.Context {
	return o.ctx
}

// IsDisposed reports whether Dispose has been called.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// IsMounted reports whether Mount has run and Dispose has not.
func (o *Owner) IsMounted() bool {
	o.mountMu.Lock()
	defer o.mountMu.Unlock()
	return o.mounted && !o.disposed.Load()
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (o *Owner) registerEffect(e *Effect) {
	if o.disposed.Load() {
		return
	}
	o.effectsMu.Lock()
	defer o.effectsMu.Unlock()
	o.effects = append(o.effects, e)
}

// OnMounted registers fn to run when the owner mounts. If the owner is
// already mounted fn runs immediately.
func (o *Owner) OnMounted(fn func()) {
	o.mountMu.Lock()
	if o.mounted {
		o.mountMu.Unlock()
		fn()
		return
	}
	o.mounts = append(o.mounts, fn)
	o.mountMu.Unlock()
}

// OnCleanup registers fn to run when the owner is disposed. On a disposed
// owner fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	o.mountMu.Lock()
	if o.disposed.Load() {
		o.mountMu.Unlock()
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
	o.mountMu.Unlock()
}

// Mount runs the registered OnMounted callbacks, then mounts children.
// Mounting twice is a no-op.
func (o *Owner) Mount() {
	if o.disposed.Load() {
		return
	}
	o.mountMu.Lock()
	if o.mounted {
		o.mountMu.Unlock()
		return
	}
	o.mounted = true
	mounts := o.mounts
	o.mounts = nil
	o.mountMu.Unlock()

	WithOwner(o, func() {
		for _, fn := range mounts {
			fn()
		}
	})

	o.childrenMu.Lock()
	children := append([]*Owner(nil), o.children...)
	o.childrenMu.Unlock()
	for _, child := range children {
		child.Mount()
	}
}

// Dispose tears the owner down: children in reverse creation order, then
// effects, then cleanups in reverse registration order. The context is
// cancelled last.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := o.children
	o.children = nil
	o.childrenMu.Unlock()
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.effectsMu.Lock()
	effects := o.effects
	o.effects = nil
	o.effectsMu.Unlock()
	for _, e := range effects {
		e.dispose()
	}

	o.mountMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.mounts = nil
	o.mountMu.Unlock()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	o.cancel()
}

// Provide stores a value visible to this owner and its descendants.
func (o *Owner) Provide(key, value any) {
	o.valuesMu.Lock()
	defer o.valuesMu.Unlock()
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// Inject looks key up on this owner and then its ancestors.
func (o *Owner) Inject(key any) (any, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		cur.valuesMu.RLock()
		v, ok := cur.values[key]
		cur.valuesMu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// OnMounted registers fn on the current owner. Outside any owner it is a
// no-op and reports false, mirroring hooks that only schedule work when a
// component instance exists.
func OnMounted(fn func()) bool {
	owner := CurrentOwner()
	if owner == nil {
		return false
	}
	owner.OnMounted(fn)
	return true
}

// OnUnmounted registers fn to run when the current owner is disposed.
// Outside any owner it is a no-op and reports false.
func OnUnmounted(fn func()) bool {
	owner := CurrentOwner()
	if owner == nil {
		return false
	}
	owner.OnCleanup(fn)
	return true
}
