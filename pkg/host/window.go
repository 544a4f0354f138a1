package host

import "sync"

// VisibilityState mirrors document.visibilityState.
type VisibilityState string

const (
	Visible   VisibilityState = "visible"
	Hidden    VisibilityState = "hidden"
	Prerender VisibilityState = "prerender"
)

// ParseVisibility maps a wire value to a VisibilityState. Unknown values
// are treated as hidden.
func ParseVisibility(s string) VisibilityState {
	switch VisibilityState(s) {
	case Visible, Prerender:
		return VisibilityState(s)
	default:
		return Hidden
	}
}

// WindowEvent identifies a focus, visibility or resize change.
type WindowEvent int

const (
	EventFocus WindowEvent = iota + 1
	EventBlur
	EventVisibilityChange
	EventResize
)

// String returns the DOM event name.
func (e WindowEvent) String() string {
	switch e {
	case EventFocus:
		return "focus"
	case EventBlur:
		return "blur"
	case EventVisibilityChange:
		return "visibilitychange"
	case EventResize:
		return "resize"
	default:
		return "unknown"
	}
}

// PointerKind identifies a mouse or touch event.
type PointerKind int

const (
	MouseDown PointerKind = iota + 1
	MouseMove
	MouseUp
	TouchStart
	TouchMove
	TouchEnd
)

// IsTouch reports whether k is a touch event.
func (k PointerKind) IsTouch() bool {
	return k == TouchStart || k == TouchMove || k == TouchEnd
}

// Touch is a single contact point.
type Touch struct {
	PageX float64
	PageY float64
}

// PointerEvent is a mouse or touch event in page coordinates. For touch
// events PageX/PageY are unused and Touches holds the active contacts.
type PointerEvent struct {
	Kind    PointerKind
	PageX   float64
	PageY   float64
	Touches []Touch
}

// Position returns the page position of the event: the first touch for
// touch events, the pointer otherwise. ok is false for a touch event with
// no contacts.
func (e PointerEvent) Position() (x, y float64, ok bool) {
	if e.Kind.IsTouch() {
		if len(e.Touches) == 0 {
			return 0, 0, false
		}
		return e.Touches[0].PageX, e.Touches[0].PageY, true
	}
	return e.PageX, e.PageY, true
}

// Window is the host window: focus, visibility, inner size and pointer
// input. The zero value is not usable; call NewWindow.
type Window struct {
	mu         sync.RWMutex
	focused    bool
	visibility VisibilityState
	width      float64
	height     float64

	events  listenerSet[WindowEvent]
	pointer listenerSet[PointerEvent]
}

// NewWindow returns a focused, visible window of the given inner size.
func NewWindow(width, height float64) *Window {
	return &Window{
		focused:    true,
		visibility: Visible,
		width:      width,
		height:     height,
	}
}

// Focused reports whether the window has focus (document.hasFocus()).
func (w *Window) Focused() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.focused
}

// Visibility returns the current visibility state.
func (w *Window) Visibility() VisibilityState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.visibility
}

// InnerSize returns the viewport size.
func (w *Window) InnerSize() (width, height float64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.width, w.height
}

// Focus gives the window focus and emits EventFocus if it did not have it.
func (w *Window) Focus() {
	w.setFocused(true, EventFocus)
}

// Blur removes focus and emits EventBlur if the window had it.
func (w *Window) Blur() {
	w.setFocused(false, EventBlur)
}

func (w *Window) setFocused(focused bool, ev WindowEvent) {
	w.mu.Lock()
	changed := w.focused != focused
	w.focused = focused
	w.mu.Unlock()
	if changed {
		w.events.emit(ev)
	}
}

// SetVisibility updates the visibility state and emits
// EventVisibilityChange on change.
func (w *Window) SetVisibility(state VisibilityState) {
	w.mu.Lock()
	changed := w.visibility != state
	w.visibility = state
	w.mu.Unlock()
	if changed {
		w.events.emit(EventVisibilityChange)
	}
}

// Resize updates the inner size and emits EventResize on change.
func (w *Window) Resize(width, height float64) {
	w.mu.Lock()
	changed := w.width != width || w.height != height
	w.width, w.height = width, height
	w.mu.Unlock()
	if changed {
		w.events.emit(EventResize)
	}
}

// DispatchPointer delivers a pointer event to pointer listeners.
func (w *Window) DispatchPointer(ev PointerEvent) {
	w.pointer.emit(ev)
}

// OnEvent registers fn for focus, blur, visibility and resize events.
func (w *Window) OnEvent(fn func(WindowEvent)) (unsubscribe func()) {
	return w.events.add(fn)
}

// OnPointer registers fn for pointer events.
func (w *Window) OnPointer(fn func(PointerEvent)) (unsubscribe func()) {
	return w.pointer.add(fn)
}

// ListenerCount returns the number of registered event and pointer
// listeners.
func (w *Window) ListenerCount() int {
	return w.events.len() + w.pointer.len()
}
