// Package resizebar is a draggable bar that writes its position into a
// root style variable, for resizable sidebars and panels.
package resizebar

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
	"github.com/vango-dev/usekit/pkg/use"
)

// Axis is the direction the bar moves in.
type Axis string

const (
	// AxisX measures from the left edge of the page.
	AxisX Axis = "x"
	// AxisY measures from the bottom edge of the window.
	AxisY Axis = "y"
)

// HitSlop is half the bar's thickness in pixels.
const HitSlop = 5

// Bounds limits the bar position to the open interval (Min, Max).
type Bounds struct {
	Min reactive.Source[float64]
	Max reactive.Source[float64]
}

// Fixed returns a constant bound.
func Fixed(v float64) reactive.Source[float64] {
	return fixed(v)
}

type fixed float64

func (f fixed) Get() float64  { return float64(f) }
func (f fixed) Peek() float64 { return float64(f) }

// Props configures a Bar.
type Props struct {
	Axis Axis
	// Bounds is optional; nil leaves the position unconstrained.
	Bounds *Bounds
	// RootSelector names the root style variable the bar drives, e.g.
	// "--sidebar-width".
	RootSelector string
}

// Bar is a resize bar instance.
type Bar struct {
	props Props
	env   *host.Env
	value *reactive.Ref[string]

	mu       sync.Mutex
	dragging bool
	release  func()
}

// New sets up a bar in the current component.
func New(props Props) *Bar {
	if props.Axis == "" {
		props.Axis = AxisX
	}
	b := &Bar{
		props: props,
		env:   host.Current(),
		value: use.UseCssVar(props.RootSelector),
	}
	reactive.OnUnmounted(b.DragEnd)
	return b
}

// Value returns the bound style variable.
func (b *Bar) Value() *reactive.Ref[string] {
	return b.value
}

// Position returns the current position in pixels, or false when the
// variable is unset or not a pixel length.
func (b *Bar) Position() (float64, bool) {
	return ParsePx(b.value.Get())
}

// Dragging reports whether a drag is in progress.
func (b *Bar) Dragging() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dragging
}

// Contains reports whether a page position lies on the bar.
func (b *Bar) Contains(pageX, pageY float64) bool {
	pos, ok := ParsePx(b.value.Peek())
	if !ok {
		return false
	}
	return math.Abs(b.measure(pageX, pageY)-pos) <= HitSlop
}

// HandlePointer is the bar element's pointer handler: a mouse or touch
// press starts a drag.
func (b *Bar) HandlePointer(ev host.PointerEvent) {
	if ev.Kind == host.MouseDown || ev.Kind == host.TouchStart {
		b.DragStart()
	}
}

// Attach makes presses that land on the bar start a drag, standing in for
// the element handler when pointer events arrive at window level. The
// listener is removed by detach or when the component unmounts.
func (b *Bar) Attach() (detach func()) {
	detach = b.env.Window.OnPointer(func(ev host.PointerEvent) {
		if ev.Kind != host.MouseDown && ev.Kind != host.TouchStart {
			return
		}
		if x, y, ok := ev.Position(); ok && b.Contains(x, y) {
			b.DragStart()
		}
	})
	reactive.OnUnmounted(detach)
	return detach
}

// DragStart disables text selection and follows pointer moves until the
// pointer is released.
func (b *Bar) DragStart() {
	b.mu.Lock()
	if b.dragging {
		b.mu.Unlock()
		return
	}
	b.dragging = true
	b.env.Document.SetSelectable(false)
	b.release = b.env.Window.OnPointer(b.onPointer)
	b.mu.Unlock()
}

// DragEnd restores text selection and removes the drag listeners.
func (b *Bar) DragEnd() {
	b.mu.Lock()
	if !b.dragging {
		b.mu.Unlock()
		return
	}
	b.dragging = false
	release := b.release
	b.release = nil
	b.mu.Unlock()

	release()
	b.env.Document.SetSelectable(true)
}

func (b *Bar) onPointer(ev host.PointerEvent) {
	switch ev.Kind {
	case host.MouseMove, host.TouchMove:
		b.checkPosition(ev)
	case host.MouseUp, host.TouchEnd:
		b.DragEnd()
	}
}

func (b *Bar) checkPosition(ev host.PointerEvent) {
	x, y, ok := ev.Position()
	if !ok {
		return
	}
	pos := b.measure(x, y)
	if bounds := b.props.Bounds; bounds != nil {
		if bounds.Min.Peek() >= pos || bounds.Max.Peek() <= pos {
			return
		}
	}
	b.value.Set(FormatPx(pos))
}

func (b *Bar) measure(pageX, pageY float64) float64 {
	if b.props.Axis == AxisY {
		_, height := b.env.Window.InnerSize()
		return height - pageY
	}
	return pageX
}

// Style returns the bar's CSS declarations for its axis.
func (b *Bar) Style() string {
	return AxisStyle(b.props.Axis)
}

// AxisStyle returns the CSS declarations of a bar on axis.
func AxisStyle(axis Axis) string {
	if axis == AxisY {
		return "height: 10px; width: 100%; position: absolute; top: -5px; left: 0; cursor: ns-resize;"
	}
	return "height: 100vh; width: 10px; position: absolute; bottom: 0; right: -5px; cursor: ew-resize;"
}

// FormatPx formats a pixel length.
func FormatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// ParsePx parses a pixel length such as "200px".
func ParsePx(s string) (float64, bool) {
	num, ok := strings.CutSuffix(strings.TrimSpace(s), "px")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
