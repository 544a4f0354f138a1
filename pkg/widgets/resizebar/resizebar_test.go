package resizebar

import (
	"testing"

	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
)

func mountBar(t *testing.T, props Props) (*Bar, *host.Env, *reactive.Owner) {
	t.Helper()
	env := host.NewEnv()
	env.Window.Resize(1000, 600)
	env.Document.SetStyleVar("--sidebar-width", "200px")
	env.Document.SetStyleVar("--doc-height", "300px")

	owner := reactive.NewOwner(nil)
	host.Provide(owner, env)
	var bar *Bar
	reactive.WithOwner(owner, func() {
		bar = New(props)
	})
	owner.Mount()
	return bar, env, owner
}

func mouse(kind host.PointerKind, x, y float64) host.PointerEvent {
	return host.PointerEvent{Kind: kind, PageX: x, PageY: y}
}

func TestDragX(t *testing.T) {
	bar, env, owner := mountBar(t, Props{
		Axis:         AxisX,
		Bounds:       &Bounds{Min: Fixed(100), Max: Fixed(500)},
		RootSelector: "--sidebar-width",
	})
	defer owner.Dispose()

	bar.HandlePointer(mouse(host.MouseDown, 200, 10))
	if env.Document.Selectable() {
		t.Error("selection should be disabled while dragging")
	}

	tests := []struct {
		x    float64
		want string
	}{
		{250, "250px"},
		{100, "250px"}, // at min: ignored
		{50, "250px"},
		{500, "250px"}, // at max: ignored
		{499.5, "499.5px"},
	}
	for _, tt := range tests {
		env.Window.DispatchPointer(mouse(host.MouseMove, tt.x, 10))
		if got := env.Document.StyleVar("--sidebar-width"); got != tt.want {
			t.Errorf("move to %v: got %s, want %s", tt.x, got, tt.want)
		}
	}

	env.Window.DispatchPointer(mouse(host.MouseUp, 0, 0))
	if !env.Document.Selectable() {
		t.Error("selection should be restored on release")
	}
	if n := env.Window.ListenerCount(); n != 0 {
		t.Errorf("listeners left after release: %d", n)
	}

	env.Window.DispatchPointer(mouse(host.MouseMove, 300, 10))
	if got := env.Document.StyleVar("--sidebar-width"); got != "499.5px" {
		t.Errorf("move after release changed the bar: %s", got)
	}
}

func TestDragYTouch(t *testing.T) {
	bar, env, owner := mountBar(t, Props{Axis: AxisY, RootSelector: "--doc-height"})
	defer owner.Dispose()

	bar.HandlePointer(host.PointerEvent{Kind: host.TouchStart, Touches: []host.Touch{{PageX: 0, PageY: 300}}})
	env.Window.DispatchPointer(host.PointerEvent{Kind: host.TouchMove, Touches: []host.Touch{{PageX: 5, PageY: 200}}})
	if got := env.Document.StyleVar("--doc-height"); got != "400px" {
		t.Errorf("expected innerHeight - pageY = 400px, got %s", got)
	}

	// A touch move without contacts is ignored.
	env.Window.DispatchPointer(host.PointerEvent{Kind: host.TouchMove})
	if got := env.Document.StyleVar("--doc-height"); got != "400px" {
		t.Errorf("empty touch changed the bar: %s", got)
	}

	env.Window.DispatchPointer(host.PointerEvent{Kind: host.TouchEnd})
	if bar.Dragging() || env.Window.ListenerCount() != 0 {
		t.Error("touch end should finish the drag")
	}
}

func TestReactiveBounds(t *testing.T) {
	maxWidth := reactive.NewRef(300.0)
	bar, env, owner := mountBar(t, Props{
		Bounds:       &Bounds{Min: Fixed(0), Max: maxWidth},
		RootSelector: "--sidebar-width",
	})
	defer owner.Dispose()

	bar.DragStart()
	env.Window.DispatchPointer(mouse(host.MouseMove, 400, 0))
	if got := env.Document.StyleVar("--sidebar-width"); got != "200px" {
		t.Fatalf("beyond max should be ignored, got %s", got)
	}
	maxWidth.Set(800)
	env.Window.DispatchPointer(mouse(host.MouseMove, 400, 0))
	if got := env.Document.StyleVar("--sidebar-width"); got != "400px" {
		t.Errorf("raised max should allow 400px, got %s", got)
	}
}

func TestDisposeEndsDrag(t *testing.T) {
	bar, env, owner := mountBar(t, Props{RootSelector: "--sidebar-width"})
	bar.DragStart()
	bar.DragStart()
	owner.Dispose()

	if bar.Dragging() || !env.Document.Selectable() {
		t.Error("dispose should end the drag")
	}
	if n := env.Window.ListenerCount(); n != 0 {
		t.Errorf("listeners left after dispose: %d", n)
	}
}

func TestContains(t *testing.T) {
	bar, _, owner := mountBar(t, Props{RootSelector: "--sidebar-width"})
	defer owner.Dispose()

	if !bar.Contains(203, 50) || !bar.Contains(195, 50) {
		t.Error("positions within the hit slop should be on the bar")
	}
	if bar.Contains(210, 50) {
		t.Error("position outside the hit slop should miss")
	}
	if pos, ok := bar.Position(); !ok || pos != 200 {
		t.Errorf("Position = %v %v", pos, ok)
	}
}

func TestPx(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"200px", 200, true},
		{" 12.5px ", 12.5, true},
		{"200", 0, false},
		{"wide px", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePx(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePx(%q) = %v %v", tt.in, got, ok)
		}
	}
	if FormatPx(240) != "240px" || FormatPx(0.5) != "0.5px" {
		t.Error("unexpected FormatPx output")
	}
}

func TestStyle(t *testing.T) {
	if s := AxisStyle(AxisX); s == AxisStyle(AxisY) {
		t.Error("axes should have different styles")
	}
	bar, _, owner := mountBar(t, Props{RootSelector: "--sidebar-width"})
	defer owner.Dispose()
	if bar.Style() != AxisStyle(AxisX) {
		t.Error("axis should default to x")
	}
}

func TestAttach(t *testing.T) {
	bar, env, owner := mountBar(t, Props{RootSelector: "--sidebar-width"})
	var detach func()
	reactive.WithOwner(owner, func() {
		detach = bar.Attach()
	})

	env.Window.DispatchPointer(mouse(host.MouseDown, 50, 50))
	if bar.Dragging() {
		t.Fatal("press away from the bar should not drag")
	}

	env.Window.DispatchPointer(mouse(host.MouseDown, 202, 50))
	if !bar.Dragging() {
		t.Fatal("press on the bar should start a drag")
	}
	env.Window.DispatchPointer(mouse(host.MouseMove, 260, 50))
	env.Window.DispatchPointer(mouse(host.MouseUp, 260, 50))
	if got := env.Document.StyleVar("--sidebar-width"); got != "260px" {
		t.Errorf("got %s, want 260px", got)
	}

	detach()
	if n := env.Window.ListenerCount(); n != 0 {
		t.Errorf("listeners left after detach: %d", n)
	}
	owner.Dispose()
}
