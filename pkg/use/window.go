package use

import (
	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
)

// UseWindowFocus tracks whether the window has focus.
func UseWindowFocus() *reactive.Ref[bool] {
	win := host.Current().Window
	focused := reactive.NewRef(win.Focused())

	unsubscribe := win.OnEvent(func(ev host.WindowEvent) {
		switch ev {
		case host.EventFocus:
			focused.Set(true)
		case host.EventBlur:
			focused.Set(false)
		}
	})
	reactive.OnUnmounted(unsubscribe)
	return focused
}

// UseVisibility tracks document.visibilityState.
func UseVisibility() *reactive.Ref[host.VisibilityState] {
	win := host.Current().Window
	state := reactive.NewRef(win.Visibility())

	unsubscribe := win.OnEvent(func(ev host.WindowEvent) {
		if ev == host.EventVisibilityChange {
			state.Set(win.Visibility())
		}
	})
	reactive.OnUnmounted(unsubscribe)
	return state
}

// UseVisibilityState reports whether the document is visible.
func UseVisibilityState() *reactive.Ref[bool] {
	win := host.Current().Window
	visible := reactive.NewRef(win.Visibility() == host.Visible)

	unsubscribe := win.OnEvent(func(ev host.WindowEvent) {
		if ev == host.EventVisibilityChange {
			visible.Set(win.Visibility() == host.Visible)
		}
	})
	reactive.OnUnmounted(unsubscribe)
	return visible
}
