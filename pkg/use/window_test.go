package use

import (
	"testing"

	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
)

func TestUseWindowFocus(t *testing.T) {
	env, _ := newTestEnv()
	var focused *reactive.Ref[bool]
	owner := setup(env, func() {
		focused = UseWindowFocus()
	})
	owner.Mount()

	if !focused.Peek() {
		t.Fatal("window starts focused")
	}
	env.Window.Blur()
	if focused.Peek() {
		t.Error("expected blur to clear focus")
	}
	env.Window.Focus()
	if !focused.Peek() {
		t.Error("expected focus")
	}

	owner.Dispose()
	if n := env.Window.ListenerCount(); n != 0 {
		t.Errorf("listeners left after dispose: %d", n)
	}
	env.Window.Blur()
	if !focused.Peek() {
		t.Error("disposed hook should not react")
	}
}

func TestUseVisibilityState(t *testing.T) {
	tests := []struct {
		state   host.VisibilityState
		visible bool
	}{
		{host.Hidden, false},
		{host.Prerender, false},
		{host.Visible, true},
	}

	env, _ := newTestEnv()
	var (
		visible *reactive.Ref[bool]
		raw     *reactive.Ref[host.VisibilityState]
	)
	owner := setup(env, func() {
		visible = UseVisibilityState()
		raw = UseVisibility()
	})
	defer owner.Dispose()

	for _, tt := range tests {
		env.Window.SetVisibility(tt.state)
		if visible.Peek() != tt.visible {
			t.Errorf("%s: visible = %v", tt.state, visible.Peek())
		}
		if raw.Peek() != tt.state {
			t.Errorf("%s: raw = %s", tt.state, raw.Peek())
		}
	}
}
