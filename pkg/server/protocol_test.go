package server

import (
	"testing"

	"github.com/vango-dev/usekit/internal/errors"
	"github.com/vango-dev/usekit/pkg/host"
)

func TestDecodeClientMessage(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"hello", `{"type":"hello","focused":true,"visibility":"visible","width":800,"height":600}`, false},
		{"focus", `{"type":"focus"}`, false},
		{"visibility", `{"type":"visibility","visibility":"hidden"}`, false},
		{"visibility without state", `{"type":"visibility"}`, true},
		{"resize", `{"type":"resize","width":10,"height":20}`, false},
		{"resize zero", `{"type":"resize","width":0,"height":20}`, true},
		{"pointer", `{"type":"pointer","kind":"mousemove","pageX":1,"pageY":2}`, false},
		{"pointer unknown kind", `{"type":"pointer","kind":"wheel"}`, true},
		{"action", `{"type":"action","name":"refresh"}`, false},
		{"action without name", `{"type":"action"}`, true},
		{"unknown type", `{"type":"scroll"}`, true},
		{"not json", `{`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeClientMessage([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeClientMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && errors.Code(err) != "U020" {
				t.Errorf("expected U020, got %q", errors.Code(err))
			}
		})
	}
}

func TestPointerEvent(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"pointer","kind":"touchmove","touches":[{"pageX":3,"pageY":4}]}`))
	if err != nil {
		t.Fatal(err)
	}
	ev, err := msg.PointerEvent()
	if err != nil {
		t.Fatal(err)
	}
	x, y, ok := ev.Position()
	if ev.Kind != host.TouchMove || !ok || x != 3 || y != 4 {
		t.Errorf("unexpected event %+v (x=%v y=%v ok=%v)", ev, x, y, ok)
	}
}

func TestApplyHello(t *testing.T) {
	win := host.NewWindow(100, 100)
	focused := false
	msg := ClientMessage{Type: MsgHello, Focused: &focused, Visibility: "hidden", Width: 640, Height: 480}
	msg.apply(win)

	if win.Focused() {
		t.Error("window should be blurred")
	}
	if win.Visibility() != host.Hidden {
		t.Errorf("expected hidden, got %s", win.Visibility())
	}
	if w, h := win.InnerSize(); w != 640 || h != 480 {
		t.Errorf("expected 640x480, got %vx%v", w, h)
	}
}

func TestApplyPointer(t *testing.T) {
	win := host.NewWindow(100, 100)
	var got []host.PointerEvent
	win.OnPointer(func(ev host.PointerEvent) { got = append(got, ev) })

	ClientMessage{Type: MsgPointer, Kind: "mousedown", PageX: 5}.apply(win)
	ClientMessage{Type: MsgPointer, Kind: "bogus"}.apply(win)

	if len(got) != 1 || got[0].Kind != host.MouseDown || got[0].PageX != 5 {
		t.Errorf("unexpected pointer events %+v", got)
	}
}
