package server

import (
	"encoding/json"
	"fmt"

	"github.com/vango-dev/usekit/internal/errors"
	"github.com/vango-dev/usekit/pkg/host"
)

// Client message types.
const (
	MsgHello      = "hello"
	MsgFocus      = "focus"
	MsgBlur       = "blur"
	MsgVisibility = "visibility"
	MsgResize     = "resize"
	MsgPointer    = "pointer"
	MsgAction     = "action"
)

// Server message types.
const (
	MsgWelcome  = "welcome"
	MsgStyleVar = "styleVar"
	MsgError    = "error"
)

// ClientMessage is a message sent by the page.
type ClientMessage struct {
	Type       string      `json:"type"`
	Focused    *bool       `json:"focused,omitempty"`
	Visibility string      `json:"visibility,omitempty"`
	Width      float64     `json:"width,omitempty"`
	Height     float64     `json:"height,omitempty"`
	Kind       string      `json:"kind,omitempty"`
	PageX      float64     `json:"pageX,omitempty"`
	PageY      float64     `json:"pageY,omitempty"`
	Touches    []WireTouch `json:"touches,omitempty"`
	Name       string      `json:"name,omitempty"`
}

// WireTouch is a touch point on the wire.
type WireTouch struct {
	PageX float64 `json:"pageX"`
	PageY float64 `json:"pageY"`
}

// Message is a message sent to the page.
type Message struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Name    string `json:"name,omitempty"`
	Value   string `json:"value,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

var pointerKinds = map[string]host.PointerKind{
	"mousedown":  host.MouseDown,
	"mousemove":  host.MouseMove,
	"mouseup":    host.MouseUp,
	"touchstart": host.TouchStart,
	"touchmove":  host.TouchMove,
	"touchend":   host.TouchEnd,
}

// DecodeClientMessage parses and validates a page message.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, errors.New("U020").WithDetail("message is not JSON").Wrap(err)
	}

	switch msg.Type {
	case MsgHello, MsgFocus, MsgBlur:
	case MsgVisibility:
		if msg.Visibility == "" {
			return msg, errors.New("U020").WithDetail("visibility message without state")
		}
	case MsgResize:
		if msg.Width <= 0 || msg.Height <= 0 {
			return msg, errors.New("U020").WithDetailf("invalid size %vx%v", msg.Width, msg.Height)
		}
	case MsgPointer:
		if _, ok := pointerKinds[msg.Kind]; !ok {
			return msg, errors.New("U020").WithDetailf("unknown pointer kind %q", msg.Kind)
		}
	case MsgAction:
		if msg.Name == "" {
			return msg, errors.New("U020").WithDetail("action message without name")
		}
	default:
		return msg, errors.New("U020").WithDetailf("unknown message type %q", msg.Type)
	}
	return msg, nil
}

// PointerEvent converts a pointer message to a host event.
func (m ClientMessage) PointerEvent() (host.PointerEvent, error) {
	kind, ok := pointerKinds[m.Kind]
	if !ok {
		return host.PointerEvent{}, fmt.Errorf("unknown pointer kind %q", m.Kind)
	}
	ev := host.PointerEvent{Kind: kind, PageX: m.PageX, PageY: m.PageY}
	for _, t := range m.Touches {
		ev.Touches = append(ev.Touches, host.Touch{PageX: t.PageX, PageY: t.PageY})
	}
	return ev, nil
}

// apply drives win with the message. It must run on the session loop.
func (m ClientMessage) apply(win *host.Window) {
	switch m.Type {
	case MsgHello:
		if m.Width > 0 && m.Height > 0 {
			win.Resize(m.Width, m.Height)
		}
		if m.Visibility != "" {
			win.SetVisibility(host.ParseVisibility(m.Visibility))
		}
		if m.Focused != nil {
			if *m.Focused {
				win.Focus()
			} else {
				win.Blur()
			}
		}
	case MsgFocus:
		win.Focus()
	case MsgBlur:
		win.Blur()
	case MsgVisibility:
		win.SetVisibility(host.ParseVisibility(m.Visibility))
	case MsgResize:
		win.Resize(m.Width, m.Height)
	case MsgPointer:
		if ev, err := m.PointerEvent(); err == nil {
			win.DispatchPointer(ev)
		}
	}
}
