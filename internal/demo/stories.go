package demo

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
	"github.com/vango-dev/usekit/pkg/use"
	"github.com/vango-dev/usekit/pkg/use/swr"
	"github.com/vango-dev/usekit/pkg/widgets/resizebar"
)

// story is one demo component. handleKey and view run on the Bubble Tea
// goroutine, which also drains the host loop.
type story interface {
	title() string
	hint() string
	handleKey(msg tea.KeyMsg, keys keyMap)
	view(vc viewContext) string
}

// viewContext carries what a story needs to render.
type viewContext struct {
	styles  styles
	width   int
	height  int
	spinner string
}

// timeoutStory counts ticks of a self-rearming UseTimeoutFn.
type timeoutStory struct {
	interval time.Duration
	count    *reactive.Ref[int]
	ready    *reactive.Ref[bool]
	running  *reactive.Ref[bool]
	clear    func()
	runAgain func()
}

func newTimeoutStory(interval time.Duration) *timeoutStory {
	s := &timeoutStory{
		interval: interval,
		count:    reactive.NewRef(0),
		running:  reactive.NewRef(true),
	}
	s.clear, s.runAgain, s.ready = use.UseTimeoutFn(func() {
		s.count.Update(func(n int) int { return n + 1 })
		s.runAgain()
	}, interval)
	return s
}

func (s *timeoutStory) title() string { return "useTimeoutFn" }

func (s *timeoutStory) hint() string {
	return "enter: run again  s: stop"
}

func (s *timeoutStory) handleKey(msg tea.KeyMsg, keys keyMap) {
	switch {
	case key.Matches(msg, keys.Primary):
		s.running.Set(true)
		s.runAgain()
	case key.Matches(msg, keys.Secondary):
		s.running.Set(false)
		s.clear()
	}
}

func (s *timeoutStory) view(vc viewContext) string {
	st := vc.styles
	status := st.Success.Render("running")
	if !s.running.Peek() {
		status = st.Warning.Render("stopped")
	}
	return strings.Join([]string{
		st.row("interval", s.interval.String()),
		st.row("count", fmt.Sprint(s.count.Peek())),
		st.row("ready", fmt.Sprint(s.ready.Peek())),
		st.row("status", status),
	}, "\n")
}

// asyncStory runs a slow lookup through UseAsyncState. Every third run
// fails.
type asyncStory struct {
	delay time.Duration
	state *use.AsyncState[string]
	runs  int
}

func newAsyncStory(env *host.Env, delay time.Duration) *asyncStory {
	s := &asyncStory{delay: delay}
	var calls atomic.Int64
	s.state = use.UseAsyncState(func(ctx context.Context) (string, error) {
		n := calls.Add(1)
		select {
		case <-env.Clock.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if n%3 == 0 {
			return "", fmt.Errorf("lookup %d failed", n)
		}
		return env.Now().Format("15:04:05.000"), nil
	}, use.Immediate(false))
	return s
}

func (s *asyncStory) title() string { return "useAsyncState" }

func (s *asyncStory) hint() string { return "enter: run" }

func (s *asyncStory) handleKey(msg tea.KeyMsg, keys keyMap) {
	if key.Matches(msg, keys.Primary) {
		s.runs++
		s.state.Run()
	}
}

func (s *asyncStory) view(vc viewContext) string {
	st := vc.styles
	state := string(s.state.State.Peek())
	switch s.state.State.Peek() {
	case use.StatusPending:
		if s.runs > 0 {
			state = vc.spinner + " " + state
		}
	case use.StatusFulfilled:
		state = st.Success.Render(state)
	case use.StatusRejected:
		state = st.Danger.Render(state)
	}
	errText := "-"
	if err := s.state.Error.Peek(); err != nil {
		errText = st.Danger.Render(err.Error())
	}
	data := s.state.Data.Peek()
	if data == "" {
		data = "-"
	}
	return strings.Join([]string{
		st.row("state", state),
		st.row("data", data),
		st.row("error", errText),
		st.row("runs", fmt.Sprint(s.runs)),
	}, "\n")
}

// resizeStory renders a sidebar whose width is a style variable driven by
// a resize bar. Drag the bar with the mouse, or nudge it with the arrows.
type resizeStory struct {
	bar *resizebar.Bar
	min float64
	max float64
}

const (
	sidebarVar = "--sidebar-width"

	// panelInset is the border and padding left of the sidebar.
	panelInset = 2
)

func newResizeStory(minWidth, maxWidth float64) *resizeStory {
	s := &resizeStory{min: minWidth, max: maxWidth}
	s.bar = resizebar.New(resizebar.Props{
		Axis: resizebar.AxisX,
		Bounds: &resizebar.Bounds{
			Min: resizebar.Fixed(minWidth),
			Max: resizebar.Fixed(maxWidth),
		},
		RootSelector: sidebarVar,
	})
	if _, ok := s.bar.Position(); !ok {
		s.bar.Value().Set(resizebar.FormatPx(minWidth * 2))
	}
	s.bar.Attach()
	return s
}

func (s *resizeStory) title() string { return "resizebar" }

func (s *resizeStory) hint() string { return "drag the bar  ←/→: resize" }

func (s *resizeStory) handleKey(msg tea.KeyMsg, keys keyMap) {
	pos, ok := s.bar.Position()
	if !ok {
		pos = s.min
	}
	switch {
	case key.Matches(msg, keys.Left):
		pos--
	case key.Matches(msg, keys.Right):
		pos++
	default:
		return
	}
	if pos > s.min && pos < s.max {
		s.bar.Value().Set(resizebar.FormatPx(pos))
	}
}

func (s *resizeStory) view(vc viewContext) string {
	st := vc.styles
	pos, ok := s.bar.Position()
	if !ok {
		pos = s.min
	}
	width := int(pos) - panelInset
	if width < 1 {
		width = 1
	}
	height := vc.height - 8
	if height < 3 {
		height = 3
	}
	sidebar := st.Sidebar.
		Width(width).
		Height(height).
		Render(fmt.Sprintf("%s: %s", sidebarVar, s.bar.Value().Peek()))

	barStyle := st.Bar
	if s.bar.Dragging() {
		barStyle = st.BarOn
	}
	bar := barStyle.Render(strings.TrimSuffix(strings.Repeat("┃\n", height), "\n"))

	main := st.Muted.Render(fmt.Sprintf("bounds (%v, %v)", s.min, s.max))
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, bar, " ", main)
}

// swrStory shows a UseSWR instance over a simulated slow source, plus
// the focus and visibility it revalidates on.
type swrStory struct {
	env     *host.Env
	state   *swr.SWR[string]
	doFetch func()
	focused *reactive.Ref[bool]
	visible *reactive.Ref[bool]
	fetches int
}

func newSWRStory(env *host.Env, cfg swr.Config, latency time.Duration) *swrStory {
	s := &swrStory{env: env}
	fetch := func(ctx context.Context) (string, error) {
		select {
		case <-env.Clock.After(latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return "server time " + env.Now().Format("15:04:05"), nil
	}
	s.doFetch, s.state = swr.UseSWR("demo:time", fetch,
		swr.WithConfig(cfg),
		swr.OnSuccess(func(string, string, *swr.Config) { s.fetches++ }),
	)
	s.focused = use.UseWindowFocus()
	s.visible = use.UseVisibilityState()
	return s
}

func (s *swrStory) title() string { return "useSWR" }

func (s *swrStory) hint() string { return "enter: fetch  (refocus the terminal to revalidate)" }

func (s *swrStory) handleKey(msg tea.KeyMsg, keys keyMap) {
	if key.Matches(msg, keys.Primary) {
		s.doFetch()
	}
}

func (s *swrStory) view(vc viewContext) string {
	st := vc.styles
	data := s.state.Data.Peek()
	if data == "" {
		data = "-"
	}
	age := "never"
	if cached := s.state.CachedTime(); cached > 0 {
		age = (time.Duration(s.env.NowMillis()-cached) * time.Millisecond).Round(time.Second).String()
	}
	errText := "-"
	if err := s.state.Error.Peek(); err != nil {
		errText = st.Danger.Render(err.Error())
	}
	return strings.Join([]string{
		st.row("key", s.state.Key()),
		st.row("data", data),
		st.row("reason", string(s.state.Reason.Peek())),
		st.row("cached", age),
		st.row("fetches", fmt.Sprint(s.fetches)),
		st.row("error", errText),
		st.row("focused", fmt.Sprint(s.focused.Peek())),
		st.row("visible", fmt.Sprint(s.visible.Peek())),
	}, "\n")
}

// storageStory persists a counter with UseLocalStorage and throttles
// presses.
type storageStory struct {
	count     *reactive.Ref[int]
	presses   int
	throttled int
	throttle  *use.Throttled
}

func newStorageStory(wait time.Duration) *storageStory {
	s := &storageStory{
		count: use.UseLocalStorage("usekit.demo.count", 0),
	}
	s.throttle = use.Throttle(func() { s.throttled++ }, wait)
	reactive.OnUnmounted(s.throttle.Cancel)
	return s
}

func (s *storageStory) title() string { return "useLocalStorage" }

func (s *storageStory) hint() string { return "←/→: change stored count  enter: throttled press" }

func (s *storageStory) handleKey(msg tea.KeyMsg, keys keyMap) {
	switch {
	case key.Matches(msg, keys.Left):
		s.count.Update(func(n int) int { return n - 1 })
	case key.Matches(msg, keys.Right):
		s.count.Update(func(n int) int { return n + 1 })
	case key.Matches(msg, keys.Primary):
		s.presses++
		s.throttle.Call()
	}
}

func (s *storageStory) view(vc viewContext) string {
	st := vc.styles
	return strings.Join([]string{
		st.row("stored count", fmt.Sprint(s.count.Peek())),
		st.row("presses", fmt.Sprint(s.presses)),
		st.row("throttled", fmt.Sprint(s.throttled)),
	}, "\n")
}
