package demo

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
	"github.com/vango-dev/usekit/pkg/use/swr"
)

// Options configures the demo.
type Options struct {
	// Env hosts the stories. Default: host.NewEnv().
	Env *host.Env

	// SWR is the base configuration of the useSWR story. Default:
	// swr.DefaultConfig().
	SWR *swr.Config

	// PumpInterval is how often the host loop is drained (default: 50ms).
	PumpInterval time.Duration

	// Latency simulates slow fetches in the async and SWR stories
	// (default: 800ms).
	Latency time.Duration
}

// pumpMsg drains the host loop.
type pumpMsg struct{}

// Model is the root Bubble Tea model.
type Model struct {
	env   *host.Env
	owner *reactive.Owner
	pump  time.Duration

	stories []story
	current int

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	styles  styles

	width  int
	height int
}

// New mounts every story and returns the model.
func New(opts Options) *Model {
	env := opts.Env
	if env == nil {
		env = host.NewEnv()
	}
	if opts.PumpInterval <= 0 {
		opts.PumpInterval = 50 * time.Millisecond
	}
	if opts.Latency <= 0 {
		opts.Latency = 800 * time.Millisecond
	}
	swrConfig := swr.DefaultConfig()
	if opts.SWR != nil {
		swrConfig = *opts.SWR
	}

	m := &Model{
		env:     env,
		owner:   reactive.NewOwner(nil),
		pump:    opts.PumpInterval,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:  defaultStyles(),
	}
	host.Provide(m.owner, env)

	mount := func(setup func() story) {
		child := reactive.NewOwner(m.owner)
		reactive.WithOwner(child, func() {
			m.stories = append(m.stories, setup())
		})
	}
	mount(func() story { return newTimeoutStory(time.Second) })
	mount(func() story { return newAsyncStory(env, opts.Latency) })
	mount(func() story { return newResizeStory(12, 60) })
	mount(func() story { return newSWRStory(env, swrConfig, opts.Latency) })
	mount(func() story { return newStorageStory(time.Second) })

	m.owner.Mount()
	return m
}

// Close disposes every story.
func (m *Model) Close() {
	m.owner.Dispose()
	m.env.Loop.Flush()
}

func (m *Model) pumpCmd() tea.Cmd {
	return tea.Tick(m.pump, func(time.Time) tea.Msg {
		return pumpMsg{}
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.pumpCmd(), m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pumpMsg:
		m.env.Loop.Flush()
		return m, m.pumpCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.env.Window.Resize(float64(msg.Width), float64(msg.Height))

	case tea.FocusMsg:
		m.env.Window.Focus()

	case tea.BlurMsg:
		m.env.Window.Blur()

	case tea.MouseMsg:
		if ev, ok := pointerEvent(msg); ok {
			m.env.Window.DispatchPointer(ev)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Next):
			m.current = (m.current + 1) % len(m.stories)
		case key.Matches(msg, m.keys.Prev):
			m.current = (m.current + len(m.stories) - 1) % len(m.stories)
		default:
			m.stories[m.current].handleKey(msg, m.keys)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	m.env.Loop.Flush()
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	st := m.styles
	tabs := make([]string, len(m.stories))
	for i, s := range m.stories {
		if i == m.current {
			tabs[i] = st.TabOn.Render(s.title())
		} else {
			tabs[i] = st.Tab.Render(s.title())
		}
	}

	current := m.stories[m.current]
	body := current.view(viewContext{
		styles:  st,
		width:   m.width,
		height:  m.height,
		spinner: m.spinner.View(),
	})

	var b strings.Builder
	b.WriteString(st.Title.Render("usekit"))
	b.WriteString("  ")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")
	b.WriteString(st.Panel.Render(body))
	b.WriteString("\n")
	b.WriteString(st.Muted.Render(current.hint()))
	b.WriteString(st.HelpLine.Render(m.help.View(m.keys)))
	return b.String()
}

// pointerEvent maps a terminal mouse event to a host pointer event. Cell
// coordinates stand in for page pixels.
func pointerEvent(msg tea.MouseMsg) (host.PointerEvent, bool) {
	ev := host.PointerEvent{PageX: float64(msg.X), PageY: float64(msg.Y)}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return ev, false
		}
		ev.Kind = host.MouseDown
	case tea.MouseActionMotion:
		ev.Kind = host.MouseMove
	case tea.MouseActionRelease:
		ev.Kind = host.MouseUp
	default:
		return ev, false
	}
	return ev, true
}
