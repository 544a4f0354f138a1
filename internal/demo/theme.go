package demo

import "github.com/charmbracelet/lipgloss"

// styles are the lipgloss styles used by the views.
type styles struct {
	Title    lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Panel    lipgloss.Style
	Sidebar  lipgloss.Style
	Bar      lipgloss.Style
	BarOn    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Danger   lipgloss.Style
	HelpLine lipgloss.Style
}

func defaultStyles() styles {
	const (
		accent  = "#bd93f9"
		text    = "#f8f8f2"
		muted   = "#6272a4"
		surface = "#282a36"
		success = "#50fa7b"
		warning = "#f1fa8c"
		danger  = "#ff5555"
	)
	return styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accent)),
		Tab: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color(muted)),
		TabOn: lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color(surface)).
			Background(lipgloss.Color(accent)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(muted)).
			Padding(0, 1),
		Sidebar: lipgloss.NewStyle().
			Background(lipgloss.Color(surface)).
			Foreground(lipgloss.Color(text)),
		Bar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(muted)),
		BarOn: lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)),
		Label: lipgloss.NewStyle().
			Width(14).
			Foreground(lipgloss.Color(muted)),
		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color(text)),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(muted)),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(success)),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(warning)),
		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(danger)),
		HelpLine: lipgloss.NewStyle().
			MarginTop(1),
	}
}

// row renders a label/value line.
func (s styles) row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.Label.Render(label), s.Value.Render(value))
}
