package tui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	primary   lipgloss.Color
	secondary lipgloss.Color
	accent    lipgloss.Color
	user      lipgloss.Color
	err       lipgloss.Color
	border    lipgloss.Color
}

var (
	darkPalette = palette{
		primary:   lipgloss.Color("63"),
		secondary: lipgloss.Color("240"),
		accent:    lipgloss.Color("205"),
		user:      lipgloss.Color("#f05340"),
		err:       lipgloss.Color("196"),
		border:    lipgloss.Color("238"),
	}

	lightPalette = palette{
		primary:   lipgloss.Color("25"),
		secondary: lipgloss.Color("245"),
		accent:    lipgloss.Color("161"),
		user:      lipgloss.Color("#c2321f"),
		err:       lipgloss.Color("160"),
		border:    lipgloss.Color("250"),
	}
)

type styles struct {
	header       lipgloss.Style
	item         lipgloss.Style
	selectedItem lipgloss.Style
	dim          lipgloss.Style
	help         lipgloss.Style
	loading      lipgloss.Style
	err          lipgloss.Style
	userPrompt   lipgloss.Style
	botResponse  lipgloss.Style
	sourceLink   lipgloss.Style
	typing       lipgloss.Style
	previewPane  lipgloss.Style
	previewTitle lipgloss.Style
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}

	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.primary),

		item: lipgloss.NewStyle().
			PaddingLeft(2),

		selectedItem: lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(p.accent).
			Bold(true),

		dim: lipgloss.NewStyle().
			Foreground(p.secondary),

		help: lipgloss.NewStyle().
			Foreground(p.secondary).
			Italic(true),

		loading: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true),

		err: lipgloss.NewStyle().
			Foreground(p.err).
			Bold(true),

		userPrompt: lipgloss.NewStyle().
			Foreground(p.user).
			Bold(true),

		botResponse: lipgloss.NewStyle().
			PaddingLeft(2),

		sourceLink: lipgloss.NewStyle().
			Foreground(p.primary).
			Underline(true),

		typing: lipgloss.NewStyle().
			Foreground(p.secondary).
			Italic(true),

		previewPane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),

		previewTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
	}
}

func glamourStyle(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
