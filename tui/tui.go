package tui

import (
	"docchat/config"
	"docchat/services"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
)

type TUIConfig struct {
	Backend Backend
	Loader  services.PreviewLoader
	// Placeholder is the absolute locator shown when a preview cannot load.
	Placeholder string
	Theme       string
}

// Run starts the TUI application
func Run(config TUIConfig) error {
	p := tea.NewProgram(
		initialModel(config, DarkTheme(config.Theme)),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}

func initialModel(config TUIConfig, dark bool) tea.Model {
	shared := newSharedState(config, dark)
	shared.chat = newChatViewModel(shared)
	return shared.chat
}

// DarkTheme resolves a ui.theme setting, probing the terminal for "auto".
func DarkTheme(theme string) bool {
	switch theme {
	case config.ThemeDark:
		return true
	case config.ThemeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}
