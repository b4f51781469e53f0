package tui

import (
	"fmt"
	"strings"

	"docchat/logger"

	tea "github.com/charmbracelet/bubbletea"
)

type databaseViewModel struct {
	shared  *sharedState
	cursor  int
	loading bool
}

func newDatabaseViewModel(shared *sharedState) *databaseViewModel {
	cursor := shared.selector.Index()
	if cursor < 0 {
		cursor = 0
	}

	return &databaseViewModel{
		shared:  shared,
		cursor:  cursor,
		loading: !shared.databasesLoaded,
	}
}

func (m *databaseViewModel) Init() tea.Cmd {
	return nil
}

func (m *databaseViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}

		available := m.shared.selector.Available()

		switch msg.String() {
		case "esc", "q":
			return m.back()

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(available)-1 {
				m.cursor++
			}

		case "enter":
			if m.cursor < len(available) {
				id := available[m.cursor]
				m.shared.selector.Select(id)
				logger.Log.Infow("database selected", "database", id)
				logger.Status(fmt.Sprintf("Using database %s", id))
				return m.back()
			}

		case "r":
			m.loading = true
			return m, m.shared.loadDatabases()
		}

	case databasesLoadedMsg:
		m.shared.applyDatabases(msg)
		m.loading = false
		m.cursor = max(m.shared.selector.Index(), 0)

	case statusMsg, previewLoadedMsg:
		// owned by the chat view, which keeps listening for them
		_, cmd := m.shared.chat.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.shared.width = msg.Width
		m.shared.height = msg.Height
	}

	return m, nil
}

func (m *databaseViewModel) back() (tea.Model, tea.Cmd) {
	return m.shared.chat, m.shared.resize()
}

func (m *databaseViewModel) View() string {
	st := m.shared.styles

	if m.loading {
		return st.loading.Render("Loading databases...")
	}

	var b strings.Builder

	b.WriteString(st.header.Render("Databases"))
	b.WriteString("\n\n")

	available := m.shared.selector.Available()
	selected, _ := m.shared.selector.Selected()

	switch {
	case m.shared.databasesErr != nil:
		b.WriteString(st.err.Render(fmt.Sprintf("Error: %v", m.shared.databasesErr)))
		b.WriteString("\n")
	case len(available) == 0:
		b.WriteString(st.dim.Render("No databases found."))
		b.WriteString("\n")
	}

	for i, id := range available {
		cursor := " "
		style := st.item

		if i == m.cursor {
			cursor = ">"
			style = st.selectedItem
		}

		line := fmt.Sprintf("%s %s", cursor, id)
		if id == selected {
			line += " ✓"
		}

		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(st.help.Render("↑/k up • ↓/j down • enter select • r refresh • esc back"))

	return b.String()
}
