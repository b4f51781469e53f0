package tui

import (
	"fmt"
	"strings"

	"docchat/data"
	"docchat/logger"
	"docchat/services"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type browserMode int

const (
	browserCompactMode browserMode = iota
	browserExpandedMode
	browserCodeViewMode
)

// header, blank, blank and help lines
const browserChrome = 4

type turnBrowserViewModel struct {
	shared      *sharedState
	turns       []data.Turn
	viewport    viewport.Model
	cursor      int
	mode        browserMode
	expandedIdx int // -1 when nothing is expanded
}

func newTurnBrowserViewModel(shared *sharedState) *turnBrowserViewModel {
	vp := viewport.New(shared.width, max(shared.height-browserChrome, 0))
	vp.YPosition = 0

	turns := shared.store.Turns()

	return &turnBrowserViewModel{
		shared:      shared,
		turns:       turns,
		viewport:    vp,
		cursor:      max(len(turns)-1, 0),
		mode:        browserCompactMode,
		expandedIdx: -1,
	}
}

func (m *turnBrowserViewModel) Init() tea.Cmd {
	m.updateContent()
	return nil
}

func (m *turnBrowserViewModel) scrollToSelection() {
	if len(m.turns) == 0 {
		return
	}

	// each turn takes 3 lines in compact mode
	linesPerTurn := 3
	cursorLine := m.cursor * linesPerTurn

	top := m.viewport.YOffset
	bottom := top + m.viewport.Height

	if cursorLine < top {
		m.viewport.SetYOffset(cursorLine)
	}

	cursorBottom := cursorLine + linesPerTurn
	if cursorBottom > bottom {
		m.viewport.SetYOffset(max(cursorBottom-m.viewport.Height, 0))
	}
}

func (m *turnBrowserViewModel) selected() (data.Turn, bool) {
	if m.cursor < 0 || m.cursor >= len(m.turns) {
		return data.Turn{}, false
	}
	return m.turns[m.cursor], true
}

func (m *turnBrowserViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == browserCodeViewMode {
			switch msg.String() {
			case "esc", "q", "c":
				m.mode = browserExpandedMode
				m.updateContent()
				return m, nil
			case "y":
				m.copy(true)
				return m, nil
			}
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

		if m.mode == browserExpandedMode {
			switch msg.String() {
			case "esc", "q":
				m.mode = browserCompactMode
				m.expandedIdx = -1
				m.updateContent()
				m.scrollToSelection()
				return m, nil
			case "c":
				m.mode = browserCodeViewMode
				m.updateContent()
				return m, nil
			case "y":
				m.copy(false)
				return m, nil
			case "enter", "o":
				return m.openPreview()
			}
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

		switch msg.String() {
		case "esc", "q":
			return m.shared.chat, m.shared.resize()

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.updateContent()
				m.scrollToSelection()
			}

		case "down", "j":
			if m.cursor < len(m.turns)-1 {
				m.cursor++
				m.updateContent()
				m.scrollToSelection()
			}

		case "g":
			m.cursor = 0
			m.updateContent()
			m.scrollToSelection()

		case "G":
			m.cursor = max(len(m.turns)-1, 0)
			m.updateContent()
			m.scrollToSelection()

		case "enter":
			return m.openPreview()

		case "e":
			if _, ok := m.selected(); ok {
				m.expandedIdx = m.cursor
				m.mode = browserExpandedMode
				m.updateContent()
				m.viewport.GotoTop()
			}

		case "y":
			m.copy(false)
		}

	case statusMsg, previewLoadedMsg, databasesLoadedMsg:
		// owned by the chat view
		_, cmd := m.shared.chat.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.shared.width = msg.Width
		m.shared.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-browserChrome, 0)
		m.updateContent()
		m.scrollToSelection()
	}

	return m, vpCmd
}

// openPreview shows the evidence of the turn under the cursor in the chat
// view. Turns without evidence are expanded instead.
func (m *turnBrowserViewModel) openPreview() (tea.Model, tea.Cmd) {
	turn, ok := m.selected()
	if !ok {
		return m, nil
	}

	if !m.shared.preview.OpenTurn(turn) {
		if m.mode == browserCompactMode {
			m.expandedIdx = m.cursor
			m.mode = browserExpandedMode
			m.updateContent()
		}
		return m, nil
	}

	return m.shared.chat, tea.Batch(m.shared.resize(), m.shared.loadPreview())
}

func (m *turnBrowserViewModel) copy(codeOnly bool) {
	turn, ok := m.selected()
	if !ok {
		return
	}
	if err := services.CopyToClipboard(services.ClipboardText(turn.Text, codeOnly)); err != nil {
		logger.Log.Warnw("copy turn", "error", err)
		logger.Status("Copy failed")
		return
	}
	logger.Status("Copied")
}

func (m *turnBrowserViewModel) updateContent() {
	if len(m.turns) == 0 {
		m.viewport.SetContent(m.shared.styles.dim.Render("No turns yet"))
		return
	}

	switch m.mode {
	case browserCompactMode:
		m.viewport.SetContent(m.renderCompactMode())
	case browserExpandedMode:
		m.viewport.SetContent(m.renderExpandedMode())
	case browserCodeViewMode:
		m.viewport.SetContent(m.renderCodeViewMode())
	}
}

func truncate(text string, width int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if width < 4 || len(runes) <= width {
		return text
	}
	return string(runes[:width-3]) + "..."
}

func speaker(t data.Turn) string {
	if t.IsUser() {
		return "You:"
	}
	return "Bot:"
}

func (m *turnBrowserViewModel) renderCompactMode() string {
	st := m.shared.styles
	var b strings.Builder

	for i, t := range m.turns {
		cursor := "  "
		style := st.item
		if i == m.cursor {
			cursor = "▶ "
			style = st.selectedItem
		}

		evidence := ""
		if t.HasImage() {
			evidence = st.sourceLink.Render(" [source]")
		}

		line := fmt.Sprintf("%s[%d] %s", cursor, i+1, st.dim.Render(speaker(t)))
		b.WriteString(style.Render(line))
		b.WriteString(evidence)
		b.WriteString("\n")
		b.WriteString(style.Render("    " + truncate(t.Text, m.viewport.Width-8)))
		b.WriteString("\n\n")
	}

	return b.String()
}

func (m *turnBrowserViewModel) renderExpandedMode() string {
	st := m.shared.styles
	if m.expandedIdx < 0 || m.expandedIdx >= len(m.turns) {
		return "Invalid turn index"
	}

	t := m.turns[m.expandedIdx]
	var b strings.Builder

	b.WriteString(st.header.Render(fmt.Sprintf("Turn %d of %d", m.expandedIdx+1, len(m.turns))))
	b.WriteString("\n\n")

	if code := services.ExtractCodeBlocks(t.Text); len(code) > 0 {
		b.WriteString(st.dim.Render(fmt.Sprintf("Contains %d code block(s), press 'c' to view", len(code))))
		b.WriteString("\n\n")
	}

	if t.IsUser() {
		b.WriteString(st.userPrompt.Render("Question:"))
		b.WriteString("\n")
		b.WriteString(t.Text)
		return b.String()
	}

	b.WriteString(st.botResponse.Render("Answer:"))
	b.WriteString("\n")
	b.WriteString(m.shared.renderMarkdown(t.Text))

	if t.HasSource() {
		b.WriteString(st.dim.Render("Source: " + t.Source))
		b.WriteString("\n")
	}
	if t.HasImage() {
		b.WriteString(st.sourceLink.Render("[Show source]"))
		b.WriteString(st.dim.Render(" press enter to open " + t.Image))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *turnBrowserViewModel) renderCodeViewMode() string {
	st := m.shared.styles
	if m.expandedIdx < 0 || m.expandedIdx >= len(m.turns) {
		return "Invalid turn index"
	}

	code := services.ExtractCodeBlocks(m.turns[m.expandedIdx].Text)

	var b strings.Builder
	b.WriteString(st.header.Render(fmt.Sprintf("Code Blocks - Turn %d", m.expandedIdx+1)))
	b.WriteString("\n\n")

	if len(code) == 0 {
		b.WriteString(st.dim.Render("No code blocks found"))
		return b.String()
	}

	for i, block := range code {
		b.WriteString(st.dim.Render(fmt.Sprintf("─── Block %d of %d ───", i+1, len(code))))
		b.WriteString("\n")
		b.WriteString(block)
		b.WriteString("\n\n")
	}

	return b.String()
}

func (m *turnBrowserViewModel) View() string {
	st := m.shared.styles

	var help, label string
	switch m.mode {
	case browserCompactMode:
		help = "↑/↓/j/k navigate • enter source • e expand • y copy • g top • G bottom • esc back"
		label = fmt.Sprintf("%d turns", len(m.turns))
	case browserExpandedMode:
		help = "enter source • c view code • y copy • esc back"
		label = fmt.Sprintf("Turn %d", m.expandedIdx+1)
	case browserCodeViewMode:
		help = "y copy code • esc back"
		label = fmt.Sprintf("Code View - Turn %d", m.expandedIdx+1)
	}

	return fmt.Sprintf(
		"%s %s\n\n%s\n\n%s",
		st.header.Render("Conversation"),
		st.dim.Render(fmt.Sprintf("[%s]", label)),
		m.viewport.View(),
		st.help.Render(help),
	)
}
