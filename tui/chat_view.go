package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docchat/data"
	"docchat/logger"
	"docchat/remote"
	"docchat/services"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/skratchdot/open-golang/open"
)

// header, blank, blank, input, help and status lines
const chatChrome = 6

type chatViewModel struct {
	shared        *sharedState
	input         textinput.Model
	viewport      viewport.Model
	spinner       spinner.Model
	ready         bool
	statusMessage string
}

func newChatViewModel(shared *sharedState) *chatViewModel {
	ti := textinput.New()
	ti.Placeholder = "Ask something about the document..."
	ti.CharLimit = 5000
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	vp := viewport.New(shared.width, max(shared.height-chatChrome, 0))
	vp.YPosition = 0

	return &chatViewModel{
		shared:   shared,
		input:    ti,
		viewport: vp,
		spinner:  sp,
	}
}

func (m *chatViewModel) Init() tea.Cmd {
	logger.Log.Debug("chat view init")

	return tea.Batch(
		textinput.Blink,
		m.listenForStatus(),
		m.shared.loadDatabases(),
	)
}

func (m *chatViewModel) listenForStatus() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-logger.StatusChan
		if !ok {
			return nil
		}
		return statusMsg(msg)
	}
}

func (m *chatViewModel) clearStatusAfterDelay() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return statusMsg("")
	})
}

func (m *chatViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case statusMsg:
		m.statusMessage = string(msg)
		if msg == "" {
			return m, nil
		}
		return m, tea.Batch(
			m.listenForStatus(),
			m.clearStatusAfterDelay(),
		)

	case databasesLoadedMsg:
		m.shared.applyDatabases(msg)

	case queryResultMsg:
		res := services.Result(msg)
		if m.shared.dispatcher.Resolve(res) {
			cmds = append(cmds, m.input.Focus())
		} else {
			logger.Log.Warnw("dropped stale query result", "request", res.RequestID)
		}

	case previewLoadedMsg:
		cmds = append(cmds, m.shared.applyPreview(msg))

	case spinner.TickMsg:
		if m.shared.dispatcher.Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.refresh()
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		model, cmd := m.handleKey(msg)
		m.settle()
		return model, cmd

	case tea.WindowSizeMsg:
		m.shared.width = msg.Width
		m.shared.height = msg.Height
		m.ready = true
		m.layout()
	}

	m.settle()
	return m, tea.Batch(cmds...)
}

func (m *chatViewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "pgup":
		m.viewport.ViewUp()
		return m, nil

	case "pgdown":
		m.viewport.ViewDown()
		return m, nil
	}

	if m.shared.dispatcher.Busy() {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		return m, m.submit()

	case "ctrl+g":
		picker := newDatabaseViewModel(m.shared)
		return picker, tea.Batch(picker.Init(), m.shared.resize())

	case "ctrl+h":
		browser := newTurnBrowserViewModel(m.shared)
		return browser, tea.Batch(browser.Init(), m.shared.resize())

	case "ctrl+o":
		turn, _, ok := m.shared.store.LastWhere(data.Turn.HasImage)
		if !ok {
			logger.Status("No evidence to show yet")
			return m, nil
		}
		m.shared.preview.OpenTurn(turn)
		m.layout()
		return m, m.shared.loadPreview()

	case "esc":
		if _, ok := m.shared.preview.Active(); ok {
			m.shared.preview.Close()
			m.layout()
		}
		return m, nil

	case "ctrl+b":
		m.openInBrowser()
		return m, nil

	case "ctrl+y":
		m.copyLastAnswer()
		return m, nil

	case "ctrl+t":
		m.shared.setTheme(!m.shared.dark)
		m.layout()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input to the dispatcher and, when a request went out,
// returns the command that performs it.
func (m *chatViewModel) submit() tea.Cmd {
	req, outcome := m.shared.dispatcher.Submit(m.input.Value())
	logger.Log.Debugw("submit", "outcome", outcome.String(), "request", req.ID)

	if outcome != services.OutcomeDispatched {
		return nil
	}

	m.input.Reset()
	m.input.Blur()
	return tea.Batch(m.execute(req), m.spinner.Tick)
}

func (m *chatViewModel) execute(req services.Request) tea.Cmd {
	querier := m.shared.config.Backend
	return func() tea.Msg {
		return queryResultMsg(services.Execute(context.Background(), querier, req))
	}
}

func (m *chatViewModel) openInBrowser() {
	locator, ok := m.shared.preview.Locator()
	if !ok {
		logger.Status("No preview open")
		return
	}
	if err := open.Run(locator); err != nil {
		logger.Log.Warnw("open preview in browser", "locator", locator, "error", err)
		logger.Status("Could not open browser")
		return
	}
	logger.Status("Opened preview in browser")
}

func (m *chatViewModel) copyLastAnswer() {
	turn, _, ok := m.shared.store.LastWhere(func(t data.Turn) bool { return !t.IsUser() })
	if !ok {
		logger.Status("Nothing to copy")
		return
	}
	if err := services.CopyToClipboard(services.ClipboardText(turn.Text, false)); err != nil {
		logger.Log.Warnw("copy answer", "error", err)
		logger.Status("Copy failed")
		return
	}
	logger.Status("Answer copied")
}

// settle applies a scroll requested by the store or busy observers once
// the change that triggered it has been committed.
func (m *chatViewModel) settle() {
	if !m.shared.scrollPending {
		return
	}
	m.shared.scrollPending = false
	m.refresh()
	if m.viewport.Height > 0 && m.viewport.Width > 0 {
		m.viewport.GotoBottom()
	}
}

func (m *chatViewModel) layout() {
	width := m.shared.conversationWidth()
	m.viewport.Width = width
	m.viewport.Height = max(m.shared.height-chatChrome, 0)
	m.input.Width = max(width-4, 10)
	m.shared.resizeRenderer(m.shared.markdownWidth())
	m.refresh()
}

func (m *chatViewModel) refresh() {
	m.viewport.SetContent(m.renderConversation())
}

func (m *chatViewModel) renderConversation() string {
	st := m.shared.styles
	turns := m.shared.store.Turns()

	var b strings.Builder

	if len(turns) == 0 {
		b.WriteString(st.dim.Render("Pick a database with ctrl+g and ask a question."))
		b.WriteString("\n")
	}

	for _, t := range turns {
		if t.IsUser() {
			line := st.userPrompt.Render(fmt.Sprintf("You: %s", t.Text))
			b.WriteString(lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, line))
			b.WriteString("\n\n")
			continue
		}

		b.WriteString(st.botResponse.Render(strings.TrimRight(m.shared.renderMarkdown(t.Text), "\n")))
		b.WriteString("\n")
		if t.HasImage() {
			b.WriteString(st.botResponse.Render(st.sourceLink.Render("[Show source]")))
			b.WriteString("\n")
		}
		if t.HasSource() {
			b.WriteString(st.botResponse.Render(st.dim.Render("Source: " + t.Source)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.shared.dispatcher.Busy() {
		b.WriteString(st.typing.Render(m.spinner.View() + " Bot is typing..."))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *chatViewModel) renderPreview(height int) string {
	st := m.shared.styles
	p := m.shared.preview
	width := m.shared.previewWidth()

	reference, _ := p.Active()
	locator, _ := p.Locator()

	var status string
	switch p.Status() {
	case services.PreviewLoading:
		status = st.loading.Render("Loading preview...")
	case services.PreviewLoaded:
		status = describeImage(p.Image())
	case services.PreviewFallback:
		status = st.dim.Render("Evidence unavailable, showing placeholder")
		if img := p.Image(); img.Format != "" {
			status += "\n" + describeImage(img)
		}
	case services.PreviewUnavailable:
		status = st.err.Render("Preview unavailable")
	}

	body := strings.Join([]string{
		st.previewTitle.Render("Evidence"),
		reference,
		st.dim.Render(locator),
		"",
		status,
		"",
		st.help.Render("esc close • ctrl+b browser"),
	}, "\n")

	return st.previewPane.
		Width(max(width-2, 10)).
		Height(max(height-2, 1)).
		Render(body)
}

func describeImage(img remote.PreviewImage) string {
	return fmt.Sprintf("%s image, %dx%d, %d bytes", strings.ToUpper(img.Format), img.Width, img.Height, img.Size)
}

func (m *chatViewModel) View() string {
	if !m.ready {
		return m.shared.styles.loading.Render("Starting...")
	}

	st := m.shared.styles

	database := "none"
	switch {
	case !m.shared.databasesLoaded:
		database = "loading..."
	case m.shared.databasesErr != nil:
		database = "unavailable"
	default:
		if id, ok := m.shared.selector.Selected(); ok {
			database = id
		}
	}

	theme := "light"
	if m.shared.dark {
		theme = "dark"
	}

	header := fmt.Sprintf("%s%s",
		st.header.Render("Document Chat"),
		st.dim.Render(fmt.Sprintf(" [database: %s] [%s]", database, theme)),
	)

	main := m.viewport.View()
	if _, ok := m.shared.preview.Active(); ok {
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, m.renderPreview(m.viewport.Height))
	}

	helpText := "enter: send • ctrl+g: database • ctrl+h: turns • ctrl+o: evidence • ctrl+y: copy • ctrl+t: theme • pgup/pgdown: scroll • ctrl+c: quit"
	if m.shared.dispatcher.Busy() {
		helpText = "waiting for answer • pgup/pgdown: scroll • ctrl+c: quit"
	}

	status := ""
	if m.statusMessage != "" {
		status = st.dim.Render(m.statusMessage)
	}

	return fmt.Sprintf(
		"%s\n\n%s\n\n%s\n%s\n%s",
		header,
		main,
		m.input.View(),
		st.help.Render(helpText),
		status,
	)
}
