package tui

import (
	"context"

	"docchat/data"
	"docchat/logger"
	"docchat/remote"
	"docchat/services"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// Backend is the remote service as seen by the views.
type Backend interface {
	services.Querier
	services.DatabaseLister
	PreviewURL(reference string) string
}

// Shared state across views
type sharedState struct {
	config TUIConfig

	store      *data.ConversationStore
	selector   *services.DatabaseSelector
	dispatcher *services.QueryDispatcher
	preview    *services.PreviewPanel

	databasesLoaded bool
	databasesErr    error

	// set by store and busy observers, consumed once the update settles
	scrollPending bool

	dark     bool
	styles   styles
	renderer *glamour.TermRenderer

	chat   *chatViewModel
	width  int
	height int
}

type databasesLoadedMsg struct {
	ids []string
	err error
}

type queryResultMsg services.Result

type previewLoadedMsg struct {
	generation int
	img        remote.PreviewImage
	err        error
}

type statusMsg string

func newSharedState(config TUIConfig, dark bool) *sharedState {
	store := data.NewConversationStore()
	selector := services.NewDatabaseSelector()

	shared := &sharedState{
		config:     config,
		store:      store,
		selector:   selector,
		dispatcher: services.NewQueryDispatcher(store, selector),
		preview:    services.NewPreviewPanel(config.Backend.PreviewURL, config.Placeholder),
	}

	store.Subscribe(func(data.Turn) { shared.scrollPending = true })
	shared.dispatcher.OnBusyChange(func(bool) { shared.scrollPending = true })

	shared.setTheme(dark)
	return shared
}

func (s *sharedState) setTheme(dark bool) {
	s.dark = dark
	s.styles = newStyles(dark)
	s.renderer = nil
	s.resizeRenderer(s.markdownWidth())
}

func (s *sharedState) markdownWidth() int {
	w := s.conversationWidth() - 4
	if w < 20 {
		w = 20
	}
	return w
}

// conversationWidth leaves room for the preview pane when one is active.
func (s *sharedState) conversationWidth() int {
	if _, ok := s.preview.Active(); ok && s.width >= 60 {
		return s.width - s.previewWidth()
	}
	return s.width
}

func (s *sharedState) previewWidth() int {
	return s.width / 3
}

func (s *sharedState) resizeRenderer(width int) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle(s.dark)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logger.Log.Warnw("markdown renderer unavailable", "error", err)
		s.renderer = nil
		return
	}
	s.renderer = r
}

func (s *sharedState) renderMarkdown(text string) string {
	if s.renderer == nil {
		return text
	}
	out, err := s.renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}

func (s *sharedState) loadDatabases() tea.Cmd {
	lister := s.config.Backend
	return func() tea.Msg {
		ids, err := lister.Databases(context.Background())
		return databasesLoadedMsg{ids: ids, err: err}
	}
}

func (s *sharedState) applyDatabases(msg databasesLoadedMsg) {
	s.databasesLoaded = true
	s.databasesErr = msg.err
	if msg.err != nil {
		logger.Log.Errorw("database discovery failed", "error", msg.err)
		s.selector.SetAvailable(nil)
		logger.Status("Could not load databases")
		return
	}
	s.selector.SetAvailable(msg.ids)
}

// loadPreview fetches the preview panel's current locator for its current generation.
func (s *sharedState) loadPreview() tea.Cmd {
	locator, ok := s.preview.Locator()
	if !ok {
		return nil
	}
	return s.fetchPreview(s.preview.Generation(), locator)
}

func (s *sharedState) fetchPreview(generation int, locator string) tea.Cmd {
	loader := s.config.Loader
	return func() tea.Msg {
		img, err := loader.FetchPreview(context.Background(), locator)
		return previewLoadedMsg{generation: generation, img: img, err: err}
	}
}

// applyPreview reconciles a finished load, substituting the placeholder once
// when the evidence itself could not be loaded.
func (s *sharedState) applyPreview(msg previewLoadedMsg) tea.Cmd {
	if msg.err == nil {
		s.preview.MarkLoaded(msg.generation, msg.img)
		return nil
	}

	logger.Log.Warnw("preview load failed", "generation", msg.generation, "error", msg.err)
	placeholder, ok := s.preview.LoadFailed(msg.generation)
	if !ok {
		return nil
	}
	return s.fetchPreview(msg.generation, placeholder)
}

// resize forwards the remembered window size to the next view.
func (s *sharedState) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: s.width, Height: s.height}
	}
}
