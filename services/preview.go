package services

import (
	"docchat/data"
	"docchat/remote"
)

type PreviewStatus int

const (
	PreviewNone PreviewStatus = iota
	PreviewLoading
	PreviewLoaded
	PreviewFallback
	PreviewUnavailable
)

// PreviewPanel holds at most one active evidence reference. Each Open starts
// a new generation so late load results for a replaced reference are ignored.
type PreviewPanel struct {
	locate      func(reference string) string
	placeholder string

	active       string
	locator      string
	generation   int
	fallbackUsed bool
	status       PreviewStatus
	image        remote.PreviewImage
}

// NewPreviewPanel takes the function mapping a reference to its locator and
// the locator shown when loading fails. An empty placeholder disables the fallback.
func NewPreviewPanel(locate func(string) string, placeholder string) *PreviewPanel {
	return &PreviewPanel{locate: locate, placeholder: placeholder}
}

// Open makes reference the active one, replacing any previous reference.
// An empty reference closes the panel.
func (p *PreviewPanel) Open(reference string) {
	if reference == "" {
		p.Close()
		return
	}

	p.generation++
	p.active = reference
	p.locator = p.locate(reference)
	p.fallbackUsed = false
	p.status = PreviewLoading
	p.image = remote.PreviewImage{}
}

// OpenTurn opens the image of turn, reporting false when it carries none.
func (p *PreviewPanel) OpenTurn(turn data.Turn) bool {
	if !turn.HasImage() {
		return false
	}
	p.Open(turn.Image)
	return true
}

func (p *PreviewPanel) Close() {
	p.generation++
	p.active = ""
	p.locator = ""
	p.fallbackUsed = false
	p.status = PreviewNone
	p.image = remote.PreviewImage{}
}

func (p *PreviewPanel) Active() (string, bool) {
	return p.active, p.active != ""
}

// Locator is what should currently be displayed: the derived preview
// locator, or the placeholder once a load failed.
func (p *PreviewPanel) Locator() (string, bool) {
	return p.locator, p.active != ""
}

func (p *PreviewPanel) Generation() int {
	return p.generation
}

func (p *PreviewPanel) Status() PreviewStatus {
	return p.status
}

func (p *PreviewPanel) Image() remote.PreviewImage {
	return p.image
}

// LoadFailed reports that displaying the current locator failed. The first
// failure of a generation switches to the placeholder and returns its
// locator; every later failure returns false so the placeholder is never retried.
func (p *PreviewPanel) LoadFailed(generation int) (string, bool) {
	if generation != p.generation || p.active == "" {
		return "", false
	}

	if p.fallbackUsed || p.placeholder == "" {
		p.fallbackUsed = true
		p.status = PreviewUnavailable
		return "", false
	}

	p.fallbackUsed = true
	p.locator = p.placeholder
	p.status = PreviewFallback
	return p.placeholder, true
}

// MarkLoaded records a successful load for generation.
func (p *PreviewPanel) MarkLoaded(generation int, img remote.PreviewImage) bool {
	if generation != p.generation || p.active == "" {
		return false
	}
	p.image = img
	if !p.fallbackUsed {
		p.status = PreviewLoaded
	}
	return true
}

// UsingPlaceholder reports whether the fallback was substituted for this Open.
func (p *PreviewPanel) UsingPlaceholder() bool {
	return p.fallbackUsed
}
