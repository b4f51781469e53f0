package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabasePicker_SelectsAndReturns(t *testing.T) {
	m := newTestChat(t, &fakeBackend{databases: []string{"docs", "manuals"}}, &fakeLoader{})

	model, _ := m.Update(key(tea.KeyCtrlG))
	picker, ok := model.(*databaseViewModel)
	require.True(t, ok)
	assert.Contains(t, picker.View(), "docs ✓")

	picker.Update(key(tea.KeyDown))
	model, _ = picker.Update(key(tea.KeyEnter))

	assert.Same(t, m, model)
	selected, _ := m.shared.selector.Selected()
	assert.Equal(t, "manuals", selected)
}

func TestDatabasePicker_Refresh(t *testing.T) {
	backend := &fakeBackend{databases: []string{"docs"}}
	m := newTestChat(t, backend, &fakeLoader{})

	model, _ := m.Update(key(tea.KeyCtrlG))
	picker := model.(*databaseViewModel)

	backend.databases = []string{"fresh", "docs"}
	_, cmd := picker.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.True(t, picker.loading)
	assert.Contains(t, picker.View(), "Loading databases")

	picker.Update(drain(t, cmd, databasesLoadedMsg{}))

	assert.False(t, picker.loading)
	assert.Equal(t, []string{"fresh", "docs"}, m.shared.selector.Available())
	selected, _ := m.shared.selector.Selected()
	assert.Equal(t, "fresh", selected)
}

func TestDatabasePicker_EscKeepsSelection(t *testing.T) {
	m := newTestChat(t, &fakeBackend{databases: []string{"docs", "manuals"}}, &fakeLoader{})

	model, _ := m.Update(key(tea.KeyCtrlG))
	picker := model.(*databaseViewModel)
	picker.Update(key(tea.KeyDown))
	model, _ = picker.Update(key(tea.KeyEsc))

	assert.Same(t, m, model)
	selected, _ := m.shared.selector.Selected()
	assert.Equal(t, "docs", selected)
}
