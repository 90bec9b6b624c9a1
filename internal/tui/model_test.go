package tui

import (
	"errors"
	"testing"

	"github.com/agentic-research/divtree/internal/division"
	"github.com/agentic-research/divtree/internal/logger"
	"github.com/agentic-research/divtree/internal/tree"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource struct {
	children map[string][]*division.Division
	err      error
}

func (m *mapSource) ChildrenOf(parentID string) ([]*division.Division, error) {
	if m.err != nil && parentID != "" {
		return nil, m.err
	}
	return append([]*division.Division(nil), m.children[parentID]...), nil
}

func worldModel(t *testing.T) (Model, *mapSource) {
	t.Helper()
	r := division.NewResolver(division.DefaultLocale, logger.Discard())
	d := func(id, parent, subtype string, hasChildren bool, primary string) *division.Division {
		return division.New(id, parent, subtype, hasChildren, &division.Names{Primary: primary}, division.WithResolver(r))
	}
	src := &mapSource{children: map[string][]*division.Division{
		"":  {d("1", "", "country", true, "World")},
		"1": {d("2", "1", "country", true, "USA"), d("3", "1", "country", false, "Canada")},
		"2": {d("4", "2", "region", false, "Texas")},
	}}
	tr := tree.New(src, tree.WithLogger(logger.Discard()))
	require.NoError(t, tr.Initialize())
	return New(tr), src
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_InitialView(t *testing.T) {
	m, _ := worldModel(t)
	require.NotNil(t, m.Selected())
	assert.Equal(t, "World (country)", m.Selected().Label)
	assert.Len(t, m.rows, 1)

	v := m.View()
	assert.Contains(t, v, Title)
	assert.Contains(t, v, "▸ World")
}

func TestModel_ExpandAndNavigate(t *testing.T) {
	m, _ := worldModel(t)

	m = send(m, key("enter"))
	require.Len(t, m.rows, 3)
	assert.True(t, m.rows[0].Expanded)
	assert.Equal(t, "Canada (country)", m.rows[1].Label)
	assert.Equal(t, "USA (country)", m.rows[2].Label)
	assert.Contains(t, m.View(), "├── ")
	assert.Contains(t, m.View(), "└── ")

	// Enter on an expanded node descends to its first child.
	m = send(m, key("enter"))
	assert.Equal(t, "Canada (country)", m.Selected().Label)

	m = send(m, key("j"), key("l"))
	require.Len(t, m.rows, 4)
	assert.Equal(t, "Texas (region)", m.rows[3].Label)

	// h collapses USA, a second h jumps to World.
	m = send(m, key("h"))
	assert.Len(t, m.rows, 3)
	assert.Equal(t, "USA (country)", m.Selected().Label)
	m = send(m, key("left"))
	assert.Equal(t, "World (country)", m.Selected().Label)
}

func TestModel_CursorClamps(t *testing.T) {
	m, _ := worldModel(t)
	m = send(m, key("k"), key("k"))
	assert.Equal(t, 0, m.cursor)
	m = send(m, key("enter"), key("G"))
	assert.Equal(t, 2, m.cursor)
	m = send(m, key("down"))
	assert.Equal(t, 2, m.cursor)
	m = send(m, key("g"))
	assert.Equal(t, 0, m.cursor)
}

func TestModel_ExpandErrorShowsInStatus(t *testing.T) {
	m, src := worldModel(t)
	src.err = errors.New("disk I/O error")

	m = send(m, key("enter"))
	assert.Error(t, m.lastErr)
	assert.Contains(t, m.View(), "disk I/O error")

	src.err = nil
	m = send(m, key("h"), key("enter"))
	assert.NoError(t, m.lastErr)
	assert.Len(t, m.rows, 3)
}

func TestModel_WindowSize(t *testing.T) {
	m, _ := worldModel(t)
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 10})
	assert.Equal(t, 100, m.viewport.Width)
	assert.Equal(t, 8, m.viewport.Height)

	m = send(m, tea.WindowSizeMsg{Width: 10, Height: 1})
	assert.Equal(t, 1, m.viewport.Height)
}

func TestModel_Quit(t *testing.T) {
	m, _ := worldModel(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Empty(t *testing.T) {
	tr := tree.New(&mapSource{}, tree.WithLogger(logger.Discard()))
	require.NoError(t, tr.Initialize())
	m := New(tr)
	assert.Nil(t, m.Selected())
	assert.Contains(t, m.View(), "No divisions.")

	m = send(m, key("enter"), key("h"), key("j"))
	assert.Nil(t, m.Selected())
}
