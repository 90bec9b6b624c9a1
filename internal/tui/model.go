// Package tui is the interactive terminal shell around a tree.Tree.
package tui

import (
	"fmt"
	"strings"

	"github.com/agentic-research/divtree/internal/tree"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Title heads the view, like the synthetic "World" root of the tree.
const Title = "World"

// Model is the bubbletea model. Every key event is handled to completion in
// Update before the next one is delivered, so expansions never overlap.
type Model struct {
	tree     *tree.Tree
	rows     []*tree.Node
	cursor   int
	viewport viewport.Model
	styles   styles
	lastErr  error
}

// New wraps an initialized tree.
func New(t *tree.Tree) Model {
	m := Model{
		tree:     t,
		viewport: viewport.New(80, 20),
		styles:   defaultStyles(),
	}
	m.refresh()
	return m
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(t *tree.Tree) error {
	p := tea.NewProgram(New(t), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		// Header and status line take one row each.
		m.viewport.Height = max(msg.Height-2, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.viewport.Height / 2)
		case "pgdown":
			m.move(m.viewport.Height / 2)
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.cursor = len(m.rows) - 1
		case "enter", "right", "l", " ":
			m.expandOrDescend()
		case "left", "h":
			m.collapseOrAscend()
		}
		m.refresh()
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.title.Render(Title))
	sb.WriteString("\n")
	if len(m.rows) == 0 {
		sb.WriteString(m.styles.status.Render("No divisions."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(m.viewport.View())
		sb.WriteString("\n")
	}
	sb.WriteString(m.statusLine())
	return sb.String()
}

// Selected returns the node under the cursor.
func (m Model) Selected() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m Model) statusLine() string {
	if m.lastErr != nil {
		return m.styles.err.Render("error: " + m.lastErr.Error())
	}
	return m.styles.status.Render(fmt.Sprintf("%d rows · %d queries · enter expand · h collapse · q quit",
		len(m.rows), m.tree.Queries()))
}

func (m *Model) move(delta int) {
	m.cursor += delta
	m.clamp()
}

func (m *Model) clamp() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// expandOrDescend expands a collapsed node, or moves onto the first child
// of an already expanded one.
func (m *Model) expandOrDescend() {
	n := m.Selected()
	if n == nil {
		return
	}
	if n.Expanded && len(n.Children) > 0 {
		m.cursor++
		return
	}
	m.lastErr = m.tree.Expand(n)
}

// collapseOrAscend collapses an expanded node, or jumps to the parent.
func (m *Model) collapseOrAscend() {
	n := m.Selected()
	if n == nil {
		return
	}
	if n.Expanded {
		m.tree.Collapse(n)
		return
	}
	if n.Parent == nil {
		return
	}
	for i, r := range m.rows {
		if r == n.Parent {
			m.cursor = i
			return
		}
	}
}

// refresh re-flattens the tree and re-renders the viewport around the cursor.
func (m *Model) refresh() {
	m.rows = m.tree.Visible()
	m.clamp()

	lines := make([]string, len(m.rows))
	for i, n := range m.rows {
		line := m.styles.renderRow(m.tree, n)
		if i == m.cursor {
			line = m.styles.selected.Render(line)
		}
		lines[i] = line
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if h := m.viewport.Height; h > 0 && m.cursor >= m.viewport.YOffset+h {
		m.viewport.SetYOffset(m.cursor - h + 1)
	}
}

var _ tea.Model = Model{}
