package tui

import (
	"strings"

	"github.com/agentic-research/divtree/internal/tree"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title    lipgloss.Style
	branch   lipgloss.Style
	marker   lipgloss.Style
	subtype  lipgloss.Style
	selected lipgloss.Style
	status   lipgloss.Style
	err      lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		branch:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		marker:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		subtype:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		selected: lipgloss.NewStyle().Reverse(true),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// marker is the expand indicator: ▸ collapsed, ▾ expanded, • leaf.
func marker(n *tree.Node) string {
	switch {
	case n.Expanded:
		return "▾"
	case n.Expandable():
		return "▸"
	default:
		return "•"
	}
}

// branchPrefix draws the │/├──/└── guides for n.
func branchPrefix(t *tree.Tree, n *tree.Node) string {
	if n.Depth == 0 {
		return ""
	}
	var chain []*tree.Node
	for a := n.Parent; a != nil; a = a.Parent {
		chain = append([]*tree.Node{a}, chain...)
	}

	var sb strings.Builder
	// The root ancestor sits at column zero and draws no guide.
	for _, a := range chain[1:] {
		if isLast(t, a) {
			sb.WriteString("    ")
		} else {
			sb.WriteString("│   ")
		}
	}
	if isLast(t, n) {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}

func isLast(t *tree.Tree, n *tree.Node) bool {
	sibs := t.Siblings(n)
	return len(sibs) > 0 && sibs[len(sibs)-1] == n
}

// renderRow renders one tree row without selection highlighting.
func (s styles) renderRow(t *tree.Tree, n *tree.Node) string {
	var sb strings.Builder
	sb.WriteString(s.branch.Render(branchPrefix(t, n)))
	sb.WriteString(s.marker.Render(marker(n)))
	sb.WriteString(" ")
	if n.Division != nil {
		sb.WriteString(n.Division.Name())
		sb.WriteString(" ")
		sb.WriteString(s.subtype.Render("(" + n.Division.Subtype + ")"))
	} else {
		sb.WriteString(n.Label)
	}
	return sb.String()
}
