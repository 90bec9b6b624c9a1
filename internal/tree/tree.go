// Package tree presents the division forest as a lazily expanded tree.
//
// Only roots are loaded at start. Each expansion event issues one store
// query for that node's children; loaded children stay cached on the node
// for the rest of the session, so collapsing and re-expanding never reloads.
package tree

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/agentic-research/divtree/internal/division"
	"github.com/agentic-research/divtree/internal/logger"
)

// Source is the query capability the tree needs from a store.
// parentID "" selects the roots.
type Source interface {
	ChildrenOf(parentID string) ([]*division.Division, error)
}

// Node is one row of the tree view.
type Node struct {
	Division *division.Division
	Label    string
	// Expanded is display state only; collapsing keeps Children.
	Expanded bool
	Children []*Node
	Parent   *Node
	Depth    int

	loaded bool
}

// Expandable reports whether the UI should offer an expand affordance.
func (n *Node) Expandable() bool {
	return n != nil && n.Division != nil && n.Division.HasChildren
}

// Loaded reports whether the node's children have been fetched.
func (n *Node) Loaded() bool {
	return n != nil && n.loaded
}

// Tree owns the materialized frontier. It is not safe for concurrent use;
// the UI event loop delivers one event at a time.
type Tree struct {
	src     Source
	log     *slog.Logger
	roots   []*Node
	queries int
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger for query failures.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tree) { t.log = l }
}

// New returns an uninitialized tree over src.
func New(src Source, opts ...Option) *Tree {
	t := &Tree{src: src}
	for _, o := range opts {
		o(t)
	}
	t.log = logger.Or(t.log)
	return t
}

// Initialize loads and sorts the root divisions. A failure here is fatal
// for the session: there is no partially initialized tree.
func (t *Tree) Initialize() error {
	divs, err := t.query("")
	if err != nil {
		return fmt.Errorf("load root divisions: %w", err)
	}
	t.roots = t.nodes(divs, nil)
	return nil
}

// Expand handles a "node expanded" event.
//
// The first expansion of a node queries its children, sorts them by display
// name and attaches them collapsed. Later expansions only flip the display
// flag. A node without a division is ignored. A failed query leaves the
// node expanded but empty and unloaded, so the next event retries.
func (t *Tree) Expand(n *Node) error {
	if n == nil || n.Division == nil {
		return nil
	}
	if n.loaded {
		n.Expanded = true
		return nil
	}

	divs, err := t.query(n.Division.ID)
	n.Expanded = true
	if err != nil {
		t.log.Error("expand failed", "id", n.Division.ID, "err", err)
		return fmt.Errorf("expand %s: %w", n.Label, err)
	}
	n.Children = t.nodes(divs, n)
	n.loaded = true
	return nil
}

// Collapse hides n's children without discarding them.
func (t *Tree) Collapse(n *Node) {
	if n != nil {
		n.Expanded = false
	}
}

// Toggle expands a collapsed node and collapses an expanded one.
func (t *Tree) Toggle(n *Node) error {
	if n == nil {
		return nil
	}
	if n.Expanded {
		t.Collapse(n)
		return nil
	}
	return t.Expand(n)
}

// Roots returns the top-level nodes in display order.
func (t *Tree) Roots() []*Node {
	return t.roots
}

// Queries returns how many store queries the tree has issued.
func (t *Tree) Queries() int {
	return t.queries
}

// Visible flattens the expanded part of the tree in display order.
func (t *Tree) Visible() []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n)
			if n.Expanded {
				walk(n.Children)
			}
		}
	}
	walk(t.roots)
	return out
}

// Siblings returns the list n belongs to (its parent's children, or the roots).
func (t *Tree) Siblings(n *Node) []*Node {
	if n.Parent == nil {
		return t.roots
	}
	return n.Parent.Children
}

func (t *Tree) query(parentID string) ([]*division.Division, error) {
	t.queries++
	return t.src.ChildrenOf(parentID)
}

func (t *Tree) nodes(divs []*division.Division, parent *Node) []*Node {
	SortByName(divs)
	depth := 0
	if parent != nil {
		depth = parent.Depth + 1
	}
	out := make([]*Node, 0, len(divs))
	for _, d := range divs {
		if d == nil {
			continue
		}
		out = append(out, &Node{
			Division: d,
			Label:    d.Label(),
			Parent:   parent,
			Depth:    depth,
		})
	}
	return out
}

// SortByName orders divisions by display name, byte-wise. Equal names keep
// their input order.
func SortByName(divs []*division.Division) {
	sort.SliceStable(divs, func(i, j int) bool {
		if divs[i] == nil || divs[j] == nil {
			return divs[i] != nil
		}
		return divs[i].Name() < divs[j].Name()
	})
}
