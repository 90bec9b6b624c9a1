// Package division holds the read-only projection of an administrative
// division and the rules for naming it.
package division

import (
	"encoding/json"
	"fmt"

	"github.com/agentic-research/divtree/api"
)

// Division is one node of the administrative hierarchy. Stores create them;
// nothing in this module mutates one afterwards.
type Division struct {
	ID          string
	ParentID    string // empty for roots
	Subtype     string
	HasChildren bool
	Names       *Names

	resolver *Resolver
	name     string
	named    bool
}

// Option configures a Division at construction.
type Option func(*Division)

// WithResolver names the division with r instead of DefaultResolver.
func WithResolver(r *Resolver) Option {
	return func(d *Division) { d.resolver = r }
}

// New builds a Division.
func New(id, parentID, subtype string, hasChildren bool, names *Names, opts ...Option) *Division {
	d := &Division{
		ID:          id,
		ParentID:    parentID,
		Subtype:     subtype,
		HasChildren: hasChildren,
		Names:       names,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Name returns the display name. It is resolved on first call and cached.
func (d *Division) Name() string {
	if d.named {
		return d.name
	}
	r := d.resolver
	if r == nil {
		r = DefaultResolver
	}
	d.name = r.Resolve(d.ID, d.Names)
	d.named = true
	return d.name
}

// Label is the tree label: "{name} ({subtype})".
func (d *Division) Label() string {
	return fmt.Sprintf("%s (%s)", d.Name(), d.Subtype)
}

// IsRoot reports whether the division has no parent.
func (d *Division) IsRoot() bool {
	return d.ParentID == ""
}

// Row converts d to its table row shape.
func (d *Division) Row() (api.Division, error) {
	row := api.Division{
		ID:          d.ID,
		Subtype:     d.Subtype,
		HasChildren: d.HasChildren,
	}
	if d.ParentID != "" {
		p := d.ParentID
		row.ParentDivisionID = &p
	}
	if d.Names != nil {
		b, err := json.Marshal(d.Names)
		if err != nil {
			return api.Division{}, fmt.Errorf("encode names for %s: %w", d.ID, err)
		}
		row.Names = b
	}
	return row, nil
}

// FromRow builds a Division from a table row. An undecodable names value is
// reported as an error together with a Division whose Names is nil, so
// callers can log the anomaly and keep going.
func FromRow(row api.Division, opts ...Option) (*Division, error) {
	var parent string
	if row.ParentDivisionID != nil {
		parent = *row.ParentDivisionID
	}
	names, err := ParseNames(row.Names)
	d := New(row.ID, parent, row.Subtype, row.HasChildren, names, opts...)
	if err != nil {
		return d, fmt.Errorf("division %s: %w", row.ID, err)
	}
	return d, nil
}
