package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/divtree/api"
	"github.com/agentic-research/divtree/internal/division"
)

// ErrDuplicateID is returned when a division id is added twice.
var ErrDuplicateID = errors.New("duplicate division id")

// MemoryStore holds a whole dataset in RAM, keyed by parent id. It serves
// small extracts loaded straight from a JSON-lines file.
//
// HasChildren is derived lazily by Seal: one pass over all rows marks every
// parent in a roaring bitmap keyed by internal row number.
type MemoryStore struct {
	mu       sync.Mutex
	rows     map[string]*memRow  // id → row
	children map[string][]string // parent id → child ids, insertion order
	roots    []string
	order    []string // all ids, insertion order

	parents *roaring.Bitmap // internal ids referenced as a parent
	sealed  bool

	opts options
}

type memRow struct {
	intID   uint32
	id      string
	parent  string
	subtype string
	names   *division.Names
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		rows:     make(map[string]*memRow),
		children: make(map[string][]string),
		parents:  roaring.New(),
		opts:     buildOptions(opts),
	}
}

// Add inserts one row. The row's has_children value is ignored and
// recomputed by Seal.
func (s *MemoryStore) Add(row api.Division) error {
	if row.ID == "" {
		return fmt.Errorf("add division: empty id")
	}
	names, err := division.ParseNames(row.Names)
	if err != nil {
		s.opts.log.Warn("undecodable names", "id", row.ID, "err", err)
		names = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.rows[row.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateID, row.ID)
	}
	r := &memRow{
		intID:   uint32(len(s.order)),
		id:      row.ID,
		subtype: row.Subtype,
		names:   names,
	}
	if row.ParentDivisionID != nil {
		r.parent = *row.ParentDivisionID
	}
	s.rows[r.id] = r
	s.order = append(s.order, r.id)
	if r.parent == "" {
		s.roots = append(s.roots, r.id)
	} else {
		s.children[r.parent] = append(s.children[r.parent], r.id)
	}
	s.sealed = false
	return nil
}

// Seal recomputes HasChildren for every row in a single pass.
func (s *MemoryStore) Seal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealLocked()
}

func (s *MemoryStore) sealLocked() {
	if s.sealed {
		return
	}
	bm := roaring.New()
	for _, id := range s.order {
		r := s.rows[id]
		if r.parent == "" {
			continue
		}
		// Dangling parents have no row to flag.
		if p, ok := s.rows[r.parent]; ok {
			bm.Add(p.intID)
		}
	}
	s.parents = bm
	s.sealed = true
}

// Len returns the number of rows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// ChildrenOf implements Store.
func (s *MemoryStore) ChildrenOf(parentID string) ([]*division.Division, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealLocked()

	ids := s.roots
	if parentID != RootID {
		ids = s.children[parentID]
	}
	out := make([]*division.Division, 0, len(ids))
	for _, id := range ids {
		r := s.rows[id]
		out = append(out, division.New(r.id, r.parent, r.subtype, s.parents.Contains(r.intID), r.names, s.opts.divisionOpts()...))
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
