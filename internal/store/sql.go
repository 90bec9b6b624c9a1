package store

import (
	"database/sql"
	"fmt"

	"github.com/agentic-research/divtree/internal/division"
)

// SQLStore implements Store over a database/sql connection. The table is
// expected to carry id, parent_division_id, subtype, has_children and names
// (JSON) columns, with an index on parent_division_id.
//
// The connection is used only from the UI event path, one query at a time.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	q       queries
	opts    options
}

// NewSQLStore wraps an open SQLite connection.
func NewSQLStore(db *sql.DB, opts ...Option) (*SQLStore, error) {
	return newSQLStore(db, dialectSQLite, opts)
}

func newSQLStore(db *sql.DB, d dialect, opts []Option) (*SQLStore, error) {
	o := buildOptions(opts)
	q, err := buildQueries(o.table, d)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, dialect: d, q: q, opts: o}, nil
}

// ChildrenOf implements Store.
func (s *SQLStore) ChildrenOf(parentID string) ([]*division.Division, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID == RootID {
		rows, err = s.db.Query(s.q.roots)
	} else {
		rows, err = s.db.Query(s.q.children, parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("query children of %q: %w", parentID, err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var out []*division.Division
	for rows.Next() {
		var (
			id          string
			subtype     sql.NullString
			hasChildren sql.NullBool
			names       sql.NullString
		)
		if err := rows.Scan(&id, &subtype, &hasChildren, &names); err != nil {
			return nil, fmt.Errorf("scan division row: %w", err)
		}
		parsed, err := division.ParseNames([]byte(names.String))
		if err != nil {
			// Anomaly, not a failure: the row renders as MISSING.
			s.opts.log.Warn("undecodable names", "id", id, "err", err)
			parsed = nil
		}
		out = append(out, division.New(id, parentID, subtype.String, hasChildren.Bool, parsed, s.opts.divisionOpts()...))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate division rows: %w", err)
	}
	return out, nil
}

// Ping verifies that the divisions table is reachable.
func (s *SQLStore) Ping() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("ping %s: %w", s.dialect, err)
	}
	var n int
	err := s.db.QueryRow("SELECT COUNT(1) FROM (" + s.q.roots + " LIMIT 1) t").Scan(&n)
	if err != nil {
		return fmt.Errorf("probe table %s: %w", s.opts.table, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLStore)(nil)
