package store

import (
	"errors"
	"fmt"
	"regexp"
)

// DefaultTable is the table written by the build command.
const DefaultTable = "divisions"

// ErrBadTable is returned for table names that are not plain identifiers.
var ErrBadTable = errors.New("invalid table name")

// Optional schema qualifier, then a bare identifier. Table names are spliced
// into SQL text, so nothing else gets through.
var tableRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*\.)?[A-Za-z_][A-Za-z0-9_]*$`)

// ValidTable checks that name can be used as a table identifier.
func ValidTable(name string) error {
	if !tableRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrBadTable, name)
	}
	return nil
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

func (d dialect) placeholder() string {
	if d == dialectPostgres {
		return "$1"
	}
	return "?"
}

// queries holds the two statements behind ChildrenOf.
type queries struct {
	roots    string
	children string
}

func buildQueries(table string, d dialect) (queries, error) {
	if err := ValidTable(table); err != nil {
		return queries{}, err
	}
	base := "SELECT id, subtype, has_children, names FROM " + table + " WHERE parent_division_id "
	return queries{
		roots:    base + "IS NULL",
		children: base + "= " + d.placeholder(),
	}, nil
}
