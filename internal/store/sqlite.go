package store

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens a divisions database built by `divtree build`.
// The file is opened read-only; this module never writes to it.
func OpenSQLite(dbPath string, opts ...Option) (*SQLStore, error) {
	// sql.Open on a missing path would create an empty database.
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// The driver only honours mode= on file: URIs.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	s, err := NewSQLStore(db, opts...)
	if err != nil {
		_ = db.Close() // ignore error
		return nil, err
	}
	if err := s.Ping(); err != nil {
		_ = db.Close() // ignore error
		return nil, err
	}
	return s, nil
}
