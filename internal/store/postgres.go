package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// OpenPostgres connects to a Postgres database holding the divisions table
// (names as json/jsonb, has_children as boolean).
func OpenPostgres(dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s, err := newSQLStore(db, dialectPostgres, opts)
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
