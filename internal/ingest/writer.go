package ingest

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/agentic-research/divtree/api"
	"github.com/agentic-research/divtree/internal/store"
	_ "modernc.org/sqlite"
)

const defaultBatchSize = 10000

// SQLiteWriter builds the divisions table read by store.OpenSQLite.
//
// Rows are inserted in batched transactions. has_children is filled by a
// single aggregate UPDATE in Close, and the parent index is created after
// the bulk load.
type SQLiteWriter struct {
	db        *sql.DB
	tx        *sql.Tx
	stmt      *sql.Stmt
	table     string
	batchSize int
	count     int
	mu        sync.Mutex
}

// NewSQLiteWriter creates (or replaces) table in the database at dbPath.
func NewSQLiteWriter(dbPath, table string) (*SQLiteWriter, error) {
	if err := store.ValidTable(table); err != nil {
		return nil, err
	}
	if strings.Contains(table, ".") {
		return nil, fmt.Errorf("%w: %q (schema-qualified names are read-only)", store.ErrBadTable, table)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	// Performance tuning for bulk insert
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := `
	DROP TABLE IF EXISTS ` + table + `;
	CREATE TABLE ` + table + ` (
		id TEXT PRIMARY KEY,
		parent_division_id TEXT,
		subtype TEXT,
		names TEXT,
		has_children INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &SQLiteWriter{
		db:        db,
		table:     table,
		batchSize: defaultBatchSize,
	}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLiteWriter) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	w.stmt, err = w.tx.Prepare(`INSERT INTO ` + w.table +
		` (id, parent_division_id, subtype, names) VALUES (?, ?, ?, ?)` +
		` ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	return nil
}

func (w *SQLiteWriter) commitTx() error {
	if w.stmt != nil {
		_ = w.stmt.Close()
	}
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Add writes one row. has_children on the row is ignored. An id that was
// already written is rejected with store.ErrDuplicateID, as MemoryStore does.
func (w *SQLiteWriter) Add(row api.Division) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var parent, names any
	if row.ParentDivisionID != nil && *row.ParentDivisionID != "" {
		parent = *row.ParentDivisionID
	}
	if len(row.Names) > 0 {
		names = string(row.Names)
	}
	res, err := w.stmt.Exec(row.ID, parent, row.Subtype, names)
	if err != nil {
		return fmt.Errorf("insert %s: %w", row.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", store.ErrDuplicateID, row.ID)
	}

	w.count++
	if w.count >= w.batchSize {
		if err := w.commitTx(); err != nil {
			return err
		}
		if err := w.beginTx(); err != nil {
			return err
		}
		w.count = 0
	}
	return nil
}

// Close commits pending rows, computes has_children in one pass, indexes
// parent_division_id and closes the database.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}

	finalize := []string{
		`UPDATE ` + w.table + ` SET has_children = 1 WHERE id IN (
			SELECT DISTINCT parent_division_id FROM ` + w.table + `
			WHERE parent_division_id IS NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ` + w.table + `_parent_division_id_idx ON ` +
			w.table + ` (parent_division_id)`,
	}
	for _, q := range finalize {
		if _, err := w.db.Exec(q); err != nil {
			_ = w.db.Close()
			return fmt.Errorf("finalize %s: %w", w.table, err)
		}
	}
	return w.db.Close()
}

var _ Target = (*SQLiteWriter)(nil)
