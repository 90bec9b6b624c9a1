package ingest

import "github.com/agentic-research/divtree/api"

// Target receives division rows from the reader. store.MemoryStore and
// SQLiteWriter both satisfy it.
type Target interface {
	Add(row api.Division) error
}

// Stats summarizes one ingestion run.
type Stats struct {
	Records int // rows handed to the target
	Skipped int // lines that could not be decoded or had no id
}
