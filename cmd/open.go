package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/agentic-research/divtree/api"
	"github.com/agentic-research/divtree/internal/config"
	"github.com/agentic-research/divtree/internal/division"
	"github.com/agentic-research/divtree/internal/ingest"
	"github.com/agentic-research/divtree/internal/store"
)

// openStore picks the backend from c.DB:
//
//	postgres:// or postgresql://   Postgres
//	*.jsonl, *.json, *.geojsonseq  JSON lines loaded into memory
//	anything else                  SQLite database built by `divtree build`
//
// When a Redis address is configured the store is wrapped in a read-through
// cache.
func openStore(c *config.Config, log *slog.Logger) (store.Store, error) {
	opts := []store.Option{
		store.WithTable(c.Table),
		store.WithLogger(log),
		store.WithResolver(division.NewResolver(c.Locale, log)),
	}

	var (
		s   store.Store
		err error
	)
	switch {
	case strings.HasPrefix(c.DB, "postgres://"), strings.HasPrefix(c.DB, "postgresql://"):
		s, err = store.OpenPostgres(c.DB, opts...)
	case isJSONLines(c.DB):
		s, err = loadMemory(c, log, opts)
	default:
		s, err = store.OpenSQLite(c.DB, opts...)
	}
	if err != nil {
		return nil, err
	}

	if rdb := store.OpenRedis(c.RedisAddr, c.RedisPassword, c.RedisDB); rdb != nil {
		log.Debug("caching child lists in redis", "addr", c.RedisAddr, "ttl", c.CacheTTL)
		s = store.NewCachedStore(s, rdb, c.CacheTTL, opts...)
	}
	return s, nil
}

func isJSONLines(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json", ".geojsonseq", ".geojsonl":
		return true
	}
	return false
}

func loadMemory(c *config.Config, log *slog.Logger, opts []store.Option) (*store.MemoryStore, error) {
	fm, ok := api.FieldMapFor(c.Format)
	if !ok {
		return nil, fmt.Errorf("unknown format %q (want flat or geojson)", c.Format)
	}
	r, err := ingest.NewReader(fm, log)
	if err != nil {
		return nil, err
	}
	ms := store.NewMemoryStore(opts...)
	st, err := r.LoadFile(c.DB, ms)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.DB, err)
	}
	ms.Seal()
	log.Info("loaded divisions into memory", "path", c.DB, "records", st.Records, "skipped", st.Skipped)
	return ms, nil
}
