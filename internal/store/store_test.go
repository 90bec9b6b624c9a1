package store

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"sort"
	"testing"

	"github.com/agentic-research/divtree/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// fixture is the small World/USA/Canada hierarchy used across store tests.
var fixture = []api.Division{
	row("1", "", "country", `{"primary":"World"}`),
	row("2", "1", "country", `{"primary":"United States","common":{"en":"USA"}}`),
	row("3", "1", "country", `{"primary":"Canada"}`),
	row("4", "2", "region", `{"primary":"Texas","common":{"key":["en"],"value":["Texas"]}}`),
	row("5", "", "dependency", ``),
	row("6", "ghost", "county", `{"primary":"Orphan"}`),
}

func row(id, parent, subtype, names string) api.Division {
	r := api.Division{ID: id, Subtype: subtype}
	if parent != "" {
		r.ParentDivisionID = &parent
	}
	if names != "" {
		r.Names = json.RawMessage(names)
	}
	return r
}

func quiet() Option {
	return WithLogger(slog.New(slog.DiscardHandler))
}

// createSQLiteFixture writes fixture to a fresh database file with has_children
// computed the way the build command does.
func createSQLiteFixture(t *testing.T, table string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "divisions.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`CREATE TABLE ` + table + ` (
		id TEXT PRIMARY KEY,
		parent_division_id TEXT,
		subtype TEXT,
		names TEXT,
		has_children INTEGER NOT NULL DEFAULT 0
	)`)
	require.NoError(t, err)

	for _, r := range fixture {
		var names any
		if len(r.Names) > 0 {
			names = string(r.Names)
		}
		_, err := db.Exec(`INSERT INTO `+table+` (id, parent_division_id, subtype, names) VALUES (?, ?, ?, ?)`,
			r.ID, r.ParentDivisionID, r.Subtype, names)
		require.NoError(t, err)
	}
	_, err = db.Exec(`UPDATE ` + table + ` SET has_children = 1 WHERE id IN (SELECT DISTINCT parent_division_id FROM ` + table + `)`)
	require.NoError(t, err)
	return dbPath
}

func ids(t *testing.T, s Store, parentID string) []string {
	t.Helper()
	divs, err := s.ChildrenOf(parentID)
	require.NoError(t, err)
	out := make([]string, 0, len(divs))
	for _, d := range divs {
		out = append(out, d.ID)
	}
	sort.Strings(out)
	return out
}

// testStoreContract runs the behaviour every Store must share against s,
// which must be loaded with fixture.
func testStoreContract(t *testing.T, s Store) {
	t.Run("roots", func(t *testing.T) {
		assert.Equal(t, []string{"1", "5"}, ids(t, s, RootID))
	})

	t.Run("children", func(t *testing.T) {
		assert.Equal(t, []string{"2", "3"}, ids(t, s, "1"))
		assert.Equal(t, []string{"4"}, ids(t, s, "2"))
	})

	t.Run("leaf has no children", func(t *testing.T) {
		assert.Empty(t, ids(t, s, "4"))
	})

	t.Run("unknown id is empty not an error", func(t *testing.T) {
		divs, err := s.ChildrenOf("does-not-exist")
		require.NoError(t, err)
		assert.Empty(t, divs)
	})

	t.Run("dangling parent still finds its rows", func(t *testing.T) {
		assert.Equal(t, []string{"6"}, ids(t, s, "ghost"))
	})

	t.Run("has_children matches children", func(t *testing.T) {
		var walk func(parentID string)
		walk = func(parentID string) {
			divs, err := s.ChildrenOf(parentID)
			require.NoError(t, err)
			for _, d := range divs {
				kids, err := s.ChildrenOf(d.ID)
				require.NoError(t, err)
				assert.Equal(t, len(kids) > 0, d.HasChildren, "division %s", d.ID)
				walk(d.ID)
			}
		}
		walk(RootID)
	})

	t.Run("fields and names", func(t *testing.T) {
		divs, err := s.ChildrenOf("1")
		require.NoError(t, err)
		byID := map[string]string{}
		for _, d := range divs {
			assert.Equal(t, "1", d.ParentID)
			assert.Equal(t, "country", d.Subtype)
			byID[d.ID] = d.Label()
		}
		assert.Equal(t, "USA (country)", byID["2"])
		assert.Equal(t, "Canada (country)", byID["3"])
	})

	t.Run("missing names", func(t *testing.T) {
		divs, err := s.ChildrenOf(RootID)
		require.NoError(t, err)
		for _, d := range divs {
			if d.ID == "5" {
				assert.Equal(t, "MISSING (dependency)", d.Label())
				assert.True(t, d.IsRoot())
				return
			}
		}
		t.Fatal("root 5 not returned")
	})
}
