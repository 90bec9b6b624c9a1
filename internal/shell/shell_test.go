package shell

import (
	"bytes"
	"errors"
	"testing"

	"github.com/agentic-research/divtree/api"
	"github.com/agentic-research/divtree/internal/division"
	"github.com/agentic-research/divtree/internal/logger"
	"github.com/agentic-research/divtree/internal/store"
	"github.com/agentic-research/divtree/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func newShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	log := logger.Discard()
	s := store.NewMemoryStore(store.WithLogger(log),
		store.WithResolver(division.NewResolver(division.DefaultLocale, log)))
	for _, r := range []api.Division{
		{ID: "1", Subtype: "country", Names: []byte(`{"primary":"World"}`)},
		{ID: "2", ParentDivisionID: ptr("1"), Subtype: "country", Names: []byte(`{"primary":"United States","common":{"en":"USA"}}`)},
		{ID: "3", ParentDivisionID: ptr("1"), Subtype: "country", Names: []byte(`{"primary":"Canada"}`)},
	} {
		require.NoError(t, s.Add(r))
	}

	tr := tree.New(s, tree.WithLogger(log))
	require.NoError(t, tr.Initialize())

	var out bytes.Buffer
	return New(tr, nil, &out), &out
}

func TestExec_ShowAndOpen(t *testing.T) {
	sh, out := newShell(t)

	require.NoError(t, sh.Exec("show"))
	assert.Equal(t, "1  + World (country)\n", out.String())

	out.Reset()
	require.NoError(t, sh.Exec("open 1"))
	assert.Equal(t, "1  - World (country)\n2      Canada (country)\n3      USA (country)\n", out.String())

	out.Reset()
	require.NoError(t, sh.Exec("close 1"))
	assert.Equal(t, "1  + World (country)\n", out.String())
}

func TestExec_OpenLeaf(t *testing.T) {
	sh, out := newShell(t)
	require.NoError(t, sh.Exec("open 1"))

	out.Reset()
	require.NoError(t, sh.Exec("o 2"))
	assert.Contains(t, out.String(), "Canada (country) has no child divisions\n")
	assert.Contains(t, out.String(), "2    - Canada (country)\n")
}

func TestExec_Errors(t *testing.T) {
	sh, _ := newShell(t)

	assert.ErrorContains(t, sh.Exec("open"), "expected one row number")
	assert.ErrorContains(t, sh.Exec("open x"), `bad row number "x"`)
	assert.ErrorContains(t, sh.Exec("open 9"), "row 9 out of range 1..1")
	assert.ErrorContains(t, sh.Exec("frobnicate"), "unknown command")
}

func TestExec_Quit(t *testing.T) {
	sh, _ := newShell(t)
	for _, cmd := range []string{"quit", "exit", "q"} {
		assert.True(t, errors.Is(sh.Exec(cmd), ErrQuit), cmd)
	}
	assert.NoError(t, sh.Exec("   "))
}

func TestExec_Help(t *testing.T) {
	sh, out := newShell(t)
	require.NoError(t, sh.Exec("help"))
	assert.Contains(t, out.String(), "open <row>")
}

func TestShow_Empty(t *testing.T) {
	tr := tree.New(store.NewMemoryStore(store.WithLogger(logger.Discard())), tree.WithLogger(logger.Discard()))
	require.NoError(t, tr.Initialize())
	var out bytes.Buffer
	require.NoError(t, New(tr, nil, &out).Exec("ls"))
	assert.Equal(t, "No divisions.\n", out.String())
}
