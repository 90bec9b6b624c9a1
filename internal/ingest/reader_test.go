package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/agentic-research/divtree/api"
	"github.com/agentic-research/divtree/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceTarget struct {
	rows []api.Division
	err  error
}

func (s *sliceTarget) Add(row api.Division) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, row)
	return nil
}

func newReader(t *testing.T, fm api.FieldMap) *Reader {
	t.Helper()
	r, err := NewReader(fm, logger.Discard())
	require.NoError(t, err)
	return r
}

const flatInput = `{"id":"1","subtype":"country","names":{"primary":"World"}}
{"id":"2","parent_division_id":"1","subtype":"country","names":{"primary":"United States","common":{"en":"USA"}}}

{"id":"3","parent_division_id":"1","subtype":"country","names":{"primary":"Canada"}}
`

func TestLoad_Flat(t *testing.T) {
	var tgt sliceTarget
	st, err := newReader(t, api.DefaultFieldMap()).Load(strings.NewReader(flatInput), &tgt)
	require.NoError(t, err)
	assert.Equal(t, Stats{Records: 3}, st)
	require.Len(t, tgt.rows, 3)

	assert.Equal(t, "1", tgt.rows[0].ID)
	assert.Nil(t, tgt.rows[0].ParentDivisionID)
	require.NotNil(t, tgt.rows[1].ParentDivisionID)
	assert.Equal(t, "1", *tgt.rows[1].ParentDivisionID)
	assert.Equal(t, "country", tgt.rows[1].Subtype)
	assert.JSONEq(t, `{"primary":"United States","common":{"en":"USA"}}`, string(tgt.rows[1].Names))
}

func TestLoad_GeoJSONSequence(t *testing.T) {
	input := "\x1e" + `{"type":"Feature","id":"us","properties":{"subtype":"country","names":{"primary":"United States"}},"geometry":null}` + "\n" +
		"\x1e" + `{"type":"Feature","id":"tx","properties":{"parent_division_id":"us","subtype":"region","names":{"primary":"Texas"}},"geometry":null}` + "\n"

	var tgt sliceTarget
	st, err := newReader(t, api.GeoJSONFieldMap()).Load(strings.NewReader(input), &tgt)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Records)
	require.Len(t, tgt.rows, 2)
	assert.Equal(t, "us", tgt.rows[0].ID)
	assert.Equal(t, "region", tgt.rows[1].Subtype)
	require.NotNil(t, tgt.rows[1].ParentDivisionID)
	assert.Equal(t, "us", *tgt.rows[1].ParentDivisionID)
}

func TestLoad_SkipsBadLines(t *testing.T) {
	input := `{"id":"1","subtype":"country"}
not json at all
{"subtype":"orphan without id"}
{"id":"","subtype":"empty id"}
{"id":2,"parent_division_id":1,"subtype":"region"}
`
	var tgt sliceTarget
	st, err := newReader(t, api.DefaultFieldMap()).Load(strings.NewReader(input), &tgt)
	require.NoError(t, err)
	assert.Equal(t, Stats{Records: 2, Skipped: 3}, st)

	// Numeric ids are rendered as text.
	assert.Equal(t, "2", tgt.rows[1].ID)
	assert.Equal(t, "1", *tgt.rows[1].ParentDivisionID)
	assert.Nil(t, tgt.rows[1].Names)
}

func TestLoad_TargetErrorAborts(t *testing.T) {
	boom := errors.New("disk full")
	st, err := newReader(t, api.DefaultFieldMap()).Load(strings.NewReader(flatInput), &sliceTarget{err: boom})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "line 1")
	assert.Equal(t, 0, st.Records)
}

func TestExtract_NoID(t *testing.T) {
	_, err := newReader(t, api.DefaultFieldMap()).Extract(map[string]any{"subtype": "x"})
	assert.ErrorIs(t, err, ErrNoID)
}

func TestNewReader_BadPath(t *testing.T) {
	fm := api.DefaultFieldMap()
	fm.Names = "$.names["
	_, err := NewReader(fm, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jsonpath")
}

func TestFieldMapFor(t *testing.T) {
	fm, ok := api.FieldMapFor("geojson")
	require.True(t, ok)
	assert.Equal(t, "$.properties.names", fm.Names)

	fm, ok = api.FieldMapFor("")
	require.True(t, ok)
	assert.Equal(t, api.DefaultFieldMap(), fm)

	_, ok = api.FieldMapFor("xml")
	assert.False(t, ok)
}

func TestLoad_LargeNumericIDsStayDistinct(t *testing.T) {
	input := `{"id":9007199254740993,"subtype":"country"}
{"id":9007199254740992,"subtype":"country"}
{"id":12345678901234567890,"parent_division_id":9007199254740993,"subtype":"region","names":{"primary":"Big","rank":1.5}}
`
	var tgt sliceTarget
	st, err := newReader(t, api.DefaultFieldMap()).Load(strings.NewReader(input), &tgt)
	require.NoError(t, err)
	assert.Equal(t, Stats{Records: 3}, st)
	require.Len(t, tgt.rows, 3)

	assert.Equal(t, "9007199254740993", tgt.rows[0].ID)
	assert.Equal(t, "9007199254740992", tgt.rows[1].ID)
	assert.Equal(t, "12345678901234567890", tgt.rows[2].ID)
	require.NotNil(t, tgt.rows[2].ParentDivisionID)
	assert.Equal(t, "9007199254740993", *tgt.rows[2].ParentDivisionID)
	assert.JSONEq(t, `{"primary":"Big","rank":1.5}`, string(tgt.rows[2].Names))
}

func TestLoad_TrailingDataIsSkipped(t *testing.T) {
	input := `{"id":"1"} {"id":"2"}
{"id":"3"}
`
	var tgt sliceTarget
	st, err := newReader(t, api.DefaultFieldMap()).Load(strings.NewReader(input), &tgt)
	require.NoError(t, err)
	assert.Equal(t, Stats{Records: 1, Skipped: 1}, st)
	assert.Equal(t, "3", tgt.rows[0].ID)
}
