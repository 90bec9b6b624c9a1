package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/agentic-research/divtree/api"
	"github.com/agentic-research/divtree/internal/logger"
	"github.com/ohler55/ojg/jp"
)

// ErrNoID is returned for records whose id selector matched nothing.
var ErrNoID = errors.New("record has no id")

// maxLine bounds a single JSON record; division geometries can be large.
const maxLine = 64 << 20

// Reader streams newline-delimited JSON records (flat rows, GeoJSON
// features, or RFC 8142 GeoJSON text sequences) and projects each one onto
// the divisions row shape using JSONPath selectors.
type Reader struct {
	id, parent, subtype, names jp.Expr
	log                        *slog.Logger
}

// NewReader compiles the selectors in fm.
func NewReader(fm api.FieldMap, log *slog.Logger) (*Reader, error) {
	r := &Reader{log: logger.Or(log)}
	for _, f := range []struct {
		dst *jp.Expr
		sel string
	}{
		{&r.id, fm.ID},
		{&r.parent, fm.ParentID},
		{&r.subtype, fm.Subtype},
		{&r.names, fm.Names},
	} {
		x, err := jp.ParseString(f.sel)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonpath '%s': %w", f.sel, err)
		}
		*f.dst = x
	}
	return r, nil
}

// Load streams src into t. Undecodable lines and records without an id are
// logged and counted, not fatal; an error from t aborts the load.
func (r *Reader) Load(src io.Reader, t Target) (Stats, error) {
	var st Stats
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 1<<20), maxLine)

	line := 0
	for sc.Scan() {
		line++
		// GeoJSON text sequences prefix each record with RS (0x1E).
		raw := bytes.TrimSpace(bytes.TrimLeft(sc.Bytes(), "\x1e"))
		if len(raw) == 0 {
			continue
		}
		record, err := decodeRecord(raw)
		if err != nil {
			st.Skipped++
			r.log.Warn("skipping undecodable line", "line", line, "err", err)
			continue
		}
		row, err := r.Extract(record)
		if err != nil {
			st.Skipped++
			r.log.Warn("skipping record", "line", line, "err", err)
			continue
		}
		if err := t.Add(row); err != nil {
			return st, fmt.Errorf("line %d: %w", line, err)
		}
		st.Records++
	}
	if err := sc.Err(); err != nil {
		return st, fmt.Errorf("read line %d: %w", line+1, err)
	}
	return st, nil
}

// decodeRecord parses one JSON value, keeping numbers as json.Number so
// integer ids above 2^53 keep their exact digits.
func decodeRecord(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var record any
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after record")
	}
	return record, nil
}

// LoadFile is Load over the file at path.
func (r *Reader) LoadFile(path string, t Target) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = f.Close() }() // read-only
	return r.Load(f, t)
}

// Extract projects one decoded record onto a row.
func (r *Reader) Extract(record any) (api.Division, error) {
	id := scalar(first(r.id, record))
	if id == "" {
		return api.Division{}, ErrNoID
	}
	row := api.Division{
		ID:      id,
		Subtype: scalar(first(r.subtype, record)),
	}
	if p := scalar(first(r.parent, record)); p != "" {
		row.ParentDivisionID = &p
	}
	if names := first(r.names, record); names != nil {
		b, err := json.Marshal(names)
		if err != nil {
			return api.Division{}, fmt.Errorf("encode names of %s: %w", id, err)
		}
		row.Names = b
	}
	return row, nil
}

func first(x jp.Expr, record any) any {
	results := x.Get(record)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// scalar renders ids and tags that may arrive as strings or numbers.
func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
