package api

import "encoding/json"

// Division is the row shape shared by the stores, the Redis cache and the
// ingestion pipeline. It mirrors the divisions table column for column.
type Division struct {
	// ID is the opaque division identifier (a UUID in Overture releases).
	ID string `json:"id"`
	// ParentDivisionID is nil for root divisions.
	ParentDivisionID *string `json:"parent_division_id,omitempty"`
	// Subtype is the categorical tag shown next to the name (country, region, ...).
	Subtype string `json:"subtype,omitempty"`
	// HasChildren is precomputed once per dataset by an aggregate pass.
	HasChildren bool `json:"has_children"`
	// Names is the raw multi-locale name structure. Decoded by division.ParseNames.
	Names json.RawMessage `json:"names,omitempty"`
}

// FieldMap tells the ingestion reader where each column lives inside a
// source record. Every value is a JSONPath expression.
type FieldMap struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
	Subtype  string `json:"subtype"`
	Names    string `json:"names"`
}

// DefaultFieldMap matches flat division rows as exported from a release
// (one JSON object per line).
func DefaultFieldMap() FieldMap {
	return FieldMap{
		ID:       "$.id",
		ParentID: "$.parent_division_id",
		Subtype:  "$.subtype",
		Names:    "$.names",
	}
}

// GeoJSONFieldMap matches GeoJSON features, where the columns sit under
// "properties" and the id may be either top level or a property.
func GeoJSONFieldMap() FieldMap {
	return FieldMap{
		ID:       "$.id",
		ParentID: "$.properties.parent_division_id",
		Subtype:  "$.properties.subtype",
		Names:    "$.properties.names",
	}
}

// FieldMapFor returns the preset for a format name ("flat" or "geojson").
func FieldMapFor(format string) (FieldMap, bool) {
	switch format {
	case "", "flat", "jsonl":
		return DefaultFieldMap(), true
	case "geojson", "geojsonseq":
		return GeoJSONFieldMap(), true
	default:
		return FieldMap{}, false
	}
}
