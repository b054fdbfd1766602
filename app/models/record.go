package models

import (
	"encoding/json"
	"slices"
	"strconv"
)

const (
	// IDField holds the store-assigned identifier of every record.
	IDField = "_id"
	// CreatedAtField holds the insertion timestamp for schemas with timestamps.
	CreatedAtField = "createdAt"
)

// Record is one stored document: field name to JSON value.
type Record map[string]any

// ID returns the record identifier, or "" if it has none.
func (r Record) ID() string {
	id, _ := r[IDField].(string)
	return id
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Filter is an exact-match query: every key must equal one of its values.
// It has the shape of url.Values so a query string converts directly.
type Filter map[string][]string

// Match reports whether rec satisfies every condition in the filter.
// An empty filter matches every record.
func (f Filter) Match(rec Record) bool {
	for field, values := range f {
		v, ok := rec[field]
		if !ok {
			return false
		}
		if !slices.Contains(values, fieldString(v)) {
			return false
		}
	}
	return true
}

// fieldString renders a decoded JSON value the way it would appear in a query string.
func fieldString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return "null"
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
