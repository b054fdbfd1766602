package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatch(t *testing.T) {
	rec := Record{"_id": "1", "sender": "user123", "title": "Hello", "score": 4.0, "draft": false}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"nil filter", nil, true},
		{"exact match", Filter{"sender": {"user123"}}, true},
		{"mismatch", Filter{"sender": {"user456"}}, false},
		{"all keys must match", Filter{"sender": {"user123"}, "title": {"Other"}}, false},
		{"any of repeated values", Filter{"sender": {"user456", "user123"}}, true},
		{"missing field", Filter{"postId": {"p1"}}, false},
		{"number rendered", Filter{"score": {"4"}}, true},
		{"bool rendered", Filter{"draft": {"false"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(rec))
		})
	}
}

func TestRecordClone(t *testing.T) {
	rec := Record{"_id": "1", "title": "a"}
	clone := rec.Clone()
	clone["title"] = "b"

	assert.Equal(t, "a", rec["title"])
	assert.Equal(t, "1", clone.ID())
	assert.Equal(t, "", Record{}.ID())
}
