package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"postsapi/app/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
)

// recordKey builds the storage key for a record: "<resource>:<id>".
func recordKey(resource, id string) string {
	return resource + ":" + id
}

// recordPrefix is the key prefix shared by every record of a resource.
func recordPrefix(resource string) string {
	return resource + ":"
}

// newID returns a time-ordered identifier, so key order follows insertion order.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// newRecord validates fields against schema and stamps a fresh identifier.
func newRecord(schema *models.Schema, fields models.Record) (models.Record, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	return schema.Prepare(fields, id, time.Now())
}

// sortByID orders records by identifier, which is insertion order for generated ids.
func sortByID(records []models.Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID() < records[j].ID()
	})
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %v", err)
	}
	return data, nil
}

// unmarshalRecord unmarshals stored JSON data into a record
func unmarshalRecord(data []byte) (models.Record, error) {
	rec := models.Record{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %v", err)
	}
	return rec, nil
}
