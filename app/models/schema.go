package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports field names by their JSON tag so messages match the wire format.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Schema describes the fields a collection accepts for one resource and
// normalises incoming records against its document type.
type Schema struct {
	// Name is the resource name, used for storage keys and error messages.
	Name string
	// Timestamps attaches an immutable createdAt on insert.
	Timestamps bool

	newDocument func() any
}

// NewSchema builds a schema whose records are checked against the struct newDocument returns.
func NewSchema(name string, timestamps bool, newDocument func() any) *Schema {
	return &Schema{Name: name, Timestamps: timestamps, newDocument: newDocument}
}

// Prepare validates fields for insertion and returns the record to store,
// carrying the given identifier and, for timestamped schemas, the creation time.
func (s *Schema) Prepare(fields Record, id string, now time.Time) (Record, error) {
	rec, err := s.normalize(fields)
	if err != nil {
		return nil, err
	}
	rec[IDField] = id
	if s.Timestamps {
		rec[CreatedAtField] = now.UTC().Format(time.RFC3339Nano)
	}
	return rec, nil
}

// Merge applies patch on top of existing and re-validates the result.
// The identifier and creation time of existing are preserved.
func (s *Schema) Merge(existing, patch Record) (Record, error) {
	merged := existing.Clone()
	for k, v := range patch {
		merged[k] = v
	}

	rec, err := s.normalize(merged)
	if err != nil {
		return nil, err
	}
	rec[IDField] = existing[IDField]
	if created, ok := existing[CreatedAtField]; ok && s.Timestamps {
		rec[CreatedAtField] = created
	}
	return rec, nil
}

// normalize decodes fields into the schema document, validates it and
// re-encodes it, dropping anything the document does not declare.
func (s *Schema) normalize(fields Record) (Record, error) {
	input := fields.Clone()
	delete(input, IDField)
	delete(input, CreatedAtField)

	data, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", s.Name, err)
	}

	doc := s.newDocument()
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{
				Resource: s.Name,
				Fields: []FieldError{{
					Field:   typeErr.Field,
					Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type),
				}},
			}
		}
		return nil, fmt.Errorf("failed to decode %s: %w", s.Name, err)
	}

	if err := validate.Struct(doc); err != nil {
		return nil, newValidationError(s.Name, err)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", s.Name, err)
	}
	rec := Record{}
	if err := json.Unmarshal(out, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.Name, err)
	}
	return rec, nil
}
