package repositories

import (
	"context"

	"postsapi/app/models"
)

// Collection is a store of records of one resource type.
//
// Lookups by identifier return ErrNotFound when no record matches. Create and
// FindByIDAndUpdate validate against the collection's schema and return
// *models.ValidationError on rejection.
type Collection interface {
	// Find returns every record matching filter, oldest first.
	Find(ctx context.Context, filter models.Filter) ([]models.Record, error)
	// FindByID returns the record with the given identifier.
	FindByID(ctx context.Context, id string) (models.Record, error)
	// Create inserts a new record and returns it with its assigned identifier.
	Create(ctx context.Context, fields models.Record) (models.Record, error)
	// FindByIDAndUpdate applies fields to the record and returns it as stored after the update.
	FindByIDAndUpdate(ctx context.Context, id string, fields models.Record) (models.Record, error)
	// FindByIDAndDelete removes the record and returns what was removed.
	FindByIDAndDelete(ctx context.Context, id string) (models.Record, error)
}
