package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postsapi/app/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoCollection keeps one MongoDB collection per resource, named after the schema.
// Identifiers are stored as strings in _id.
type MongoCollection struct {
	coll   *mongo.Collection
	schema *models.Schema
}

// NewMongoCollection creates a new MongoCollection in db.
func NewMongoCollection(db *mongo.Database, schema *models.Schema) *MongoCollection {
	return &MongoCollection{coll: db.Collection(schema.Name), schema: schema}
}

// Find sorts by _id. Filters that cannot match a stored field return no records.
func (c *MongoCollection) Find(ctx context.Context, filter models.Filter) ([]models.Record, error) {
	query, ok := mongoFilter(filter)
	if !ok {
		return []models.Record{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: models.IDField, Value: 1}})
	cursor, err := c.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.Record{}
	for cursor.Next(ctx) {
		rec, err := decodeMongoRecord(cursor.Current)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// FindByID retrieves a record by ID.
func (c *MongoCollection) FindByID(ctx context.Context, id string) (models.Record, error) {
	return singleRecord(c.coll.FindOne(ctx, bson.M{models.IDField: id}))
}

// Create validates and inserts a new document.
func (c *MongoCollection) Create(ctx context.Context, fields models.Record) (models.Record, error) {
	rec, err := newRecord(c.schema, fields)
	if err != nil {
		return nil, err
	}
	if _, err := c.coll.InsertOne(ctx, bson.M(rec)); err != nil {
		return nil, err
	}
	return rec, nil
}

// FindByIDAndUpdate validates the merged document and $sets it, returning the document after the update.
func (c *MongoCollection) FindByIDAndUpdate(ctx context.Context, id string, fields models.Record) (models.Record, error) {
	existing, err := c.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged, err := c.schema.Merge(existing, fields)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	for k, v := range merged {
		if k != models.IDField {
			set[k] = v
		}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return singleRecord(c.coll.FindOneAndUpdate(ctx, bson.M{models.IDField: id}, bson.M{"$set": set}, opts))
}

// FindByIDAndDelete deletes a document by ID and returns it.
func (c *MongoCollection) FindByIDAndDelete(ctx context.Context, id string) (models.Record, error) {
	return singleRecord(c.coll.FindOneAndDelete(ctx, bson.M{models.IDField: id}))
}

// mongoFilter translates filter to {field: {$eq: value}} or {field: {$in: values}}.
// It reports false when a key names an operator or a nested path rather than a
// top-level field, since no stored record can match it.
func mongoFilter(filter models.Filter) (bson.M, bool) {
	query := bson.M{}
	for field, values := range filter {
		if field == "" || strings.HasPrefix(field, "$") || strings.Contains(field, ".") || len(values) == 0 {
			return nil, false
		}
		if len(values) == 1 {
			query[field] = bson.M{"$eq": values[0]}
		} else {
			query[field] = bson.M{"$in": values}
		}
	}
	return query, true
}

func singleRecord(res *mongo.SingleResult) (models.Record, error) {
	raw, err := res.Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeMongoRecord(raw)
}

// decodeMongoRecord converts a BSON document to a record through relaxed extended JSON,
// which renders strings, numbers and booleans as plain JSON.
func decodeMongoRecord(raw bson.Raw) (models.Record, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}
	return unmarshalRecord(data)
}
