package repositories

import (
	"context"
	"errors"
	"fmt"

	"postsapi/app/models"

	"github.com/dgraph-io/badger/v4"
)

// OpenBadger opens the Badger database at path. An empty path opens an
// in-memory database, which is discarded on Close.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return db, nil
}

// BadgerCollection implements Collection using BadgerDB
type BadgerCollection struct {
	db     *badger.DB
	schema *models.Schema
}

// NewBadgerCollection creates a new BadgerCollection
func NewBadgerCollection(db *badger.DB, schema *models.Schema) *BadgerCollection {
	return &BadgerCollection{db: db, schema: schema}
}

func (c *BadgerCollection) key(id string) []byte {
	return []byte(recordKey(c.schema.Name, id))
}

// Find retrieves every record matching the filter
func (c *BadgerCollection) Find(ctx context.Context, filter models.Filter) ([]models.Record, error) {
	records := []models.Record{}
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(recordPrefix(c.schema.Name))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec models.Record
			err := it.Item().Value(func(val []byte) error {
				var err error
				rec, err = unmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if filter.Match(rec) {
				records = append(records, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindByID retrieves a record by ID
func (c *BadgerCollection) FindByID(ctx context.Context, id string) (models.Record, error) {
	var rec models.Record
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = c.get(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Create validates and stores a new record
func (c *BadgerCollection) Create(ctx context.Context, fields models.Record) (models.Record, error) {
	rec, err := newRecord(c.schema, fields)
	if err != nil {
		return nil, err
	}
	data, err := marshalEntity(rec)
	if err != nil {
		return nil, err
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(c.key(rec.ID()), data)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindByIDAndUpdate merges fields into an existing record inside one transaction
func (c *BadgerCollection) FindByIDAndUpdate(ctx context.Context, id string, fields models.Record) (models.Record, error) {
	var updated models.Record
	err := c.db.Update(func(txn *badger.Txn) error {
		existing, err := c.get(txn, id)
		if err != nil {
			return err
		}

		updated, err = c.schema.Merge(existing, fields)
		if err != nil {
			return err
		}
		data, err := marshalEntity(updated)
		if err != nil {
			return err
		}
		return txn.Set(c.key(id), data)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FindByIDAndDelete deletes a record by ID and returns it
func (c *BadgerCollection) FindByIDAndDelete(ctx context.Context, id string) (models.Record, error) {
	var deleted models.Record
	err := c.db.Update(func(txn *badger.Txn) error {
		var err error
		deleted, err = c.get(txn, id)
		if err != nil {
			return err
		}
		return txn.Delete(c.key(id))
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (c *BadgerCollection) get(txn *badger.Txn, id string) (models.Record, error) {
	item, err := txn.Get(c.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec models.Record
	err = item.Value(func(val []byte) error {
		rec, err = unmarshalRecord(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
