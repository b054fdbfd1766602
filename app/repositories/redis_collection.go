package repositories

import (
	"context"
	"errors"

	"postsapi/app/models"

	"github.com/go-redis/redis/v8"
)

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisCollection stores each record as a JSON string under "<resource>:<id>"
// and keeps the set "<resource>" as an index of identifiers.
type RedisCollection struct {
	client *redis.Client
	schema *models.Schema
}

// NewRedisCollection creates a new RedisCollection.
func NewRedisCollection(client *redis.Client, schema *models.Schema) *RedisCollection {
	return &RedisCollection{client: client, schema: schema}
}

func (c *RedisCollection) key(id string) string {
	return recordKey(c.schema.Name, id)
}

func (c *RedisCollection) indexKey() string {
	return c.schema.Name
}

// Find returns all records in the index that match filter.
func (c *RedisCollection) Find(ctx context.Context, filter models.Filter) ([]models.Record, error) {
	ids, err := c.client.SMembers(ctx, c.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Record{}, nil
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, c.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	records := make([]models.Record, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			// removed between SMEMBERS and GET
			continue
		}
		if err != nil {
			return nil, err
		}
		rec, err := unmarshalRecord(data)
		if err != nil {
			return nil, err
		}
		if filter.Match(rec) {
			records = append(records, rec)
		}
	}
	sortByID(records)
	return records, nil
}

// FindByID retrieves a record by ID.
func (c *RedisCollection) FindByID(ctx context.Context, id string) (models.Record, error) {
	return c.get(ctx, c.client, id)
}

// Create stores the record and indexes it in one MULTI/EXEC.
func (c *RedisCollection) Create(ctx context.Context, fields models.Record) (models.Record, error) {
	rec, err := newRecord(c.schema, fields)
	if err != nil {
		return nil, err
	}
	data, err := marshalEntity(rec)
	if err != nil {
		return nil, err
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key(rec.ID()), data, 0)
		pipe.SAdd(ctx, c.indexKey(), rec.ID())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindByIDAndUpdate merges fields under WATCH so a concurrent write aborts the update.
func (c *RedisCollection) FindByIDAndUpdate(ctx context.Context, id string, fields models.Record) (models.Record, error) {
	key := c.key(id)
	var updated models.Record
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := c.get(ctx, tx, id)
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
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FindByIDAndDelete removes the record and its index entry.
func (c *RedisCollection) FindByIDAndDelete(ctx context.Context, id string) (models.Record, error) {
	key := c.key(id)
	var deleted models.Record
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		var err error
		deleted, err = c.get(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, c.indexKey(), id)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (c *RedisCollection) get(ctx context.Context, cmd stringGetter, id string) (models.Record, error) {
	data, err := cmd.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return unmarshalRecord(data)
}
