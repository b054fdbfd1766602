package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"postsapi/app/models"
	"postsapi/app/repositories"
)

// Collection is an in-memory repositories.Collection. Identifiers are
// sequential ("1", "2", ...) and Fail makes every later call return an error.
type Collection struct {
	schema  *models.Schema
	records map[string]models.Record
	order   []string
	nextID  int
	err     error
	mutex   sync.RWMutex
}

var _ repositories.Collection = (*Collection)(nil)

func NewCollection(schema *models.Schema) *Collection {
	return &Collection{
		schema:  schema,
		records: make(map[string]models.Record),
		nextID:  1,
	}
}

// Fail makes every subsequent operation return err. Pass nil to recover.
func (m *Collection) Fail(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.err = err
}

// Len returns the number of stored records.
func (m *Collection) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.records)
}

func (m *Collection) Find(ctx context.Context, filter models.Filter) ([]models.Record, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	records := []models.Record{}
	for _, id := range m.order {
		rec, exists := m.records[id]
		if exists && filter.Match(rec) {
			records = append(records, rec.Clone())
		}
	}
	return records, nil
}

func (m *Collection) FindByID(ctx context.Context, id string) (models.Record, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	rec, exists := m.records[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *Collection) Create(ctx context.Context, fields models.Record) (models.Record, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	id := fmt.Sprint(m.nextID)
	rec, err := m.schema.Prepare(fields, id, time.Now())
	if err != nil {
		return nil, err
	}
	m.nextID++
	m.records[id] = rec
	m.order = append(m.order, id)
	return rec.Clone(), nil
}

func (m *Collection) FindByIDAndUpdate(ctx context.Context, id string, fields models.Record) (models.Record, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	existing, exists := m.records[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	updated, err := m.schema.Merge(existing, fields)
	if err != nil {
		return nil, err
	}
	m.records[id] = updated
	return updated.Clone(), nil
}

func (m *Collection) FindByIDAndDelete(ctx context.Context, id string) (models.Record, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	rec, exists := m.records[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	delete(m.records, id)
	return rec, nil
}
