package services

import (
	"context"
	"errors"
	"time"

	"postsapi/app/metrics"
	"postsapi/app/models"
	"postsapi/app/repositories"

	"github.com/rs/zerolog"
)

// Outcome labels for store calls.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// CollectionService wraps a Collection and times every call it forwards.
// It adds no behaviour of its own: results and errors pass through untouched.
type CollectionService struct {
	resource   string
	collection repositories.Collection
	metrics    *metrics.Metrics
}

var _ repositories.Collection = (*CollectionService)(nil)

// NewCollectionService creates a new CollectionService
func NewCollectionService(resource string, collection repositories.Collection, m *metrics.Metrics) *CollectionService {
	return &CollectionService{
		resource:   resource,
		collection: collection,
		metrics:    m,
	}
}

func (s *CollectionService) Find(ctx context.Context, filter models.Filter) ([]models.Record, error) {
	start := time.Now()
	records, err := s.collection.Find(ctx, filter)
	s.observe(ctx, "find", start, err)
	return records, err
}

func (s *CollectionService) FindByID(ctx context.Context, id string) (models.Record, error) {
	start := time.Now()
	rec, err := s.collection.FindByID(ctx, id)
	s.observe(ctx, "find_by_id", start, err)
	return rec, err
}

func (s *CollectionService) Create(ctx context.Context, fields models.Record) (models.Record, error) {
	start := time.Now()
	rec, err := s.collection.Create(ctx, fields)
	s.observe(ctx, "create", start, err)
	return rec, err
}

func (s *CollectionService) FindByIDAndUpdate(ctx context.Context, id string, fields models.Record) (models.Record, error) {
	start := time.Now()
	rec, err := s.collection.FindByIDAndUpdate(ctx, id, fields)
	s.observe(ctx, "update", start, err)
	return rec, err
}

func (s *CollectionService) FindByIDAndDelete(ctx context.Context, id string) (models.Record, error) {
	start := time.Now()
	rec, err := s.collection.FindByIDAndDelete(ctx, id)
	s.observe(ctx, "delete", start, err)
	return rec, err
}

func (s *CollectionService) observe(ctx context.Context, operation string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := Outcome(err)
	if s.metrics != nil {
		s.metrics.ObserveStore(s.resource, operation, outcome, elapsed)
	}
	zerolog.Ctx(ctx).Debug().
		Str("resource", s.resource).
		Str("operation", operation).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("store call")
}

// Outcome classifies the error returned by a Collection call.
func Outcome(err error) string {
	var verr *models.ValidationError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, repositories.ErrNotFound):
		return OutcomeNotFound
	case errors.As(err, &verr):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
