package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/repository"
)

// Page bounds for activity reads.
const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 500
)

// ActivityLog records served requests and ledger mutations and answers
// questions about them.
type ActivityLog interface {
	// Record stores entries. Nil entries are skipped.
	Record(ctx context.Context, entries ...*model.Activity) error
	// OrderHistory returns the mutations attempted on an order, newest first.
	OrderHistory(ctx context.Context, orderID primitive.ObjectID, limit int) ([]model.Activity, error)
	// Search returns one page of matching entries and the total match count.
	Search(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, int64, error)
}

// ActivityService implements ActivityLog over an ActivityStore.
type ActivityService struct {
	store repository.ActivityStore
}

// NewActivityService creates an activity service.
func NewActivityService(store repository.ActivityStore) *ActivityService {
	return &ActivityService{store: store}
}

// Record stores entries, defaulting their kind and severity.
func (s *ActivityService) Record(ctx context.Context, entries ...*model.Activity) error {
	batch := make([]*model.Activity, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		if e.Kind == "" {
			e.Kind = model.ActivityRequest
			if e.Action != "" {
				e.Kind = model.ActivityMutation
			}
		}
		if e.Severity == "" {
			e.Severity = model.SeverityInfo
		}
		batch = append(batch, e)
	}
	if len(batch) == 0 {
		return nil
	}
	if err := s.store.Append(ctx, batch...); err != nil {
		return fmt.Errorf("record %d activity entries: %w", len(batch), err)
	}
	return nil
}

// OrderHistory returns up to limit mutations of an order.
func (s *ActivityService) OrderHistory(ctx context.Context, orderID primitive.ObjectID, limit int) ([]model.Activity, error) {
	entries, err := s.store.Find(ctx, model.ActivityFilter{
		Kind:    model.ActivityMutation,
		OrderID: orderID.Hex(),
		Limit:   ClampActivityLimit(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("order %s history: %w", orderID.Hex(), err)
	}
	return entries, nil
}

// Search runs the page query and the count concurrently.
func (s *ActivityService) Search(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, int64, error) {
	filter.Limit = ClampActivityLimit(filter.Limit)
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	var (
		entries []model.Activity
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.store.Find(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("search activity: %w", err)
	}
	return entries, total, nil
}

// ClampActivityLimit maps a requested page size into [1, MaxActivityLimit],
// zero or less meaning DefaultActivityLimit.
func ClampActivityLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultActivityLimit
	case limit > MaxActivityLimit:
		return MaxActivityLimit
	default:
		return limit
	}
}
