// Package repository provides interfaces for repository operations.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/domain/model"
)

var (
	// ErrOrderNotFound is returned when no order has the requested id.
	ErrOrderNotFound = errors.New("order not found")
	// ErrVersionConflict is returned when an order was modified since it was loaded.
	// Callers may reload and retry.
	ErrVersionConflict = errors.New("order was modified concurrently")
)

// OrderStore persists order aggregates. Save and Insert advance Version and
// UpdatedAt on the order they are given.
type OrderStore interface {
	Insert(ctx context.Context, order *model.Order) error
	Load(ctx context.Context, id primitive.ObjectID) (*model.Order, error)
	Save(ctx context.Context, order *model.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ListIDs pages through order ids in ascending order, starting after the
	// given id (NilObjectID for the first page).
	ListIDs(ctx context.Context, after primitive.ObjectID, limit int) ([]primitive.ObjectID, error)
	// FindBySubscriber returns the orders of a subscriber without their attendance ledger.
	FindBySubscriber(ctx context.Context, subscriberID string) ([]*model.Order, error)
	// FindCovering returns the orders whose period includes day, each carrying
	// only the attendance record of that day.
	FindCovering(ctx context.Context, day time.Time) ([]*model.Order, error)
	// CountUnbilledExpired counts unbilled orders whose period ended before today.
	CountUnbilledExpired(ctx context.Context, today time.Time) (int64, error)
}

// ActivityStore appends to and reads the activity log.
type ActivityStore interface {
	Append(ctx context.Context, entries ...*model.Activity) error
	Find(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, error)
	Count(ctx context.Context, filter model.ActivityFilter) (int64, error)
}
