// Package repository provides circuit breaker wrappers for MongoDB operations.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/circuitbreaker"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// IsStoreFailure reports whether err indicates an unhealthy store. Missing
// orders and version conflicts are answers from a working database.
func IsStoreFailure(err error) bool {
	return !errors.Is(err, ErrOrderNotFound) && !errors.Is(err, ErrVersionConflict)
}

// OrderStoreWithCircuitBreaker wraps an OrderStore with circuit breaker protection.
type OrderStoreWithCircuitBreaker struct {
	store          OrderStore
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewOrderStoreWithCircuitBreaker creates a new store wrapper with circuit breaker.
func NewOrderStoreWithCircuitBreaker(store OrderStore, cb *circuitbreaker.CircuitBreaker) *OrderStoreWithCircuitBreaker {
	return &OrderStoreWithCircuitBreaker{
		store:          store,
		circuitBreaker: cb,
	}
}

// Insert stores a new order with circuit breaker protection.
func (r *OrderStoreWithCircuitBreaker) Insert(ctx context.Context, order *model.Order) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.store.Insert(ctx, order)
	})
}

// Load returns an order with circuit breaker protection.
func (r *OrderStoreWithCircuitBreaker) Load(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	var result *model.Order
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.store.Load(ctx, id)
		return cbErr
	})
	return result, err
}

// Save replaces an order with circuit breaker protection.
func (r *OrderStoreWithCircuitBreaker) Save(ctx context.Context, order *model.Order) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.store.Save(ctx, order)
	})
}

// Delete removes an order with circuit breaker protection.
func (r *OrderStoreWithCircuitBreaker) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.store.Delete(ctx, id)
	})
}

// ListIDs pages through order ids with circuit breaker protection.
func (r *OrderStoreWithCircuitBreaker) ListIDs(ctx context.Context, after primitive.ObjectID, limit int) ([]primitive.ObjectID, error) {
	var result []primitive.ObjectID
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.store.ListIDs(ctx, after, limit)
		return cbErr
	})
	return result, err
}

// FindBySubscriber returns a subscriber's orders with circuit breaker protection.
func (r *OrderStoreWithCircuitBreaker) FindBySubscriber(ctx context.Context, subscriberID string) ([]*model.Order, error) {
	var result []*model.Order
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.store.FindBySubscriber(ctx, subscriberID)
		return cbErr
	})
	return result, err
}

// FindCovering returns the orders active on a day with circuit breaker protection.
func (r *OrderStoreWithCircuitBreaker) FindCovering(ctx context.Context, day time.Time) ([]*model.Order, error) {
	var result []*model.Order
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.store.FindCovering(ctx, day)
		return cbErr
	})
	return result, err
}

// CountUnbilledExpired counts unbilled expired orders with circuit breaker protection.
func (r *OrderStoreWithCircuitBreaker) CountUnbilledExpired(ctx context.Context, today time.Time) (int64, error) {
	var result int64
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.store.CountUnbilledExpired(ctx, today)
		return cbErr
	})
	return result, err
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *OrderStoreWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// ActivityStoreWithCircuitBreaker wraps an ActivityStore with circuit breaker protection.
type ActivityStoreWithCircuitBreaker struct {
	store          ActivityStore
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewActivityStoreWithCircuitBreaker creates a new store wrapper with circuit breaker.
func NewActivityStoreWithCircuitBreaker(store ActivityStore, cb *circuitbreaker.CircuitBreaker) *ActivityStoreWithCircuitBreaker {
	return &ActivityStoreWithCircuitBreaker{
		store:          store,
		circuitBreaker: cb,
	}
}

// Append stores entries with circuit breaker protection.
func (r *ActivityStoreWithCircuitBreaker) Append(ctx context.Context, entries ...*model.Activity) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.store.Append(ctx, entries...)
	})
}

// Find returns matching entries with circuit breaker protection.
func (r *ActivityStoreWithCircuitBreaker) Find(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, error) {
	var result []model.Activity
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.store.Find(ctx, filter)
		return cbErr
	})
	return result, err
}

// Count counts matching entries with circuit breaker protection.
func (r *ActivityStoreWithCircuitBreaker) Count(ctx context.Context, filter model.ActivityFilter) (int64, error) {
	var result int64
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.store.Count(ctx, filter)
		return cbErr
	})
	return result, err
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *ActivityStoreWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}
