//go:build !integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/circuitbreaker"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// failingStore fails every call with err.
type failingStore struct {
	OrderStore
	err error
}

func (f failingStore) Load(context.Context, primitive.ObjectID) (*model.Order, error) {
	return nil, f.err
}

func newTestBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		Name:             "orders",
		IsFailure:        IsStoreFailure,
	})
}

func TestIsStoreFailure(t *testing.T) {
	assert.False(t, IsStoreFailure(ErrOrderNotFound))
	assert.False(t, IsStoreFailure(ErrVersionConflict))
	assert.False(t, IsStoreFailure(errors.Join(errors.New("save"), ErrVersionConflict)))
	assert.True(t, IsStoreFailure(errors.New("server selection timeout")))
}

func TestOrderStoreWithCircuitBreaker_PassesThrough(t *testing.T) {
	ctx := context.Background()
	cb := newTestBreaker()
	store := NewOrderStoreWithCircuitBreaker(NewMemoryOrderStore(), cb)

	order := sampleOrder("sub-1", calendar.Date(2024, time.March, 1), 2)
	require.NoError(t, store.Insert(ctx, order))

	loaded, err := store.Load(ctx, order.ID)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, loaded))

	ids, err := store.ListIDs(ctx, primitive.NilObjectID, 10)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{order.ID}, ids)

	orders, err := store.FindBySubscriber(ctx, "sub-1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = store.FindCovering(ctx, order.PeriodStart)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	n, err := store.CountUnbilledExpired(ctx, calendar.Date(2025, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.Delete(ctx, order.ID))
	for range 3 {
		_, err = store.Load(ctx, order.ID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	}
	assert.Equal(t, circuitbreaker.StateClosed, store.GetCircuitBreaker().State())
}

func TestOrderStoreWithCircuitBreaker_OpensOnOutage(t *testing.T) {
	ctx := context.Background()
	cb := newTestBreaker()
	outage := errors.New("no reachable servers")
	store := NewOrderStoreWithCircuitBreaker(failingStore{err: outage}, cb)

	for range 2 {
		_, err := store.Load(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, outage)
	}
	_, err := store.Load(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.True(t, cb.IsOpen())
}
