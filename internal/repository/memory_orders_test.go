//go:build !integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

func sampleOrder(subscriberID string, start time.Time, days int) *model.Order {
	order := &model.Order{
		SubscriberID: subscriberID,
		Plan:         model.Plan{model.Breakfast, model.Dinner},
		PeriodStart:  start,
		PeriodEnd:    calendar.AddDays(start, days-1),
		Status:       model.StatusUpcoming,
	}
	for i := range days {
		order.Attendances = append(order.Attendances, model.AttendanceDay{
			Date:      calendar.AddDays(start, i),
			Breakfast: model.MealPacked,
			Lunch:     model.MealNotApplicable,
			Dinner:    model.MealPacked,
		})
	}
	return order
}

func TestMemoryOrderStore_InsertLoadSave(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrderStore()

	order := sampleOrder("sub-1", calendar.Date(2024, time.March, 1), 3)
	require.NoError(t, store.Insert(ctx, order))
	assert.False(t, order.ID.IsZero())
	assert.Equal(t, int64(1), order.Version)
	assert.False(t, order.CreatedAt.IsZero())

	loaded, err := store.Load(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order, loaded)

	// Mutating the loaded copy must not leak into the store.
	loaded.Attendances[0].Breakfast = model.MealDelivered
	again, err := store.Load(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MealPacked, again.Attendances[0].Breakfast)

	require.NoError(t, store.Save(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version)

	again, err = store.Load(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MealDelivered, again.Attendances[0].Breakfast)
}

func TestMemoryOrderStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrderStore()

	_, err := store.Load(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrOrderNotFound)

	missing := sampleOrder("sub-1", calendar.Date(2024, time.March, 1), 1)
	missing.ID = primitive.NewObjectID()
	assert.ErrorIs(t, store.Save(ctx, missing), ErrOrderNotFound)
	assert.ErrorIs(t, store.Delete(ctx, missing.ID), ErrOrderNotFound)

	order := sampleOrder("sub-1", calendar.Date(2024, time.March, 1), 1)
	require.NoError(t, store.Insert(ctx, order))
	stale := order.Clone()
	require.NoError(t, store.Save(ctx, order))
	assert.ErrorIs(t, store.Save(ctx, stale), ErrVersionConflict)

	require.NoError(t, store.Delete(ctx, order.ID))
	_, err = store.Load(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMemoryOrderStore_ListIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrderStore()

	var want []primitive.ObjectID
	for range 5 {
		o := sampleOrder("sub", calendar.Date(2024, time.March, 1), 1)
		require.NoError(t, store.Insert(ctx, o))
		want = append(want, o.ID)
	}

	var got []primitive.ObjectID
	after := primitive.NilObjectID
	for {
		page, err := store.ListIDs(ctx, after, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		assert.LessOrEqual(t, len(page), 2)
		got = append(got, page...)
		after = page[len(page)-1]
	}
	assert.Equal(t, want, got)
}

func TestMemoryOrderStore_Queries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrderStore()

	march := sampleOrder("sub-1", calendar.Date(2024, time.March, 1), 3)
	january := sampleOrder("sub-1", calendar.Date(2024, time.January, 1), 3)
	january.Billed = true
	other := sampleOrder("sub-2", calendar.Date(2024, time.March, 2), 5)
	for _, o := range []*model.Order{march, january, other} {
		require.NoError(t, store.Insert(ctx, o))
	}

	t.Run("by subscriber sorted by period", func(t *testing.T) {
		orders, err := store.FindBySubscriber(ctx, "sub-1")
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, january.ID, orders[0].ID)
		assert.Equal(t, march.ID, orders[1].ID)
		assert.Nil(t, orders[0].Attendances)
	})

	t.Run("covering a day", func(t *testing.T) {
		day := calendar.Date(2024, time.March, 3)
		orders, err := store.FindCovering(ctx, day)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		for _, o := range orders {
			require.Len(t, o.Attendances, 1)
			assert.True(t, o.Attendances[0].Date.Equal(day))
		}

		orders, err = store.FindCovering(ctx, calendar.Date(2024, time.February, 1))
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("unbilled expired", func(t *testing.T) {
		n, err := store.CountUnbilledExpired(ctx, calendar.Date(2024, time.March, 4))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = store.CountUnbilledExpired(ctx, calendar.Date(2024, time.December, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}
