//go:build integration

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/circuitbreaker"
	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/repository"
	"github.com/guttosm/meal-ledger/internal/testutil"
)

func TestActivityService_Integration(t *testing.T) {
	ctx := context.Background()

	mongoContainer, err := testutil.StartMongo(ctx)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, mongoContainer.Terminate(ctx))
	}()

	db, err := repository.NewMongoDB(mongoContainer.URI, "test_meal_ledger")
	require.NoError(t, err)
	defer func() {
		_ = db.Close(ctx)
	}()
	require.NoError(t, db.SetActivityTTL(ctx, 30*24*time.Hour))

	cb := circuitbreaker.New(circuitbreaker.DefaultConfig())
	svc := NewActivityService(repository.NewActivityStoreWithCircuitBreaker(repository.NewActivityRepository(db), cb))

	orderID := primitive.NewObjectID()
	start := time.Now().UTC().Add(-time.Minute)
	for i, action := range []string{"order.create", "leave.add", "attendance.mark"} {
		entry := &model.Activity{
			At:           start.Add(time.Duration(i) * time.Second),
			Action:       action,
			OrderID:      orderID.Hex(),
			SubscriberID: "sub-1",
		}
		require.NoError(t, svc.Record(ctx, entry))
	}
	require.NoError(t, svc.Record(ctx,
		&model.Activity{Method: "GET", Route: "/api/v1/orders/:id", OrderID: orderID.Hex(), Status: 200},
		(&model.Activity{Action: "leave.add", OrderID: orderID.Hex()}).Fail(assert.AnError),
	))

	t.Run("order history", func(t *testing.T) {
		history, err := svc.OrderHistory(ctx, orderID, 0)
		require.NoError(t, err)
		require.Len(t, history, 4)
		for _, entry := range history {
			assert.Equal(t, model.ActivityMutation, entry.Kind)
		}
		assert.True(t, history[0].Failed())
		assert.Equal(t, "order.create", history[3].Action)
	})

	t.Run("history is limited", func(t *testing.T) {
		history, err := svc.OrderHistory(ctx, orderID, 2)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("search pages and counts", func(t *testing.T) {
		entries, total, err := svc.Search(ctx, model.ActivityFilter{SubscriberID: "sub-1", Limit: 2})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, int64(3), total)
	})

	t.Run("search by severity", func(t *testing.T) {
		_, total, err := svc.Search(ctx, model.ActivityFilter{Severity: model.SeverityWarn})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	assert.Equal(t, "closed", cb.GetStats().State)
}
