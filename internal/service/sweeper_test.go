package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/ledger"
	"github.com/guttosm/meal-ledger/internal/repository"
)

// cancelingStore cancels the sweep once a number of orders have been loaded.
type cancelingStore struct {
	*repository.MemoryOrderStore
	cancel context.CancelFunc
	after  int32
	loads  atomic.Int32
}

func (s *cancelingStore) Load(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	if s.loads.Add(1) == s.after {
		s.cancel()
	}
	return s.MemoryOrderStore.Load(ctx, id)
}

// blockingStore holds ListIDs until release is closed.
type blockingStore struct {
	*repository.MemoryOrderStore
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) ListIDs(ctx context.Context, after primitive.ObjectID, limit int) ([]primitive.ObjectID, error) {
	close(s.entered)
	<-s.release
	return s.MemoryOrderStore.ListIDs(ctx, after, limit)
}

// vanishingStore lists orders that can no longer be loaded.
type vanishingStore struct {
	*repository.MemoryOrderStore
}

func (s *vanishingStore) Load(context.Context, primitive.ObjectID) (*model.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func seedOrders(t *testing.T, f *serviceFixture, n int) []*model.Order {
	t.Helper()
	orders := make([]*model.Order, 0, n)
	for i := range n {
		orders = append(orders, f.createOrder(t, fmt.Sprintf("sub-%d", i)))
	}
	return orders
}

func newTestSweeper(store repository.OrderStore, clock Clock, cfg SweepConfig) *Sweeper {
	return NewSweeper(store, ledger.New(ledger.DefaultConfig()), clock, nil, cfg)
}

func TestSweeper_UpdatesStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orders := seedOrders(t, f, 3)
	f.clock.Set(jan(5))

	sweeper := newTestSweeper(f.store, f.clock, SweepConfig{PageSize: 2, Workers: 2})

	report, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 3, report.Updated)
	assert.Zero(t, report.Failed)
	assert.False(t, report.Canceled)
	assert.True(t, jan(5).Equal(report.Day))

	for _, o := range orders {
		stored, err := f.store.Load(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusActive, stored.Status)
	}

	t.Run("second sweep on the same day changes nothing", func(t *testing.T) {
		report, err := sweeper.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Unchanged)
		assert.Zero(t, report.Updated)

		stored, err := f.store.Load(ctx, orders[0].ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.Version)
	})

	t.Run("last report is kept", func(t *testing.T) {
		last, ok := sweeper.LastReport()
		require.True(t, ok)
		assert.Equal(t, 3, last.Unchanged)
	})
}

func TestSweeper_IsolatesFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	good := seedOrders(t, f, 2)

	broken := &model.Order{
		SubscriberID: "sub-2",
		Plan:         fullPlan,
		PeriodStart:  jan(10),
		PeriodEnd:    jan(2),
		Status:       model.StatusUpcoming,
	}
	require.NoError(t, f.store.Insert(ctx, broken))
	f.clock.Set(jan(5))

	report, err := newTestSweeper(f.store, f.clock, SweepConfig{Workers: 4}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.Failed)

	for _, o := range good {
		stored, err := f.store.Load(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusActive, stored.Status)
	}
	stored, err := f.store.Load(ctx, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUpcoming, stored.Status)
}

func TestSweeper_Cancellation(t *testing.T) {
	f := newFixture(t)
	seedOrders(t, f, 5)
	f.clock.Set(jan(5))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &cancelingStore{MemoryOrderStore: f.store, cancel: cancel, after: 2}

	report, err := newTestSweeper(store, f.clock, SweepConfig{Workers: 1}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, report.Canceled)
	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 3, report.Skipped)
}

func TestSweeper_RejectsConcurrentRun(t *testing.T) {
	f := newFixture(t)
	seedOrders(t, f, 1)

	store := &blockingStore{
		MemoryOrderStore: f.store,
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	sweeper := newTestSweeper(store, f.clock, SweepConfig{})

	done := make(chan error, 1)
	go func() {
		_, err := sweeper.Run(context.Background())
		done <- err
	}()
	<-store.entered

	_, err := sweeper.Run(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)

	close(store.release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not finish")
	}
}

func TestSweeper_OrderDeletedMidSweep(t *testing.T) {
	f := newFixture(t)
	seedOrders(t, f, 2)

	report, err := newTestSweeper(&vanishingStore{f.store}, f.clock, SweepConfig{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Unchanged)
	assert.Zero(t, report.Failed)
}

func TestSweeper_RepairsAttendances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, "sub-1")

	damaged, err := f.store.Load(ctx, order.ID)
	require.NoError(t, err)
	damaged.Attendances = damaged.Attendances[:10]
	require.NoError(t, f.store.Save(ctx, damaged))

	t.Run("left alone without repair", func(t *testing.T) {
		report, err := newTestSweeper(f.store, f.clock, SweepConfig{}).Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Unchanged)
	})

	t.Run("restored with repair", func(t *testing.T) {
		report, err := newTestSweeper(f.store, f.clock, SweepConfig{RepairAttendances: true}).Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Updated)

		stored, err := f.store.Load(ctx, order.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Attendances, 30)
		assert.Equal(t, model.MealPacked, stored.Attendances[29].Lunch)
	})
}

func TestSweeper_ClearsStatisticsCacheOnUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createOrder(t, "sub-1")

	stats := NewStatisticsCache(10, time.Hour, 1)
	t.Cleanup(stats.Stop)
	sweeper := NewSweeper(f.store, ledger.New(ledger.DefaultConfig()), f.clock, nil, SweepConfig{},
		WithSweepStatisticsCache(stats))

	cached := func() bool {
		_, ok := stats.Get(jan(5))
		return ok
	}

	t.Run("kept when nothing changed", func(t *testing.T) {
		stats.Set(*model.NewDailyStatistics(jan(5)))
		report, err := sweeper.Run(ctx)
		require.NoError(t, err)
		require.Zero(t, report.Updated)
		assert.True(t, cached())
	})

	t.Run("cleared after an update", func(t *testing.T) {
		f.clock.Set(jan(5))
		report, err := sweeper.Run(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, report.Updated)
		assert.False(t, cached())
	})
}

func TestNewSweeper_Defaults(t *testing.T) {
	s := NewSweeper(repository.NewMemoryOrderStore(), ledger.New(ledger.DefaultConfig()), nil, nil, SweepConfig{})
	assert.Equal(t, DefaultSweepConfig().PageSize, s.cfg.PageSize)
	assert.Equal(t, DefaultSweepConfig().Workers, s.cfg.Workers)
	assert.NotNil(t, s.locks)

	_, ok := s.LastReport()
	assert.False(t, ok)
}
