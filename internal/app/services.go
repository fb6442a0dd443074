// Package app provides service initialization.
package app

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/config"
	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/ledger"
	"github.com/guttosm/meal-ledger/internal/repository"
	"github.com/guttosm/meal-ledger/internal/service"
)

// ServiceComponents holds service-related components.
type ServiceComponents struct {
	Ledger          *ledger.Ledger
	Orders          service.OrderService
	Sweeper         *service.Sweeper
	Billing         *service.BillingReporter
	StatisticsCache *service.StatisticsCache
}

// InitializeServices initializes business logic services on top of store.
// The order service and the sweeper share one lock table so a sweep never
// interleaves with an edit of the same order.
func InitializeServices(cfg config.Config, store repository.OrderStore, clock service.Clock) (*ServiceComponents, error) {
	ledgerCfg, err := ledgerConfig(cfg.Ledger)
	if err != nil {
		return nil, err
	}
	l := ledger.New(ledgerCfg)

	if clock == nil {
		clock = service.SystemClock{}
	}
	locks := service.NewKeyedMutex[primitive.ObjectID]()

	opts := []service.Option{service.WithClock(clock), service.WithLocks(locks)}

	var statsCache *service.StatisticsCache
	var sweepOpts []service.SweepOption
	if cfg.Cache.Size > 0 {
		statsCache = service.NewStatisticsCache(cfg.Cache.Size, cfg.Cache.TTL, cfg.Cache.Shards)
		opts = append(opts, service.WithStatisticsCache(statsCache))
		sweepOpts = append(sweepOpts, service.WithSweepStatisticsCache(statsCache))
	}

	sweeper := service.NewSweeper(store, l, clock, locks, service.SweepConfig{
		PageSize:          cfg.Sweep.PageSize,
		Workers:           cfg.Sweep.Workers,
		RepairAttendances: cfg.Sweep.RepairAttendances,
		OrderTimeout:      cfg.Sweep.OrderTimeout,
	}, sweepOpts...)

	return &ServiceComponents{
		Ledger:          l,
		Orders:          service.NewOrderService(store, l, opts...),
		Sweeper:         sweeper,
		Billing:         service.NewBillingReporter(store, clock),
		StatisticsCache: statsCache,
	}, nil
}

// ledgerConfig converts the configured limits, rejecting unknown meal slots.
func ledgerConfig(cfg config.LedgerConfig) (ledger.Config, error) {
	out := ledger.Config{LeaveCap: cfg.LeaveCap, MaxPeriodDays: cfg.MaxPeriodDays}
	for _, name := range cfg.MealSlots {
		slot, err := model.ParseMealSlot(name)
		if err != nil {
			return ledger.Config{}, fmt.Errorf("MEAL_SLOTS: %w", err)
		}
		if !out.MealSlots.Contains(slot) {
			out.MealSlots = append(out.MealSlots, slot)
		}
	}
	out.MealSlots = out.MealSlots.Normalized()
	return out, nil
}

// Close stops the background workers of the services.
func (s *ServiceComponents) Close() {
	if s != nil && s.StatisticsCache != nil {
		s.StatisticsCache.Stop()
	}
}
