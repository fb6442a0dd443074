package service

import (
	"context"
	"fmt"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/logger"
	"github.com/guttosm/meal-ledger/internal/metrics"
	"github.com/guttosm/meal-ledger/internal/repository"
)

// BillingReporter measures the invoicing backlog: expired orders that have
// not been billed yet. Invoicing itself happens elsewhere.
type BillingReporter struct {
	store repository.OrderStore
	clock Clock
}

// NewBillingReporter creates a billing reporter.
func NewBillingReporter(store repository.OrderStore, clock Clock) *BillingReporter {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BillingReporter{store: store, clock: clock}
}

// Run counts the backlog, publishes it as a gauge and returns it.
func (b *BillingReporter) Run(ctx context.Context) (int64, error) {
	today := b.clock.Today()
	n, err := b.store.CountUnbilledExpired(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("count unbilled orders: %w", err)
	}

	metrics.SetUnbilledExpiredOrders(n)
	l := logger.Component("billing")
	l.Info().
		Str("day", calendar.Format(today)).
		Int64("unbilled_expired_orders", n).
		Msg("Billing backlog measured")
	return n, nil
}
