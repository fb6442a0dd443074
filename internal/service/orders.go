// Package service contains the business logic of the meal ledger: the order
// operations callers invoke, the daily reconciliation sweep and billing.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/ledger"
	"github.com/guttosm/meal-ledger/internal/metrics"
	"github.com/guttosm/meal-ledger/internal/repository"
	"github.com/guttosm/meal-ledger/internal/service/cache"
)

// maxSaveAttempts bounds reload-and-retry when another process saved the
// same order between our load and save.
const maxSaveAttempts = 3

// SubscriberOrders lists a subscriber's orders and the one currently running.
type SubscriberOrders struct {
	Orders        []model.OrderSummary `json:"orders"`
	ActiveOrderID *primitive.ObjectID  `json:"active_order_id,omitempty"`
}

// OrderService defines the caller-facing order operations.
type OrderService interface {
	Create(ctx context.Context, req ledger.NewOrderRequest) (*model.Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (*model.Order, error)
	ListBySubscriber(ctx context.Context, subscriberID string) (*SubscriberOrders, error)
	Edit(ctx context.Context, id primitive.ObjectID, edit ledger.OrderEdit) (*model.Order, error)
	Renew(ctx context.Context, id primitive.ObjectID, req ledger.RenewRequest) (*model.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	MarkBilled(ctx context.Context, id primitive.ObjectID) (*model.Order, error)

	AddLeave(ctx context.Context, id primitive.ObjectID, req ledger.LeaveRequest) (*model.Order, model.Leave, error)
	EditLeave(ctx context.Context, id, leaveID primitive.ObjectID, req ledger.LeaveRequest) (*model.Order, model.Leave, error)
	RemoveLeave(ctx context.Context, id, leaveID primitive.ObjectID) (*model.Order, error)

	MarkAttendance(ctx context.Context, id primitive.ObjectID, mark ledger.Mark) (*model.Order, error)
	MarkAttendanceBatch(ctx context.Context, id primitive.ObjectID, marks []ledger.Mark) (*model.Order, error)

	DailyStatistics(ctx context.Context, day time.Time) (model.DailyStatistics, error)
}

// Option configures an OrderServiceImpl.
type Option func(*OrderServiceImpl)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(s *OrderServiceImpl) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithStatisticsCache enables caching of daily statistics.
func WithStatisticsCache(c cache.Cache) Option {
	return func(s *OrderServiceImpl) {
		s.stats = c
	}
}

// WithLocks shares a per-order lock table, typically with the Sweeper.
func WithLocks(locks *KeyedMutex[primitive.ObjectID]) Option {
	return func(s *OrderServiceImpl) {
		if locks != nil {
			s.locks = locks
		}
	}
}

// OrderServiceImpl implements OrderService on top of an OrderStore.
// Mutations of one order are serialized by a per-order lock and guarded
// across processes by the store's version check.
type OrderServiceImpl struct {
	store  repository.OrderStore
	ledger *ledger.Ledger
	clock  Clock
	locks  *KeyedMutex[primitive.ObjectID]
	stats  cache.Cache
}

var _ OrderService = (*OrderServiceImpl)(nil)

// NewOrderService creates a new order service.
func NewOrderService(store repository.OrderStore, l *ledger.Ledger, opts ...Option) *OrderServiceImpl {
	s := &OrderServiceImpl{
		store:  store,
		ledger: l,
		clock:  SystemClock{},
		locks:  NewKeyedMutex[primitive.ObjectID](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new order. Its period may not overlap another order of the
// same subscriber.
func (s *OrderServiceImpl) Create(ctx context.Context, req ledger.NewOrderRequest) (*model.Order, error) {
	start := time.Now()
	order, err := s.create(ctx, req)
	s.record("order.create", err, start)
	if err != nil {
		return nil, err
	}

	s.invalidateStatistics()
	log.Info().
		Str("order_id", order.ID.Hex()).
		Str("subscriber_id", order.SubscriberID).
		Str("status", string(order.Status)).
		Msg("Order created")
	return order, nil
}

func (s *OrderServiceImpl) create(ctx context.Context, req ledger.NewOrderRequest) (*model.Order, error) {
	order, err := s.ledger.NewOrder(req, s.clock.Today())
	if err != nil {
		return nil, err
	}
	siblings, err := s.store.FindBySubscriber(ctx, order.SubscriberID)
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckOrderOverlap(order, siblings); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns an order by id.
func (s *OrderServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	order, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, s.storeError(id, err)
	}
	return order, nil
}

// ListBySubscriber returns the subscriber's orders, oldest first, and the id
// of the order whose period contains today.
func (s *OrderServiceImpl) ListBySubscriber(ctx context.Context, subscriberID string) (*SubscriberOrders, error) {
	if subscriberID == "" {
		return nil, ledger.Errorf(ledger.KindInvalidInput, "subscriber id is required")
	}
	orders, err := s.store.FindBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	out := &SubscriberOrders{Orders: make([]model.OrderSummary, 0, len(orders))}
	for _, o := range orders {
		out.Orders = append(out.Orders, o.Summary())
		if out.ActiveOrderID == nil && o.Covers(today) {
			id := o.ID
			out.ActiveOrderID = &id
		}
	}
	return out, nil
}

// Edit changes the plan and period of an order.
func (s *OrderServiceImpl) Edit(ctx context.Context, id primitive.ObjectID, edit ledger.OrderEdit) (*model.Order, error) {
	return s.mutate(ctx, "order.edit", id, func(o *model.Order, today time.Time) error {
		return s.ledger.EditOrder(o, edit, today)
	})
}

// Renew opens the order that follows id for the same subscriber.
func (s *OrderServiceImpl) Renew(ctx context.Context, id primitive.ObjectID, req ledger.RenewRequest) (*model.Order, error) {
	start := time.Now()
	order, err := s.renew(ctx, id, req)
	s.record("order.renew", err, start)
	if err != nil {
		return nil, err
	}

	s.invalidateStatistics()
	log.Info().
		Str("order_id", order.ID.Hex()).
		Str("renewed_from", id.Hex()).
		Str("subscriber_id", order.SubscriberID).
		Msg("Order renewed")
	return order, nil
}

func (s *OrderServiceImpl) renew(ctx context.Context, id primitive.ObjectID, req ledger.RenewRequest) (*model.Order, error) {
	src, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, s.storeError(id, err)
	}
	siblings, err := s.store.FindBySubscriber(ctx, src.SubscriberID)
	if err != nil {
		return nil, err
	}
	next, err := s.ledger.Renew(src, siblings, req, s.clock.Today())
	if err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Delete removes an order.
func (s *OrderServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	err := s.delete(ctx, id)
	s.record("order.delete", err, start)
	if err != nil {
		return err
	}

	s.invalidateStatistics()
	log.Info().Str("order_id", id.Hex()).Msg("Order deleted")
	return nil
}

func (s *OrderServiceImpl) delete(ctx context.Context, id primitive.ObjectID) error {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError(id, err)
	}
	return nil
}

// MarkBilled flags an expired order as invoiced.
func (s *OrderServiceImpl) MarkBilled(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	return s.mutate(ctx, "order.bill", id, func(o *model.Order, today time.Time) error {
		if ledger.Recompute(o, today) != model.StatusExpired {
			return ledger.Errorf(ledger.KindInvalidTransition, "order %s has not expired yet", o.ID.Hex())
		}
		o.Billed = true
		return nil
	})
}

// AddLeave suspends meals of an order for a date range.
func (s *OrderServiceImpl) AddLeave(ctx context.Context, id primitive.ObjectID, req ledger.LeaveRequest) (*model.Order, model.Leave, error) {
	var leave model.Leave
	order, err := s.mutate(ctx, "leave.add", id, func(o *model.Order, today time.Time) error {
		var err error
		leave, err = s.ledger.AddLeave(o, req, today)
		return err
	})
	return order, leave, err
}

// EditLeave replaces the dates or meals of an existing leave.
func (s *OrderServiceImpl) EditLeave(ctx context.Context, id, leaveID primitive.ObjectID, req ledger.LeaveRequest) (*model.Order, model.Leave, error) {
	var leave model.Leave
	order, err := s.mutate(ctx, "leave.edit", id, func(o *model.Order, today time.Time) error {
		var err error
		leave, err = s.ledger.EditLeave(o, leaveID, req, today)
		return err
	})
	return order, leave, err
}

// RemoveLeave cancels a leave and restores its meals.
func (s *OrderServiceImpl) RemoveLeave(ctx context.Context, id, leaveID primitive.ObjectID) (*model.Order, error) {
	return s.mutate(ctx, "leave.remove", id, func(o *model.Order, today time.Time) error {
		return s.ledger.RemoveLeave(o, leaveID, today)
	})
}

// MarkAttendance records the delivery state of one meal.
func (s *OrderServiceImpl) MarkAttendance(ctx context.Context, id primitive.ObjectID, mark ledger.Mark) (*model.Order, error) {
	return s.mutate(ctx, "attendance.mark", id, func(o *model.Order, _ time.Time) error {
		return s.ledger.MarkDelivery(o, mark.Date, mark.Meal, mark.Status)
	})
}

// MarkAttendanceBatch records several delivery states, all or none.
func (s *OrderServiceImpl) MarkAttendanceBatch(ctx context.Context, id primitive.ObjectID, marks []ledger.Mark) (*model.Order, error) {
	return s.mutate(ctx, "attendance.batch", id, func(o *model.Order, _ time.Time) error {
		return s.ledger.MarkDeliveries(o, marks)
	})
}

// DailyStatistics counts meals per slot and state across the orders active on day.
func (s *OrderServiceImpl) DailyStatistics(ctx context.Context, day time.Time) (model.DailyStatistics, error) {
	if day.IsZero() {
		day = s.clock.Today()
	}
	day = calendar.Normalize(day)
	if s.stats != nil {
		if cached, ok := s.stats.Get(day); ok {
			return cached, nil
		}
	}

	orders, err := s.store.FindCovering(ctx, day)
	if err != nil {
		return model.DailyStatistics{}, err
	}

	stats := model.NewDailyStatistics(day)
	for _, o := range orders {
		if i, ok := o.AttendanceIndex(day); ok {
			stats.Include(o.Attendances[i])
		}
	}
	if s.stats != nil {
		s.stats.Set(*stats)
	}
	return *stats, nil
}

// mutate runs fn on a private copy of the order under the order's lock and
// saves the result. The status is recomputed before saving. A version
// conflict reloads the order and runs fn again.
func (s *OrderServiceImpl) mutate(ctx context.Context, op string, id primitive.ObjectID, fn func(o *model.Order, today time.Time) error) (*model.Order, error) {
	start := time.Now()
	order, err := s.mutateLocked(ctx, id, fn)
	s.record(op, err, start)
	if err != nil {
		return nil, err
	}

	s.invalidateStatistics()
	log.Debug().
		Str("operation", op).
		Str("order_id", id.Hex()).
		Str("status", string(order.Status)).
		Int64("version", order.Version).
		Msg("Order updated")
	return order, nil
}

func (s *OrderServiceImpl) mutateLocked(ctx context.Context, id primitive.ObjectID, fn func(o *model.Order, today time.Time) error) (*model.Order, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		current, err := s.store.Load(ctx, id)
		if err != nil {
			return nil, s.storeError(id, err)
		}

		today := s.clock.Today()
		work := current.Clone()
		if err := fn(work, today); err != nil {
			return nil, err
		}
		ledger.Transition(work, today)

		err = s.store.Save(ctx, work)
		if err == nil {
			return work, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) || attempt == maxSaveAttempts {
			return nil, s.storeError(id, err)
		}
		log.Debug().Str("order_id", id.Hex()).Int("attempt", attempt).Msg("Order changed concurrently, retrying")
	}
}

// storeError turns a missing order into a ledger NotFound error.
func (s *OrderServiceImpl) storeError(id primitive.ObjectID, err error) error {
	if errors.Is(err, repository.ErrOrderNotFound) {
		return ledger.Errorf(ledger.KindNotFound, "order %s not found", id.Hex())
	}
	return fmt.Errorf("order %s: %w", id.Hex(), err)
}

func (s *OrderServiceImpl) invalidateStatistics() {
	if s.stats != nil {
		s.stats.Clear()
	}
}

func (s *OrderServiceImpl) record(op string, err error, start time.Time) {
	metrics.RecordLedgerOperation(op, resultLabel(err), time.Since(start))
}

// resultLabel maps an operation outcome to a low-cardinality metric label.
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if kind, ok := ledger.KindOf(err); ok {
		return string(kind)
	}
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
