package repository

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// MemoryOrderStore keeps orders in process memory. It is used when MongoDB
// is disabled and in tests; it honours the same version checks as the
// MongoDB store. Orders are copied on the way in and out.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]*model.Order
}

// NewMemoryOrderStore creates an empty in-memory order store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders: make(map[primitive.ObjectID]*model.Order),
	}
}

// Insert stores a new order.
func (m *MemoryOrderStore) Insert(_ context.Context, order *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	order.Version = 1
	order.CreatedAt = now
	order.UpdatedAt = now
	m.orders[order.ID] = order.Clone()
	return nil
}

// Load returns a copy of the stored order.
func (m *MemoryOrderStore) Load(_ context.Context, id primitive.ObjectID) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o.Clone(), nil
}

// Save replaces the stored order if its version still matches.
func (m *MemoryOrderStore) Save(_ context.Context, order *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.orders[order.ID]
	if !ok {
		return ErrOrderNotFound
	}
	if current.Version != order.Version {
		return ErrVersionConflict
	}
	order.Version++
	order.UpdatedAt = time.Now().UTC()
	m.orders[order.ID] = order.Clone()
	return nil
}

// Delete removes the order with the given id.
func (m *MemoryOrderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

// ListIDs returns up to limit ids greater than after, ascending.
func (m *MemoryOrderStore) ListIDs(_ context.Context, after primitive.ObjectID, limit int) ([]primitive.ObjectID, error) {
	m.mu.RLock()
	ids := make([]primitive.ObjectID, 0, len(m.orders))
	for id := range m.orders {
		if bytes.Compare(id[:], after[:]) > 0 {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(ids, func(a, b primitive.ObjectID) int {
		return bytes.Compare(a[:], b[:])
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// FindBySubscriber returns the orders of a subscriber without attendances.
func (m *MemoryOrderStore) FindBySubscriber(_ context.Context, subscriberID string) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*model.Order
	for _, o := range m.orders {
		if o.SubscriberID != subscriberID {
			continue
		}
		c := o.Clone()
		c.Attendances = nil
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *model.Order) int {
		return a.PeriodStart.Compare(b.PeriodStart)
	})
	return out, nil
}

// FindCovering returns the orders active on day with only that day's attendance.
func (m *MemoryOrderStore) FindCovering(_ context.Context, day time.Time) ([]*model.Order, error) {
	day = calendar.Normalize(day)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*model.Order
	for _, o := range m.orders {
		if !o.Covers(day) {
			continue
		}
		c := o.Clone()
		c.Leaves = nil
		c.Attendances = nil
		if i, ok := o.AttendanceIndex(day); ok {
			c.Attendances = []model.AttendanceDay{o.Attendances[i]}
		}
		out = append(out, c)
	}
	return out, nil
}

// CountUnbilledExpired counts orders that ended before today and are not billed yet.
func (m *MemoryOrderStore) CountUnbilledExpired(_ context.Context, today time.Time) (int64, error) {
	today = calendar.Normalize(today)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, o := range m.orders {
		if !o.Billed && o.PeriodEnd.Before(today) {
			n++
		}
	}
	return n, nil
}
