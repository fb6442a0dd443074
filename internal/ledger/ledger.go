// Package ledger implements the order lifecycle rules: the per-day attendance
// ledger, the leave ledger, the status machine and the plan/range editor.
//
// Every function here operates on an in-memory *model.Order and never does
// I/O. Operations validate first and mutate only when every check passed, so
// a returned error always leaves the order untouched. Callers are expected to
// serialize access to a single order and to persist it after a successful call.
package ledger

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// DefaultLeaveCap is the maximum number of leave days per order.
const DefaultLeaveCap = 8

// DefaultMaxPeriodDays bounds the length of an order period. Every day of the
// period is stored in the order document, so the bound also caps its size.
const DefaultMaxPeriodDays = 3660

// Config holds the business limits applied by a Ledger.
type Config struct {
	// LeaveCap bounds the sum of leave day counts across an order.
	LeaveCap int
	// MealSlots is the set of meals the kitchen serves. Plans must be a subset.
	MealSlots model.Plan
	// MaxPeriodDays is the longest order period accepted, in days.
	MaxPeriodDays int
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		LeaveCap:      DefaultLeaveCap,
		MealSlots:     model.AllMealSlots,
		MaxPeriodDays: DefaultMaxPeriodDays,
	}
}

// Ledger applies order lifecycle operations under a fixed Config.
type Ledger struct {
	cfg Config
}

// New creates a Ledger. Zero values in cfg fall back to DefaultConfig.
func New(cfg Config) *Ledger {
	def := DefaultConfig()
	if cfg.LeaveCap <= 0 {
		cfg.LeaveCap = def.LeaveCap
	}
	if len(cfg.MealSlots) == 0 {
		cfg.MealSlots = def.MealSlots
	}
	if cfg.MaxPeriodDays <= 0 {
		cfg.MaxPeriodDays = def.MaxPeriodDays
	}
	return &Ledger{cfg: cfg}
}

// Config returns the limits in effect.
func (l *Ledger) Config() Config {
	return l.cfg
}

// NewOrderRequest carries the fields needed to open an order.
type NewOrderRequest struct {
	SubscriberID string
	Plan         model.Plan
	Start        time.Time
	End          time.Time
}

// NewOrder validates req and builds a fresh order with its attendance ledger
// initialized as of today.
func (l *Ledger) NewOrder(req NewOrderRequest, today time.Time) (*model.Order, error) {
	if req.SubscriberID == "" {
		return nil, Errorf(KindInvalidInput, "subscriber id is required")
	}
	plan, err := l.validatePlan(req.Plan)
	if err != nil {
		return nil, err
	}
	start, end := calendar.Normalize(req.Start), calendar.Normalize(req.End)
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, Errorf(KindInvalidInput, "order start and end dates are required")
	}
	if start.After(end) {
		return nil, Errorf(KindInvalidRange, "order start %s is after end %s",
			calendar.Format(start), calendar.Format(end))
	}
	if err := l.checkPeriodLength(start, end); err != nil {
		return nil, err
	}

	o := &model.Order{
		ID:           primitive.NewObjectID(),
		SubscriberID: req.SubscriberID,
		Plan:         plan,
		PeriodStart:  start,
		PeriodEnd:    end,
		Leaves:       []model.Leave{},
	}
	if err := l.Initialize(o, today); err != nil {
		return nil, err
	}
	Transition(o, today)
	return o, nil
}

func (l *Ledger) validatePlan(p model.Plan) (model.Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, Errorf(KindInvalidInput, "invalid plan: %v", err)
	}
	for _, m := range p {
		if !l.cfg.MealSlots.Contains(m) {
			return nil, Errorf(KindInvalidInput, "meal %s is not served", m)
		}
	}
	return p.Normalized(), nil
}

// checkPeriodLength rejects periods longer than MaxPeriodDays. start must not
// be after end.
func (l *Ledger) checkPeriodLength(start, end time.Time) error {
	n, err := calendar.DaysBetweenInclusive(start, end)
	if err != nil {
		return Errorf(KindInvalidRange, "order period: %v", err)
	}
	if n > l.cfg.MaxPeriodDays {
		return Errorf(KindInvalidInput, "order period of %d days exceeds the maximum of %d",
			n, l.cfg.MaxPeriodDays)
	}
	return nil
}
