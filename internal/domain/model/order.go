// Package model defines the core domain entities for the meal ledger.
package model

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/calendar"
)

// MealSlot identifies one of the daily meals a plan can include.
type MealSlot string

const (
	Breakfast MealSlot = "breakfast"
	Lunch     MealSlot = "lunch"
	Dinner    MealSlot = "dinner"
)

// AllMealSlots lists every slot in serving order.
var AllMealSlots = []MealSlot{Breakfast, Lunch, Dinner}

// Valid reports whether m is a known slot.
func (m MealSlot) Valid() bool {
	return m == Breakfast || m == Lunch || m == Dinner
}

// ParseMealSlot accepts full slot names and the single letter shorthands B, L and D.
func ParseMealSlot(s string) (MealSlot, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "breakfast", "b":
		return Breakfast, nil
	case "lunch", "l":
		return Lunch, nil
	case "dinner", "d":
		return Dinner, nil
	}
	return "", fmt.Errorf("unknown meal slot %q", s)
}

// MealStatus is the delivery state of one meal on one day.
type MealStatus string

const (
	MealNotApplicable  MealStatus = "not_applicable"
	MealPacked         MealStatus = "packed"
	MealOutForDelivery MealStatus = "out_for_delivery"
	MealDelivered      MealStatus = "delivered"
	MealOnLeave        MealStatus = "on_leave"
)

// Valid reports whether s is a known status.
func (s MealStatus) Valid() bool {
	switch s {
	case MealNotApplicable, MealPacked, MealOutForDelivery, MealDelivered, MealOnLeave:
		return true
	}
	return false
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusUpcoming OrderStatus = "upcoming"
	StatusActive   OrderStatus = "active"
	StatusOnLeave  OrderStatus = "on_leave"
	StatusExpired  OrderStatus = "expired"
)

var (
	ErrEmptyPlan       = errors.New("plan must contain at least one meal")
	ErrDuplicateMeal   = errors.New("plan contains a meal more than once")
	ErrUnknownMealSlot = errors.New("plan contains an unknown meal")
)

// Plan is a set of meal slots, each present at most once.
type Plan []MealSlot

// Validate checks the plan is non-empty, known and duplicate free.
func (p Plan) Validate() error {
	if len(p) == 0 {
		return ErrEmptyPlan
	}
	seen := make(map[MealSlot]bool, len(p))
	for _, m := range p {
		if !m.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownMealSlot, m)
		}
		if seen[m] {
			return fmt.Errorf("%w: %s", ErrDuplicateMeal, m)
		}
		seen[m] = true
	}
	return nil
}

// Contains reports whether m is part of the plan.
func (p Plan) Contains(m MealSlot) bool {
	return slices.Contains(p, m)
}

// Intersects reports whether the two plans share a meal.
func (p Plan) Intersects(other Plan) bool {
	for _, m := range p {
		if other.Contains(m) {
			return true
		}
	}
	return false
}

// Normalized returns the plan sorted in serving order.
func (p Plan) Normalized() Plan {
	out := make(Plan, 0, len(p))
	for _, m := range AllMealSlots {
		if p.Contains(m) {
			out = append(out, m)
		}
	}
	return out
}

// Leave is a vacation period during which the affected meals are suspended.
//
// @Description Leave period nested under an order
type Leave struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Start         time.Time          `bson:"start" json:"start"`
	End           time.Time          `bson:"end" json:"end"`
	AffectedMeals Plan               `bson:"affected_meals" json:"affected_meals"`
	LeaveDayCount int                `bson:"leave_day_count" json:"leave_day_count"`
}

// Covers reports whether the leave suspends meal on date.
func (l Leave) Covers(date time.Time, meal MealSlot) bool {
	return l.AffectedMeals.Contains(meal) && calendar.Within(date, l.Start, l.End)
}

// AttendanceDay is the delivery record of a single day.
//
// @Description Per-meal delivery state for one calendar day
type AttendanceDay struct {
	Date      time.Time  `bson:"date" json:"date"`
	Breakfast MealStatus `bson:"breakfast" json:"breakfast"`
	Lunch     MealStatus `bson:"lunch" json:"lunch"`
	Dinner    MealStatus `bson:"dinner" json:"dinner"`
}

// Status returns the state of meal on this day.
func (d *AttendanceDay) Status(meal MealSlot) MealStatus {
	switch meal {
	case Breakfast:
		return d.Breakfast
	case Lunch:
		return d.Lunch
	case Dinner:
		return d.Dinner
	}
	return MealNotApplicable
}

// SetStatus overwrites the state of meal on this day.
func (d *AttendanceDay) SetStatus(meal MealSlot, s MealStatus) {
	switch meal {
	case Breakfast:
		d.Breakfast = s
	case Lunch:
		d.Lunch = s
	case Dinner:
		d.Dinner = s
	}
}

// Order is one subscriber's subscription for a date range and a meal plan.
//
// @Description Subscription order with its leave periods and attendance ledger
type Order struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubscriberID string             `bson:"subscriber_id" json:"subscriber_id"`
	Plan         Plan               `bson:"plan" json:"plan"`
	PeriodStart  time.Time          `bson:"period_start" json:"period_start"`
	PeriodEnd    time.Time          `bson:"period_end" json:"period_end"`
	Status       OrderStatus        `bson:"status" json:"status"`
	Leaves       []Leave            `bson:"leaves" json:"leaves"`
	Attendances  []AttendanceDay    `bson:"attendances" json:"attendances"`
	Billed       bool               `bson:"billed" json:"billed"`
	Version      int64              `bson:"version" json:"version"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy that shares no slices with o.
func (o *Order) Clone() *Order {
	c := *o
	c.Plan = slices.Clone(o.Plan)
	c.Attendances = slices.Clone(o.Attendances)
	if o.Leaves != nil {
		c.Leaves = make([]Leave, len(o.Leaves))
		for i, l := range o.Leaves {
			l.AffectedMeals = slices.Clone(l.AffectedMeals)
			c.Leaves[i] = l
		}
	}
	return &c
}

// FindLeave returns the index of the leave with the given id.
func (o *Order) FindLeave(id primitive.ObjectID) (int, bool) {
	for i := range o.Leaves {
		if o.Leaves[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// AttendanceIndex returns the index of the attendance day for date.
// Attendances are kept sorted by date.
func (o *Order) AttendanceIndex(date time.Time) (int, bool) {
	date = calendar.Normalize(date)
	i := sort.Search(len(o.Attendances), func(i int) bool {
		return !o.Attendances[i].Date.Before(date)
	})
	if i < len(o.Attendances) && o.Attendances[i].Date.Equal(date) {
		return i, true
	}
	return i, false
}

// TotalLeaveDays sums the leave day count of every leave.
func (o *Order) TotalLeaveDays() int {
	total := 0
	for _, l := range o.Leaves {
		total += l.LeaveDayCount
	}
	return total
}

// Covers reports whether date falls inside the order period.
func (o *Order) Covers(date time.Time) bool {
	return calendar.Within(date, o.PeriodStart, o.PeriodEnd)
}

// SortAttendances orders attendance days by date. Records of the same day
// keep their relative order.
func (o *Order) SortAttendances() {
	slices.SortStableFunc(o.Attendances, func(a, b AttendanceDay) int {
		return a.Date.Compare(b.Date)
	})
}

// OrderSummary is the listing view of an order, without its ledger.
type OrderSummary struct {
	ID           primitive.ObjectID `json:"id"`
	SubscriberID string             `json:"subscriber_id"`
	Plan         Plan               `json:"plan"`
	PeriodStart  time.Time          `json:"period_start"`
	PeriodEnd    time.Time          `json:"period_end"`
	Status       OrderStatus        `json:"status"`
	Billed       bool               `json:"billed"`
	LeaveDays    int                `json:"leave_days"`
}

// Summary builds the listing view of o.
func (o *Order) Summary() OrderSummary {
	return OrderSummary{
		ID:           o.ID,
		SubscriberID: o.SubscriberID,
		Plan:         o.Plan,
		PeriodStart:  o.PeriodStart,
		PeriodEnd:    o.PeriodEnd,
		Status:       o.Status,
		Billed:       o.Billed,
		LeaveDays:    o.TotalLeaveDays(),
	}
}
