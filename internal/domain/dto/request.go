// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// Dates travel as YYYY-MM-DD strings and meals as lower-case slot names; the
// To* methods turn a bound request into the ledger's own request types.
package dto

import (
	"time"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/ledger"
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// CreateOrderRequest represents the JSON request body for opening an order.
//
// @Description Request to open a subscription order
type CreateOrderRequest struct {
	SubscriberID string   `json:"subscriber_id" binding:"required" example:"sub-42"`
	Plan         []string `json:"plan" binding:"required,min=1" example:"breakfast,lunch"`
	Start        string   `json:"start" binding:"required" example:"2024-01-01"`
	End          string   `json:"end" binding:"required" example:"2024-01-30"`
} // @name CreateOrderRequest

// ToLedger converts the request.
func (r *CreateOrderRequest) ToLedger() (ledger.NewOrderRequest, error) {
	plan, err := parsePlan("plan", r.Plan)
	if err != nil {
		return ledger.NewOrderRequest{}, err
	}
	start, end, err := parseRange(r.Start, r.End)
	if err != nil {
		return ledger.NewOrderRequest{}, err
	}
	return ledger.NewOrderRequest{SubscriberID: r.SubscriberID, Plan: plan, Start: start, End: end}, nil
}

// EditOrderRequest replaces the plan and period of an order.
//
// @Description Request to change the plan and period of an order
type EditOrderRequest struct {
	Plan  []string `json:"plan" binding:"required,min=1" example:"lunch,dinner"`
	Start string   `json:"start" binding:"required" example:"2024-01-01"`
	End   string   `json:"end" binding:"required" example:"2024-01-15"`
} // @name EditOrderRequest

// ToLedger converts the request.
func (r *EditOrderRequest) ToLedger() (ledger.OrderEdit, error) {
	plan, err := parsePlan("plan", r.Plan)
	if err != nil {
		return ledger.OrderEdit{}, err
	}
	start, end, err := parseRange(r.Start, r.End)
	if err != nil {
		return ledger.OrderEdit{}, err
	}
	return ledger.OrderEdit{Plan: plan, Start: start, End: end}, nil
}

// RenewOrderRequest opens the order following an existing one. Every field
// is optional: an empty plan keeps the current plan and empty dates continue
// with a period of the same length.
//
// @Description Request to renew an order
type RenewOrderRequest struct {
	Plan  []string `json:"plan,omitempty" example:"lunch"`
	Start string   `json:"start,omitempty" example:"2024-01-31"`
	End   string   `json:"end,omitempty" example:"2024-02-29"`
} // @name RenewOrderRequest

// ToLedger converts the request.
func (r *RenewOrderRequest) ToLedger() (ledger.RenewRequest, error) {
	var req ledger.RenewRequest
	if len(r.Plan) > 0 {
		plan, err := parsePlan("plan", r.Plan)
		if err != nil {
			return req, err
		}
		req.Plan = plan
	}
	var err error
	if req.Start, err = parseOptionalDate("start", r.Start); err != nil {
		return req, err
	}
	if req.End, err = parseOptionalDate("end", r.End); err != nil {
		return req, err
	}
	return req, nil
}

// LeaveRequest adds or replaces a leave. No affected meals means the whole plan.
//
// @Description Request to add or edit a leave period
type LeaveRequest struct {
	Start         string   `json:"start" binding:"required" example:"2024-01-10"`
	End           string   `json:"end" binding:"required" example:"2024-01-12"`
	AffectedMeals []string `json:"affected_meals,omitempty" example:"lunch"`
} // @name LeaveRequest

// ToLedger converts the request.
func (r *LeaveRequest) ToLedger() (ledger.LeaveRequest, error) {
	start, end, err := parseRange(r.Start, r.End)
	if err != nil {
		return ledger.LeaveRequest{}, err
	}
	var meals model.Plan
	if len(r.AffectedMeals) > 0 {
		if meals, err = parsePlan("affected_meals", r.AffectedMeals); err != nil {
			return ledger.LeaveRequest{}, err
		}
	}
	return ledger.LeaveRequest{Start: start, End: end, AffectedMeals: meals}, nil
}

// AttendanceMarkRequest sets the delivery state of one meal on one day.
//
// @Description Request to record the delivery state of a meal
type AttendanceMarkRequest struct {
	Date   string `json:"date" binding:"required" example:"2024-01-03"`
	Meal   string `json:"meal" binding:"required" example:"lunch"`
	Status string `json:"status" binding:"required" example:"delivered"`
} // @name AttendanceMarkRequest

// ToLedger converts the request.
func (r *AttendanceMarkRequest) ToLedger() (ledger.Mark, error) {
	date, err := parseDate("date", r.Date)
	if err != nil {
		return ledger.Mark{}, err
	}
	meal, err := model.ParseMealSlot(r.Meal)
	if err != nil {
		return ledger.Mark{}, &ValidationError{Field: "meal", Message: err.Error()}
	}
	status := model.MealStatus(r.Status)
	if !status.Valid() {
		return ledger.Mark{}, &ValidationError{Field: "status", Message: "unknown meal status " + r.Status}
	}
	return ledger.Mark{Date: date, Meal: meal, Status: status}, nil
}

// AttendanceBatchRequest applies several marks, all or none.
//
// @Description Request to record several delivery states at once
type AttendanceBatchRequest struct {
	Marks []AttendanceMarkRequest `json:"marks" binding:"required,min=1,dive"`
} // @name AttendanceBatchRequest

// ToLedger converts the request.
func (r *AttendanceBatchRequest) ToLedger() ([]ledger.Mark, error) {
	marks := make([]ledger.Mark, 0, len(r.Marks))
	for i := range r.Marks {
		mk, err := r.Marks[i].ToLedger()
		if err != nil {
			return nil, err
		}
		marks = append(marks, mk)
	}
	return marks, nil
}

// ParseDay parses an optional YYYY-MM-DD query value. Empty yields the zero time.
func ParseDay(field, value string) (time.Time, error) {
	return parseOptionalDate(field, value)
}

// ActivityQuery filters the activity log. Dates bound the entries by day,
// both ends inclusive.
//
// @Description Activity log search parameters
type ActivityQuery struct {
	Kind         string `form:"kind" binding:"omitempty,oneof=request mutation" example:"mutation"`
	Action       string `form:"action" example:"leave."`
	OrderID      string `form:"order_id" example:"65a1f0c2e4b0a1b2c3d4e5f6"`
	SubscriberID string `form:"subscriber_id" example:"sub-42"`
	RequestID    string `form:"request_id"`
	Severity     string `form:"severity" binding:"omitempty,oneof=info warn error" example:"warn"`
	From         string `form:"from" example:"2024-01-01"`
	To           string `form:"to" example:"2024-01-31"`
	Limit        int    `form:"limit" binding:"omitempty,min=1" example:"50"`
	Skip         int    `form:"skip" binding:"omitempty,min=0"`
} // @name ActivityQuery

// ToFilter converts the query. To covers the whole of its day.
func (q *ActivityQuery) ToFilter() (model.ActivityFilter, error) {
	filter := model.ActivityFilter{
		Kind:         model.ActivityKind(q.Kind),
		Action:       q.Action,
		OrderID:      q.OrderID,
		SubscriberID: q.SubscriberID,
		RequestID:    q.RequestID,
		Severity:     q.Severity,
		Limit:        q.Limit,
		Skip:         q.Skip,
	}
	from, err := parseOptionalDate("from", q.From)
	if err != nil {
		return model.ActivityFilter{}, err
	}
	to, err := parseOptionalDate("to", q.To)
	if err != nil {
		return model.ActivityFilter{}, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return model.ActivityFilter{}, &ValidationError{Field: "to", Message: "must not be before from"}
	}
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		end := calendar.AddDays(to, 1).Add(-time.Nanosecond)
		filter.To = &end
	}
	return filter, nil
}

func parsePlan(field string, values []string) (model.Plan, error) {
	plan := make(model.Plan, 0, len(values))
	for _, v := range values {
		m, err := model.ParseMealSlot(v)
		if err != nil {
			return nil, &ValidationError{Field: field, Message: err.Error()}
		}
		plan = append(plan, m)
	}
	return plan, nil
}

func parseDate(field, value string) (time.Time, error) {
	d, err := calendar.Parse(value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return d, nil
}

func parseOptionalDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return parseDate(field, value)
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := parseDate("start", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := parseDate("end", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return s, e, nil
}
