package ledger

import (
	"time"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// RenewRequest describes the period that follows an order. A nil Plan keeps
// the plan of the order being renewed. When both dates are zero the new
// period starts the day after the old one ends and has the same length.
type RenewRequest struct {
	Plan  model.Plan
	Start time.Time
	End   time.Time
}

// Renew opens a follow-on order for the subscriber of src. existing holds
// every order of that subscriber; the new period may not overlap any of them.
func (l *Ledger) Renew(src *model.Order, existing []*model.Order, req RenewRequest, today time.Time) (*model.Order, error) {
	plan := req.Plan
	if len(plan) == 0 {
		plan = src.Plan
	}

	start, end := req.Start, req.End
	switch {
	case start.IsZero() && end.IsZero():
		days, err := calendar.DaysBetweenInclusive(src.PeriodStart, src.PeriodEnd)
		if err != nil {
			return nil, Errorf(KindInvalidRange, "order being renewed: %v", err)
		}
		start = calendar.AddDays(src.PeriodEnd, 1)
		end = calendar.AddDays(start, days-1)
	case start.IsZero() || end.IsZero():
		return nil, Errorf(KindInvalidInput, "renewal needs both start and end dates, or neither")
	}

	next, err := l.NewOrder(NewOrderRequest{
		SubscriberID: src.SubscriberID,
		Plan:         plan,
		Start:        start,
		End:          end,
	}, today)
	if err != nil {
		return nil, err
	}

	if err := CheckOrderOverlap(next, existing); err != nil {
		return nil, err
	}
	return next, nil
}

// CheckOrderOverlap fails with OverlappingOrder when the period of next
// shares a day with any other order in existing.
func CheckOrderOverlap(next *model.Order, existing []*model.Order) error {
	for _, o := range existing {
		if o.ID == next.ID {
			continue
		}
		if calendar.Overlaps(next.PeriodStart, next.PeriodEnd, o.PeriodStart, o.PeriodEnd) {
			return Errorf(KindOverlappingOrder, "period %s..%s overlaps order %s (%s..%s)",
				calendar.Format(next.PeriodStart), calendar.Format(next.PeriodEnd),
				o.ID.Hex(), calendar.Format(o.PeriodStart), calendar.Format(o.PeriodEnd))
		}
	}
	return nil
}
