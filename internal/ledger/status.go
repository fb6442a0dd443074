package ledger

import (
	"time"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// Recompute derives the status of o for today. It only reads the period and
// the leaves, so calling it repeatedly with the same day gives the same answer.
func Recompute(o *model.Order, today time.Time) model.OrderStatus {
	today = calendar.Normalize(today)
	for _, lv := range o.Leaves {
		if calendar.Within(today, lv.Start, lv.End) {
			return model.StatusOnLeave
		}
	}
	switch {
	case today.Before(calendar.Normalize(o.PeriodStart)):
		return model.StatusUpcoming
	case !today.After(calendar.Normalize(o.PeriodEnd)):
		return model.StatusActive
	default:
		return model.StatusExpired
	}
}

// Transition stores the recomputed status on o and reports whether it changed.
func Transition(o *model.Order, today time.Time) bool {
	next := Recompute(o, today)
	if next == o.Status {
		return false
	}
	o.Status = next
	return true
}
