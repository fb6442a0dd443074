package ledger

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// LeaveRequest describes a leave to add or the new shape of an edited one.
// An empty AffectedMeals means the whole plan.
type LeaveRequest struct {
	Start         time.Time
	End           time.Time
	AffectedMeals model.Plan
}

// AddLeave validates req against o, stores the new leave, suspends its meals
// and refreshes the order status.
func (l *Ledger) AddLeave(o *model.Order, req LeaveRequest, today time.Time) (model.Leave, error) {
	leave, err := l.validateLeave(o, req, primitive.NilObjectID)
	if err != nil {
		return model.Leave{}, err
	}
	leave.ID = primitive.NewObjectID()

	o.Leaves = append(o.Leaves, leave)
	l.ApplyLeave(o, leave)
	Transition(o, today)
	return leave, nil
}

// EditLeave replaces the leave identified by id with req. The leave being
// edited does not count against itself in the overlap and cap checks.
func (l *Ledger) EditLeave(o *model.Order, id primitive.ObjectID, req LeaveRequest, today time.Time) (model.Leave, error) {
	i, ok := o.FindLeave(id)
	if !ok {
		return model.Leave{}, Errorf(KindNotFound, "leave %s not found", id.Hex())
	}
	leave, err := l.validateLeave(o, req, id)
	if err != nil {
		return model.Leave{}, err
	}
	leave.ID = id

	l.RevertLeave(o, o.Leaves[i])
	o.Leaves[i] = leave
	l.ApplyLeave(o, leave)
	Transition(o, today)
	return leave, nil
}

// RemoveLeave deletes the leave identified by id and restores its meals.
func (l *Ledger) RemoveLeave(o *model.Order, id primitive.ObjectID, today time.Time) error {
	i, ok := o.FindLeave(id)
	if !ok {
		return Errorf(KindNotFound, "leave %s not found", id.Hex())
	}
	l.RevertLeave(o, o.Leaves[i])
	o.Leaves = append(o.Leaves[:i], o.Leaves[i+1:]...)
	Transition(o, today)
	return nil
}

func (l *Ledger) validateLeave(o *model.Order, req LeaveRequest, exclude primitive.ObjectID) (model.Leave, error) {
	if req.Start.IsZero() || req.End.IsZero() {
		return model.Leave{}, Errorf(KindInvalidInput, "leave start and end dates are required")
	}
	start, end := calendar.Normalize(req.Start), calendar.Normalize(req.End)
	days, err := calendar.DaysBetweenInclusive(start, end)
	if err != nil {
		return model.Leave{}, Errorf(KindInvalidRange, "leave start %s is after end %s",
			calendar.Format(start), calendar.Format(end))
	}

	meals := req.AffectedMeals
	if len(meals) == 0 {
		meals = o.Plan
	}
	if err := meals.Validate(); err != nil {
		return model.Leave{}, Errorf(KindInvalidInput, "invalid affected meals: %v", err)
	}
	for _, m := range meals {
		if !o.Plan.Contains(m) {
			return model.Leave{}, Errorf(KindInvalidInput, "meal %s is not part of the order plan", m)
		}
	}

	if !calendar.Within(start, o.PeriodStart, o.PeriodEnd) || !calendar.Within(end, o.PeriodStart, o.PeriodEnd) {
		return model.Leave{}, Errorf(KindOutOfRange, "leave %s..%s is outside the order period %s..%s",
			calendar.Format(start), calendar.Format(end),
			calendar.Format(o.PeriodStart), calendar.Format(o.PeriodEnd))
	}

	total := days
	for _, other := range o.Leaves {
		if other.ID == exclude {
			continue
		}
		if calendar.Overlaps(start, end, other.Start, other.End) && meals.Intersects(other.AffectedMeals) {
			return model.Leave{}, Errorf(KindOverlappingLeave, "leave overlaps leave %s (%s..%s)",
				other.ID.Hex(), calendar.Format(other.Start), calendar.Format(other.End))
		}
		total += other.LeaveDayCount
	}
	if total > l.cfg.LeaveCap {
		return model.Leave{}, Errorf(KindLeaveCapExceeded, "total leave days %d exceed the maximum of %d",
			total, l.cfg.LeaveCap)
	}

	return model.Leave{
		Start:         start,
		End:           end,
		AffectedMeals: meals.Normalized(),
		LeaveDayCount: days,
	}, nil
}
