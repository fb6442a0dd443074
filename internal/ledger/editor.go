package ledger

import (
	"slices"
	"time"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// OrderEdit is an admin change to the plan and period of an order.
type OrderEdit struct {
	Plan  model.Plan
	Start time.Time
	End   time.Time
}

// EditOrder moves o to a new plan and period. Days that fall out of the new
// period are dropped, new days start packed, meals removed from the plan
// become not applicable on every day (delivered ones included) and added meals
// start packed. Leaves must already fit the new period and plan; otherwise the
// edit fails with ConflictingLeave. On any error o is left unchanged.
func (l *Ledger) EditOrder(o *model.Order, edit OrderEdit, today time.Time) error {
	plan, err := l.validatePlan(edit.Plan)
	if err != nil {
		return err
	}
	if edit.Start.IsZero() || edit.End.IsZero() {
		return Errorf(KindInvalidInput, "order start and end dates are required")
	}
	start, end := calendar.Normalize(edit.Start), calendar.Normalize(edit.End)
	if start.After(end) {
		return Errorf(KindInvalidInput, "order start %s is after end %s",
			calendar.Format(start), calendar.Format(end))
	}
	if err := l.checkPeriodLength(start, end); err != nil {
		return err
	}

	for _, lv := range o.Leaves {
		if !calendar.Within(lv.Start, start, end) || !calendar.Within(lv.End, start, end) {
			return Errorf(KindConflictingLeave, "leave %s (%s..%s) falls outside the new period %s..%s",
				lv.ID.Hex(), calendar.Format(lv.Start), calendar.Format(lv.End),
				calendar.Format(start), calendar.Format(end))
		}
		for _, m := range lv.AffectedMeals {
			if !plan.Contains(m) {
				return Errorf(KindConflictingLeave, "leave %s suspends %s, which the new plan drops",
					lv.ID.Hex(), m)
			}
		}
	}

	work := o.Clone()
	work.Plan = plan
	for i := range work.Attendances {
		reconcilePlan(&work.Attendances[i], plan)
	}
	if err := l.PruneOutsideRange(work, start, end); err != nil {
		return err
	}
	work.PeriodStart, work.PeriodEnd = start, end
	if err := l.ExtendToRange(work, start, end); err != nil {
		return err
	}
	Transition(work, today)

	*o = *work
	return nil
}

// reconcilePlan aligns one day with plan: dropped meals become not
// applicable, added meals become packed, the rest keep their state.
func reconcilePlan(day *model.AttendanceDay, plan model.Plan) {
	for _, m := range model.AllMealSlots {
		in := plan.Contains(m)
		s := day.Status(m)
		switch {
		case !in:
			day.SetStatus(m, model.MealNotApplicable)
		case s == model.MealNotApplicable || s == "":
			day.SetStatus(m, model.MealPacked)
		}
	}
}

// RepairAttendances re-derives missing, duplicated or stray attendance days
// and plan alignment of o without touching recorded delivery states. Of two
// records for one day the earlier stored one is kept. It reports whether
// anything changed.
func (l *Ledger) RepairAttendances(o *model.Order) (bool, error) {
	n, err := calendar.DaysBetweenInclusive(o.PeriodStart, o.PeriodEnd)
	if err != nil {
		return false, Errorf(KindInvalidRange, "order period: %v", err)
	}
	o.SortAttendances()
	stored := len(o.Attendances)
	o.Attendances = slices.CompactFunc(o.Attendances, func(a, b model.AttendanceDay) bool {
		return calendar.SameDay(a.Date, b.Date)
	})
	duplicated := len(o.Attendances) != stored
	before := len(o.Attendances)
	var misaligned bool
	for i := range o.Attendances {
		day := o.Attendances[i]
		reconcilePlan(&o.Attendances[i], o.Plan)
		if day != o.Attendances[i] {
			misaligned = true
		}
	}
	if err := l.PruneOutsideRange(o, o.PeriodStart, o.PeriodEnd); err != nil {
		return false, err
	}
	// Dates are now unique and inside the period, so the count tells whether
	// every day is present.
	pruned := len(o.Attendances) != before
	missing := len(o.Attendances) != n
	if missing {
		if err := l.ExtendToRange(o, o.PeriodStart, o.PeriodEnd); err != nil {
			return false, err
		}
	}
	return duplicated || misaligned || pruned || missing, nil
}
