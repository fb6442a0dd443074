package ledger

import (
	"time"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// newDay builds the attendance record of date for plan. Plan meals start as
// packed, or delivered when acknowledge is set.
func newDay(date time.Time, plan model.Plan, acknowledge bool) model.AttendanceDay {
	day := model.AttendanceDay{Date: date}
	for _, m := range model.AllMealSlots {
		switch {
		case !plan.Contains(m):
			day.SetStatus(m, model.MealNotApplicable)
		case acknowledge:
			day.SetStatus(m, model.MealDelivered)
		default:
			day.SetStatus(m, model.MealPacked)
		}
	}
	return day
}

// Initialize replaces the attendance ledger of o with one record per day of
// its period. Days on or before today are acknowledged as delivered.
func (l *Ledger) Initialize(o *model.Order, today time.Time) error {
	n, err := calendar.DaysBetweenInclusive(o.PeriodStart, o.PeriodEnd)
	if err != nil {
		return Errorf(KindInvalidRange, "order period: %v", err)
	}
	days, _ := calendar.EachDay(o.PeriodStart, o.PeriodEnd)
	today = calendar.Normalize(today)

	o.Attendances = make([]model.AttendanceDay, 0, n)
	for d := range days {
		o.Attendances = append(o.Attendances, newDay(d, o.Plan, !d.After(today)))
	}
	return nil
}

// ApplyLeave marks every affected plan meal inside the leave as on leave.
// Delivered and not applicable meals are left alone. It returns the number of
// days on which no plan meal is served any more. The count is informational:
// the leave cap is measured in calendar days (see Leave.LeaveDayCount).
func (l *Ledger) ApplyLeave(o *model.Order, leave model.Leave) int {
	full := 0
	l.eachLeaveDay(o, leave, func(day *model.AttendanceDay) {
		for _, m := range leave.AffectedMeals {
			if !o.Plan.Contains(m) {
				continue
			}
			switch day.Status(m) {
			case model.MealNotApplicable, model.MealDelivered:
			default:
				day.SetStatus(m, model.MealOnLeave)
			}
		}
		if fullyOnLeave(day, o.Plan) {
			full++
		}
	})
	return full
}

// RevertLeave restores meals the leave had suspended back to packed.
func (l *Ledger) RevertLeave(o *model.Order, leave model.Leave) {
	l.eachLeaveDay(o, leave, func(day *model.AttendanceDay) {
		for _, m := range leave.AffectedMeals {
			if day.Status(m) == model.MealOnLeave {
				day.SetStatus(m, model.MealPacked)
			}
		}
	})
}

func (l *Ledger) eachLeaveDay(o *model.Order, leave model.Leave, fn func(*model.AttendanceDay)) {
	days, err := calendar.EachDay(leave.Start, leave.End)
	if err != nil {
		return
	}
	for d := range days {
		if i, ok := o.AttendanceIndex(d); ok {
			fn(&o.Attendances[i])
		}
	}
}

func fullyOnLeave(day *model.AttendanceDay, plan model.Plan) bool {
	for _, m := range plan {
		s := day.Status(m)
		if s != model.MealOnLeave && s != model.MealNotApplicable {
			return false
		}
	}
	return true
}

// MarkDelivery sets the delivery state of one meal on one day.
func (l *Ledger) MarkDelivery(o *model.Order, date time.Time, meal model.MealSlot, status model.MealStatus) error {
	i, err := l.checkMark(o, date, meal, status)
	if err != nil {
		return err
	}
	o.Attendances[i].SetStatus(meal, status)
	return nil
}

// Mark is a single attendance change.
type Mark struct {
	Date   time.Time
	Meal   model.MealSlot
	Status model.MealStatus
}

// MarkDeliveries applies several marks at once. Either every mark is applied
// or, on the first rejection, none is.
func (l *Ledger) MarkDeliveries(o *model.Order, marks []Mark) error {
	if len(marks) == 0 {
		return Errorf(KindInvalidInput, "no attendance changes given")
	}
	work := o.Clone()
	for _, mk := range marks {
		if err := l.MarkDelivery(work, mk.Date, mk.Meal, mk.Status); err != nil {
			return err
		}
	}
	o.Attendances = work.Attendances
	return nil
}

func (l *Ledger) checkMark(o *model.Order, date time.Time, meal model.MealSlot, status model.MealStatus) (int, error) {
	if !meal.Valid() {
		return -1, Errorf(KindInvalidInput, "unknown meal %q", meal)
	}
	if !status.Valid() {
		return -1, Errorf(KindInvalidInput, "unknown meal status %q", status)
	}
	date = calendar.Normalize(date)
	i, ok := o.AttendanceIndex(date)
	if !ok {
		return -1, Errorf(KindUnknownDate, "no attendance record for %s", calendar.Format(date))
	}
	if status == model.MealOnLeave || status == model.MealNotApplicable {
		return -1, Errorf(KindInvalidTransition, "%s can only be set through leaves or plan edits", status)
	}
	for _, lv := range o.Leaves {
		if lv.Covers(date, meal) {
			return -1, Errorf(KindInvalidTransition, "%s on %s is on leave", meal, calendar.Format(date))
		}
	}
	switch o.Attendances[i].Status(meal) {
	case model.MealNotApplicable:
		return -1, Errorf(KindInvalidTransition, "%s is not part of the plan", meal)
	case model.MealDelivered:
		return -1, Errorf(KindAlreadyDelivered, "%s on %s was already delivered", meal, calendar.Format(date))
	}
	return i, nil
}

// PruneOutsideRange drops attendance days outside [start, end].
func (l *Ledger) PruneOutsideRange(o *model.Order, start, end time.Time) error {
	if _, err := calendar.DaysBetweenInclusive(start, end); err != nil {
		return Errorf(KindInvalidRange, "prune range: %v", err)
	}
	kept := o.Attendances[:0]
	for _, day := range o.Attendances {
		if calendar.Within(day.Date, start, end) {
			kept = append(kept, day)
		}
	}
	o.Attendances = kept
	return nil
}

// ExtendToRange adds the missing days of [start, end] as packed, then
// re-applies every leave of the order so suspended meals stay suspended.
func (l *Ledger) ExtendToRange(o *model.Order, start, end time.Time) error {
	days, err := calendar.EachDay(start, end)
	if err != nil {
		return Errorf(KindInvalidRange, "extend range: %v", err)
	}
	var missing []model.AttendanceDay
	for d := range days {
		if _, ok := o.AttendanceIndex(d); !ok {
			missing = append(missing, newDay(d, o.Plan, false))
		}
	}
	if len(missing) > 0 {
		o.Attendances = append(o.Attendances, missing...)
		o.SortAttendances()
	}
	for _, lv := range o.Leaves {
		l.ApplyLeave(o, lv)
	}
	return nil
}
