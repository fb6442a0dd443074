package model

import "time"

// MealCounts tallies the delivery states of one meal slot across orders.
type MealCounts struct {
	Packed         int `json:"packed"`
	OutForDelivery int `json:"out_for_delivery"`
	Delivered      int `json:"delivered"`
	OnLeave        int `json:"on_leave"`
}

// Add records one occurrence of s.
func (c *MealCounts) Add(s MealStatus) {
	switch s {
	case MealPacked:
		c.Packed++
	case MealOutForDelivery:
		c.OutForDelivery++
	case MealDelivered:
		c.Delivered++
	case MealOnLeave:
		c.OnLeave++
	}
}

// Total is the number of meals that are part of a plan on the day.
func (c MealCounts) Total() int {
	return c.Packed + c.OutForDelivery + c.Delivered + c.OnLeave
}

// DailyStatistics aggregates the attendance ledger of every order for one date.
//
// @Description Kitchen view of one day: how many meals of each slot are in each state
type DailyStatistics struct {
	Date   time.Time               `json:"date"`
	Orders int                     `json:"orders"`
	Meals  map[MealSlot]MealCounts `json:"meals"`
}

// NewDailyStatistics returns empty statistics for date.
func NewDailyStatistics(date time.Time) *DailyStatistics {
	meals := make(map[MealSlot]MealCounts, len(AllMealSlots))
	for _, m := range AllMealSlots {
		meals[m] = MealCounts{}
	}
	return &DailyStatistics{Date: date, Meals: meals}
}

// Include folds one attendance day into the statistics.
func (s *DailyStatistics) Include(day AttendanceDay) {
	s.Orders++
	for _, m := range AllMealSlots {
		c := s.Meals[m]
		c.Add(day.Status(m))
		s.Meals[m] = c
	}
}
