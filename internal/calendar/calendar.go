// Package calendar provides whole-day date arithmetic for the order ledger.
//
// Every date handled by the ledger is a UTC midnight. Normalize is the single
// entry point that turns an arbitrary instant into such a date; all other
// helpers normalize their inputs before comparing or iterating.
package calendar

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

// DateLayout is the wire format used for calendar dates.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ErrInvalidRange is returned when a range starts after it ends.
var ErrInvalidRange = errors.New("invalid range: start is after end")

// Normalize truncates t to midnight UTC of its UTC calendar day.
func Normalize(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a normalized date.
func Date(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// Parse accepts either a YYYY-MM-DD date or an RFC 3339 timestamp.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: expected %s", s, DateLayout)
	}
	return Normalize(t), nil
}

// Format renders a date in DateLayout.
func Format(t time.Time) string {
	return Normalize(t).Format(DateLayout)
}

// SameDay reports whether a and b fall on the same UTC day.
func SameDay(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}

// Within reports whether d lies in the inclusive range [start, end].
func Within(d, start, end time.Time) bool {
	d = Normalize(d)
	return !d.Before(Normalize(start)) && !d.After(Normalize(end))
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and [bStart, bEnd] share a day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !Normalize(aStart).After(Normalize(bEnd)) && !Normalize(aEnd).Before(Normalize(bStart))
}

// AddDays shifts a normalized date by n days.
func AddDays(t time.Time, n int) time.Time {
	return Normalize(t).AddDate(0, 0, n)
}

// DaysBetweenInclusive counts the days of [start, end], both ends included.
func DaysBetweenInclusive(start, end time.Time) (int, error) {
	s, e := Normalize(start), Normalize(end)
	if s.After(e) {
		return 0, fmt.Errorf("%w: %s > %s", ErrInvalidRange, s.Format(DateLayout), e.Format(DateLayout))
	}
	// Both ends are UTC midnights, so whole seconds divide evenly into days.
	// time.Duration would saturate on spans longer than about 292 years.
	return int((e.Unix()-s.Unix())/secondsPerDay) + 1, nil
}

// EachDay returns a lazy sequence over every day of [start, end].
// The sequence can be ranged over any number of times.
func EachDay(start, end time.Time) (iter.Seq[time.Time], error) {
	s, e := Normalize(start), Normalize(end)
	if s.After(e) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, s.Format(DateLayout), e.Format(DateLayout))
	}
	return func(yield func(time.Time) bool) {
		for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}, nil
}
