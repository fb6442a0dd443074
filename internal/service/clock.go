package service

import (
	"sync"
	"time"

	"github.com/guttosm/meal-ledger/internal/calendar"
)

// Clock supplies the current calendar day to the ledger.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Today returns UTC midnight of the current day.
func (SystemClock) Today() time.Time {
	return calendar.Normalize(time.Now())
}

// FixedClock always reports the day it was set to. It is safe for concurrent use.
type FixedClock struct {
	mu  sync.RWMutex
	day time.Time
}

// NewFixedClock creates a clock stopped on day.
func NewFixedClock(day time.Time) *FixedClock {
	return &FixedClock{day: calendar.Normalize(day)}
}

// Today returns the configured day.
func (c *FixedClock) Today() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.day
}

// Set moves the clock to day.
func (c *FixedClock) Set(day time.Time) {
	c.mu.Lock()
	c.day = calendar.Normalize(day)
	c.mu.Unlock()
}

// Advance moves the clock forward by n days.
func (c *FixedClock) Advance(n int) {
	c.mu.Lock()
	c.day = calendar.AddDays(c.day, n)
	c.mu.Unlock()
}
