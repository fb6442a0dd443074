// Package cache defines the contract of the daily statistics cache.
package cache

import (
	"time"

	"github.com/guttosm/meal-ledger/internal/domain/model"
)

// Cache stores daily statistics keyed by calendar day.
type Cache interface {
	Get(day time.Time) (model.DailyStatistics, bool)
	Set(value model.DailyStatistics)
	Invalidate(day time.Time)
	Clear()
	Stop()
}

// Metrics provides cache performance metrics.
type Metrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// CacheWithMetrics extends Cache with metrics reporting.
type CacheWithMetrics interface {
	Cache
	Metrics() Metrics
}
