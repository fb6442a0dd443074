package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
)

func statsFor(day time.Time, orders int) model.DailyStatistics {
	s := model.NewDailyStatistics(day)
	s.Orders = orders
	return *s
}

func TestStatisticsCache_GetSet(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*StatisticsCache)
		day       time.Time
		wantFound bool
		wantCount int
	}{
		{
			name: "returns cached day",
			setup: func(c *StatisticsCache) {
				c.Set(statsFor(calendar.Date(2024, time.January, 2), 7))
			},
			day:       calendar.Date(2024, time.January, 2),
			wantFound: true,
			wantCount: 7,
		},
		{
			name: "normalizes the lookup day",
			setup: func(c *StatisticsCache) {
				c.Set(statsFor(calendar.Date(2024, time.January, 2), 3))
			},
			day:       time.Date(2024, time.January, 2, 18, 30, 0, 0, time.UTC),
			wantFound: true,
			wantCount: 3,
		},
		{
			name:      "miss on unknown day",
			setup:     func(*StatisticsCache) {},
			day:       calendar.Date(2024, time.January, 3),
			wantFound: false,
		},
		{
			name: "latest set wins",
			setup: func(c *StatisticsCache) {
				c.Set(statsFor(calendar.Date(2024, time.January, 2), 1))
				c.Set(statsFor(calendar.Date(2024, time.January, 2), 2))
			},
			day:       calendar.Date(2024, time.January, 2),
			wantFound: true,
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewStatisticsCache(16, time.Minute, 4)
			defer c.Stop()

			tt.setup(c)
			got, ok := c.Get(tt.day)
			assert.Equal(t, tt.wantFound, ok)
			if tt.wantFound {
				assert.Equal(t, tt.wantCount, got.Orders)
			}
		})
	}
}

func TestStatisticsCache_Expiry(t *testing.T) {
	c := NewStatisticsCache(16, 30*time.Millisecond, 1)
	defer c.Stop()

	day := calendar.Date(2024, time.January, 2)
	c.Set(statsFor(day, 1))
	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get(day)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Metrics().Size)
}

func TestStatisticsCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewStatisticsCache(2, time.Minute, 1)
	defer c.Stop()

	d1 := calendar.Date(2024, time.January, 1)
	d2 := calendar.Date(2024, time.January, 2)
	d3 := calendar.Date(2024, time.January, 3)

	c.Set(statsFor(d1, 1))
	c.Set(statsFor(d2, 2))
	_, _ = c.Get(d1)
	c.Set(statsFor(d3, 3))

	_, ok := c.Get(d2)
	assert.False(t, ok)
	_, ok = c.Get(d1)
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Metrics().Evictions)
}

func TestStatisticsCache_ReturnsCopies(t *testing.T) {
	c := NewStatisticsCache(4, time.Minute, 1)
	defer c.Stop()

	day := calendar.Date(2024, time.January, 2)
	c.Set(statsFor(day, 1))

	got, ok := c.Get(day)
	require.True(t, ok)
	got.Meals[model.Lunch] = model.MealCounts{Delivered: 99}

	again, _ := c.Get(day)
	assert.Zero(t, again.Meals[model.Lunch].Delivered)
}

func TestStatisticsCache_InvalidateAndClear(t *testing.T) {
	c := NewStatisticsCache(16, time.Minute, 4)
	defer c.Stop()

	for d := 1; d <= 5; d++ {
		c.Set(statsFor(calendar.Date(2024, time.January, d), d))
	}
	c.Invalidate(calendar.Date(2024, time.January, 3))
	_, ok := c.Get(calendar.Date(2024, time.January, 3))
	assert.False(t, ok)
	assert.Equal(t, 4, c.Metrics().Size)

	c.Clear()
	assert.Equal(t, 0, c.Metrics().Size)
}

func TestStatisticsCache_ShardsRoundUp(t *testing.T) {
	c := NewStatisticsCache(100, time.Minute, 5)
	defer c.Stop()

	assert.Len(t, c.shards, 8)
	assert.Equal(t, 7, c.shardMask)

	c.Stop()
}

func TestStatisticsCache_Concurrency(t *testing.T) {
	c := NewStatisticsCache(64, time.Minute, 8)
	defer c.Stop()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				day := calendar.AddDays(calendar.Date(2024, time.January, 1), (g*100+i)%30)
				c.Set(statsFor(day, i))
				_, _ = c.Get(day)
			}
		}()
	}
	wg.Wait()

	m := c.Metrics()
	assert.LessOrEqual(t, m.Size, 30)
	assert.Equal(t, int64(800), m.Hits+m.Misses)
}
