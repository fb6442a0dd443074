package service

import (
	"container/list"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/metrics"
	"github.com/guttosm/meal-ledger/internal/service/cache"
)

// StatisticsCache keeps computed daily statistics for a short time. Entries
// are spread over shards by day number so that dashboards polling different
// days do not contend on one lock.
type StatisticsCache struct {
	shards    []*statsShard
	shardMask int
	stopOnce  sync.Once
	stopCh    chan struct{}
}

var _ cache.CacheWithMetrics = (*StatisticsCache)(nil)

// NewStatisticsCache creates a cache holding about capacity days for ttl.
// numShards is rounded up to a power of two.
func NewStatisticsCache(capacity int, ttl time.Duration, numShards int) *StatisticsCache {
	if numShards <= 0 {
		numShards = 16
	}
	n := 1
	for n < numShards {
		n *= 2
	}

	perShard := max(capacity/n, 1)
	sc := &StatisticsCache{
		shards:    make([]*statsShard, n),
		shardMask: n - 1,
		stopCh:    make(chan struct{}),
	}
	for i := range sc.shards {
		sc.shards[i] = &statsShard{
			capacity: perShard,
			ttl:      ttl,
			items:    make(map[int]*list.Element, perShard),
			order:    list.New(),
		}
	}
	go sc.janitor(ttl)
	return sc
}

// dayKey numbers calendar days from the Unix epoch.
func dayKey(day time.Time) int {
	return int(calendar.Normalize(day).Unix() / 86400)
}

func (sc *StatisticsCache) shard(key int) *statsShard {
	return sc.shards[key&sc.shardMask]
}

// Get returns a copy of the statistics cached for day.
func (sc *StatisticsCache) Get(day time.Time) (model.DailyStatistics, bool) {
	key := dayKey(day)
	return sc.shard(key).get(key, time.Now())
}

// Set caches value under its date.
func (sc *StatisticsCache) Set(value model.DailyStatistics) {
	key := dayKey(value.Date)
	sc.shard(key).set(key, value, time.Now())
}

// Invalidate drops the entry for day.
func (sc *StatisticsCache) Invalidate(day time.Time) {
	key := dayKey(day)
	sc.shard(key).invalidate(key)
}

// Clear drops every entry.
func (sc *StatisticsCache) Clear() {
	for _, s := range sc.shards {
		s.clear()
	}
	metrics.RecordCacheOperation("clear", "success")
}

// Stop ends the background expiry loop. It is safe to call more than once.
func (sc *StatisticsCache) Stop() {
	sc.stopOnce.Do(func() {
		close(sc.stopCh)
	})
}

// Metrics returns counters aggregated over all shards.
func (sc *StatisticsCache) Metrics() cache.Metrics {
	var total cache.Metrics
	for _, s := range sc.shards {
		m := s.metrics()
		total.Hits += m.Hits
		total.Misses += m.Misses
		total.Evictions += m.Evictions
		total.Size += m.Size
		total.Capacity += m.Capacity
	}
	return total
}

func (sc *StatisticsCache) janitor(ttl time.Duration) {
	interval := max(ttl, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			for _, s := range sc.shards {
				s.expire(now)
			}
			m := sc.Metrics()
			metrics.UpdateCacheMetrics(m.Size, m.Capacity)
		case <-sc.stopCh:
			return
		}
	}
}

// statsShard is an LRU list with per-entry expiry.
type statsShard struct {
	mu        sync.Mutex
	capacity  int
	ttl       time.Duration
	items     map[int]*list.Element
	order     *list.List
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type statsEntry struct {
	key       int
	value     model.DailyStatistics
	expiresAt time.Time
}

func (s *statsShard) get(key int, now time.Time) (model.DailyStatistics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		s.misses.Add(1)
		metrics.RecordCacheOperation("get", "miss")
		return model.DailyStatistics{}, false
	}
	entry := el.Value.(*statsEntry)
	if now.After(entry.expiresAt) {
		s.order.Remove(el)
		delete(s.items, key)
		s.misses.Add(1)
		metrics.RecordCacheOperation("get", "expired")
		return model.DailyStatistics{}, false
	}

	s.order.MoveToFront(el)
	s.hits.Add(1)
	metrics.RecordCacheOperation("get", "hit")
	return copyStatistics(entry.value), true
}

func (s *statsShard) set(key int, value model.DailyStatistics, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value = copyStatistics(value)
	if el, ok := s.items[key]; ok {
		entry := el.Value.(*statsEntry)
		entry.value = value
		entry.expiresAt = now.Add(s.ttl)
		s.order.MoveToFront(el)
		return
	}

	s.items[key] = s.order.PushFront(&statsEntry{key: key, value: value, expiresAt: now.Add(s.ttl)})
	if s.order.Len() > s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(*statsEntry).key)
		s.evictions.Add(1)
		metrics.RecordCacheOperation("evict", "capacity")
	}
	metrics.RecordCacheOperation("set", "success")
}

func (s *statsShard) invalidate(key int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.Remove(el)
		delete(s.items, key)
		metrics.RecordCacheOperation("invalidate", "success")
	}
}

func (s *statsShard) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[int]*list.Element, s.capacity)
	s.order.Init()
}

func (s *statsShard) expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for el := s.order.Back(); el != nil; {
		prev := el.Prev()
		entry := el.Value.(*statsEntry)
		if now.After(entry.expiresAt) {
			s.order.Remove(el)
			delete(s.items, entry.key)
		}
		el = prev
	}
}

func (s *statsShard) metrics() cache.Metrics {
	s.mu.Lock()
	size := len(s.items)
	s.mu.Unlock()

	return cache.Metrics{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
		Size:      size,
		Capacity:  s.capacity,
	}
}

func copyStatistics(s model.DailyStatistics) model.DailyStatistics {
	s.Meals = maps.Clone(s.Meals)
	return s
}
