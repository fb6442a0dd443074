package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/logger"
	"github.com/guttosm/meal-ledger/internal/metrics"
)

// ActivitySink persists activity entries. service.ActivityLog satisfies it.
type ActivitySink interface {
	Record(ctx context.Context, entries ...*model.Activity) error
}

// AsyncLoggerConfig holds configuration for the async logger.
type AsyncLoggerConfig struct {
	// BufferSize is the number of entries that may wait for a worker.
	BufferSize int
	// NumWorkers is the number of goroutines writing entries.
	NumWorkers int
	// BatchSize caps how many entries a worker writes in one call.
	BatchSize int
	// FlushInterval is how long a worker holds a partial batch.
	FlushInterval time.Duration
	// WriteTimeout bounds a single write to the sink.
	WriteTimeout time.Duration
}

// DefaultAsyncLoggerConfig returns the async logger defaults.
func DefaultAsyncLoggerConfig() AsyncLoggerConfig {
	return AsyncLoggerConfig{
		BufferSize:    1000,
		NumWorkers:    2,
		BatchSize:     50,
		FlushInterval: 500 * time.Millisecond,
		WriteTimeout:  5 * time.Second,
	}
}

// AsyncLogger writes activity entries off the request path. Entries are
// batched per worker; when the buffer is full new entries are dropped.
type AsyncLogger struct {
	sink     ActivitySink
	entries  chan *model.Activity
	cfg      AsyncLoggerConfig
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}

	enqueued atomic.Int64
	dropped  atomic.Int64
	written  atomic.Int64
	failed   atomic.Int64
}

// AsyncLoggerStats is a snapshot of the logger counters.
type AsyncLoggerStats struct {
	Enqueued int64 `json:"enqueued"`
	Dropped  int64 `json:"dropped"`
	Written  int64 `json:"written"`
	Failed   int64 `json:"failed"`
}

// NewAsyncLogger starts the worker pool. It returns nil when sink is nil so
// callers can treat a missing activity log as "no persistence".
func NewAsyncLogger(sink ActivitySink, cfg AsyncLoggerConfig) *AsyncLogger {
	if sink == nil {
		return nil
	}
	def := DefaultAsyncLoggerConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = def.NumWorkers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	al := &AsyncLogger{
		sink:    sink,
		entries: make(chan *model.Activity, cfg.BufferSize),
		cfg:     cfg,
		stopCh:  make(chan struct{}),
	}
	for range cfg.NumWorkers {
		al.wg.Add(1)
		go al.worker()
	}
	return al
}

func (al *AsyncLogger) worker() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]*model.Activity, 0, al.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		al.write(batch)
		batch = make([]*model.Activity, 0, al.cfg.BatchSize)
	}

	for {
		select {
		case entry := <-al.entries:
			batch = append(batch, entry)
			if len(batch) >= al.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-al.stopCh:
			for {
				select {
				case entry := <-al.entries:
					batch = append(batch, entry)
					if len(batch) >= al.cfg.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (al *AsyncLogger) write(batch []*model.Activity) {
	ctx, cancel := context.WithTimeout(context.Background(), al.cfg.WriteTimeout)
	defer cancel()

	if err := al.sink.Record(ctx, batch...); err != nil {
		al.failed.Add(int64(len(batch)))
		metrics.RecordActivityEntries("failed", len(batch))
		log := logger.Component("activity")
		log.Warn().Err(err).Int("entries", len(batch)).Msg("Failed to write activity entries")
		return
	}
	al.written.Add(int64(len(batch)))
	metrics.RecordActivityEntries("written", len(batch))
}

// Log enqueues entry and reports whether it was accepted.
func (al *AsyncLogger) Log(entry *model.Activity) bool {
	if al == nil || entry == nil {
		return false
	}
	select {
	case <-al.stopCh:
		al.dropped.Add(1)
		metrics.RecordActivityEntries("dropped", 1)
		return false
	default:
	}

	select {
	case al.entries <- entry:
		al.enqueued.Add(1)
		return true
	default:
		al.dropped.Add(1)
		metrics.RecordActivityEntries("dropped", 1)
		return false
	}
}

// Stop flushes pending entries and waits for the workers. It is safe to call
// more than once.
func (al *AsyncLogger) Stop() {
	if al == nil {
		return
	}
	al.stopOnce.Do(func() {
		close(al.stopCh)
		al.wg.Wait()
	})
}

// Stats returns the logger counters.
func (al *AsyncLogger) Stats() AsyncLoggerStats {
	return AsyncLoggerStats{
		Enqueued: al.enqueued.Load(),
		Dropped:  al.dropped.Load(),
		Written:  al.written.Load(),
		Failed:   al.failed.Load(),
	}
}

var (
	globalAsyncLogger   *AsyncLogger
	globalAsyncLoggerMu sync.RWMutex
)

// InitAsyncLogger installs the process-wide async logger, stopping any
// previous one.
func InitAsyncLogger(sink ActivitySink, cfg AsyncLoggerConfig) {
	globalAsyncLoggerMu.Lock()
	defer globalAsyncLoggerMu.Unlock()

	globalAsyncLogger.Stop()
	globalAsyncLogger = NewAsyncLogger(sink, cfg)
}

// GetAsyncLogger returns the process-wide async logger, or nil.
func GetAsyncLogger() *AsyncLogger {
	globalAsyncLoggerMu.RLock()
	defer globalAsyncLoggerMu.RUnlock()
	return globalAsyncLogger
}

// StopAsyncLogger flushes and removes the process-wide async logger.
func StopAsyncLogger() {
	globalAsyncLoggerMu.Lock()
	defer globalAsyncLoggerMu.Unlock()

	globalAsyncLogger.Stop()
	globalAsyncLogger = nil
}
