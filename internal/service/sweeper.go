package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/meal-ledger/internal/calendar"
	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/ledger"
	"github.com/guttosm/meal-ledger/internal/logger"
	"github.com/guttosm/meal-ledger/internal/metrics"
	"github.com/guttosm/meal-ledger/internal/repository"
	"github.com/guttosm/meal-ledger/internal/service/cache"
)

// ErrSweepInProgress is returned when a sweep is requested while one is running.
var ErrSweepInProgress = errors.New("sweep already in progress")

// SweepConfig tunes the reconciliation sweep.
type SweepConfig struct {
	// PageSize is the number of order ids fetched per page.
	PageSize int
	// Workers bounds how many orders are reconciled at once.
	Workers int
	// RepairAttendances also re-derives missing or stale attendance days.
	RepairAttendances bool
	// OrderTimeout bounds the work spent on a single order. Zero disables it.
	OrderTimeout time.Duration
}

// DefaultSweepConfig returns the sweep defaults.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		PageSize:     200,
		Workers:      8,
		OrderTimeout: 10 * time.Second,
	}
}

// SweepReport summarizes one sweep.
type SweepReport struct {
	Day        time.Time `json:"day"`
	StartedAt  time.Time `json:"started_at"`
	Scanned    int       `json:"scanned"`
	Updated    int       `json:"updated"`
	Unchanged  int       `json:"unchanged"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	DurationMS int64     `json:"duration_ms"`
	Canceled   bool      `json:"canceled"`
}

type sweepOutcome int

const (
	outcomeUnchanged sweepOutcome = iota
	outcomeUpdated
	outcomeFailed
	outcomeSkipped
)

// Sweeper brings every stored order in line with the current day. Each order
// is handled on its own: a failure is logged and counted, and the sweep moves
// on. Cancelling the context stops it between orders.
type Sweeper struct {
	store  repository.OrderStore
	ledger *ledger.Ledger
	clock  Clock
	locks  *KeyedMutex[primitive.ObjectID]
	cfg    SweepConfig
	log    zerolog.Logger
	stats  cache.Cache

	running atomic.Bool
	mu      sync.RWMutex
	last    *SweepReport
}

// SweepOption configures a Sweeper.
type SweepOption func(*Sweeper)

// WithSweepStatisticsCache makes the sweeper clear c after a sweep that
// updated at least one order. Pass the cache of the OrderService.
func WithSweepStatisticsCache(c cache.Cache) SweepOption {
	return func(s *Sweeper) {
		s.stats = c
	}
}

// NewSweeper creates a sweeper. locks should be shared with the OrderService
// so that the sweep and caller edits of one order never interleave.
func NewSweeper(store repository.OrderStore, l *ledger.Ledger, clock Clock, locks *KeyedMutex[primitive.ObjectID], cfg SweepConfig, opts ...SweepOption) *Sweeper {
	def := DefaultSweepConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if locks == nil {
		locks = NewKeyedMutex[primitive.ObjectID]()
	}
	s := &Sweeper{
		store:  store,
		ledger: l,
		clock:  clock,
		locks:  locks,
		cfg:    cfg,
		log:    logger.Component("sweeper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LastReport returns the report of the most recent finished sweep.
func (s *Sweeper) LastReport() (SweepReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return SweepReport{}, false
	}
	return *s.last, true
}

// Run performs one sweep. Only one sweep runs at a time; a concurrent call
// gets ErrSweepInProgress. The report is returned even when the sweep was
// cut short, together with the reason.
func (s *Sweeper) Run(ctx context.Context) (SweepReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SweepReport{}, ErrSweepInProgress
	}
	defer s.running.Store(false)

	today := s.clock.Today()
	report := SweepReport{Day: today, StartedAt: time.Now().UTC()}
	s.log.Info().Str("day", calendar.Format(today)).Msg("Reconciliation sweep started")

	var updated, unchanged, failed, skipped atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)

	var runErr error
	after := primitive.NilObjectID
	for ctx.Err() == nil {
		ids, err := s.store.ListIDs(ctx, after, s.cfg.PageSize)
		if err != nil {
			if ctx.Err() == nil {
				runErr = fmt.Errorf("list orders after %s: %w", after.Hex(), err)
			}
			break
		}
		report.Scanned += len(ids)

		for i, id := range ids {
			if ctx.Err() != nil {
				skipped.Add(int64(len(ids) - i))
				break
			}
			g.Go(func() error {
				switch s.reconcile(ctx, id, today) {
				case outcomeUpdated:
					updated.Add(1)
				case outcomeUnchanged:
					unchanged.Add(1)
				case outcomeFailed:
					failed.Add(1)
				case outcomeSkipped:
					skipped.Add(1)
				}
				return nil
			})
		}
		// Finish the page before moving the cursor past it.
		_ = g.Wait()

		if len(ids) < s.cfg.PageSize {
			break
		}
		after = ids[len(ids)-1]
	}

	report.Updated = int(updated.Load())
	report.Unchanged = int(unchanged.Load())
	report.Failed = int(failed.Load())
	report.Skipped = int(skipped.Load())
	report.DurationMS = time.Since(report.StartedAt).Milliseconds()
	// Updated orders may change counts of any day in their period.
	if report.Updated > 0 && s.stats != nil {
		s.stats.Clear()
	}
	if runErr == nil && ctx.Err() != nil {
		report.Canceled = true
		runErr = ctx.Err()
	}
	s.finish(report, runErr)
	return report, runErr
}

func (s *Sweeper) finish(report SweepReport, err error) {
	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	duration := time.Duration(report.DurationMS) * time.Millisecond
	event := s.log.Info()
	if err != nil && !report.Canceled {
		metrics.RecordSweepError()
		event = s.log.Error().Err(err)
	} else {
		metrics.RecordSweep(duration, report.Updated, report.Unchanged, report.Failed, report.Skipped, time.Now())
		if report.Failed > 0 || report.Canceled {
			event = s.log.Warn()
		}
	}
	event.
		Str("day", calendar.Format(report.Day)).
		Int("scanned", report.Scanned).
		Int("updated", report.Updated).
		Int("unchanged", report.Unchanged).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Bool("canceled", report.Canceled).
		Dur("duration", duration).
		Msg("Reconciliation sweep finished")
}

// reconcile handles a single order and never lets its failure escape.
func (s *Sweeper) reconcile(ctx context.Context, id primitive.ObjectID, today time.Time) (outcome sweepOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("order_id", id.Hex()).
				Interface("panic", r).
				Msg("Sweep recovered from panic while reconciling order")
			outcome = outcomeFailed
		}
	}()

	if ctx.Err() != nil {
		return outcomeSkipped
	}
	if s.cfg.OrderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.OrderTimeout)
		defer cancel()
	}

	changed, err := s.reconcileLocked(ctx, id, today)
	switch {
	case err == nil && changed:
		return outcomeUpdated
	case err == nil:
		return outcomeUnchanged
	case errors.Is(err, context.Canceled):
		return outcomeSkipped
	default:
		s.log.Error().
			Err(err).
			Str("order_id", id.Hex()).
			Str("day", calendar.Format(today)).
			Msg("Sweep failed to reconcile order")
		return outcomeFailed
	}
}

func (s *Sweeper) reconcileLocked(ctx context.Context, id primitive.ObjectID, today time.Time) (bool, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return false, err
	}
	defer unlock()

	order, err := s.store.Load(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		// Deleted since the page was listed.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := checkPeriod(order); err != nil {
		return false, err
	}

	changed := ledger.Transition(order, today)
	if s.cfg.RepairAttendances {
		repaired, err := s.ledger.RepairAttendances(order)
		if err != nil {
			return false, err
		}
		changed = changed || repaired
	}
	if !changed {
		return false, nil
	}
	if err := s.store.Save(ctx, order); err != nil {
		return false, fmt.Errorf("save: %w", err)
	}
	return true, nil
}

// checkPeriod rejects orders whose stored dates cannot be reasoned about.
func checkPeriod(o *model.Order) error {
	if o.PeriodStart.IsZero() || o.PeriodEnd.IsZero() {
		return ledger.Errorf(ledger.KindInvalidInput, "order has no period dates")
	}
	if o.PeriodStart.After(o.PeriodEnd) {
		return ledger.Errorf(ledger.KindInvalidRange, "order period %s..%s is inverted",
			calendar.Format(o.PeriodStart), calendar.Format(o.PeriodEnd))
	}
	return nil
}
