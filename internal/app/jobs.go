// Package app provides background job scheduling.
package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/meal-ledger/config"
	"github.com/guttosm/meal-ledger/internal/scheduler"
	"github.com/guttosm/meal-ledger/internal/service"
)

// Job names.
const (
	JobReconciliationSweep = "reconciliation_sweep"
	JobBillingReport       = "billing_report"
)

// InitializeScheduler registers the daily sweep and the billing report.
// Returns nil when scheduling is disabled.
func InitializeScheduler(cfg config.SweepConfig, services *ServiceComponents) (*scheduler.Scheduler, error) {
	if !cfg.Enabled {
		log.Info().Msg("Background jobs disabled")
		return nil, nil
	}

	s := scheduler.New()
	if err := s.Add(JobReconciliationSweep, cfg.Schedule, sweepJob(services.Sweeper)); err != nil {
		return nil, err
	}
	if err := s.Add(JobBillingReport, cfg.BillingSchedule, billingJob(services.Billing)); err != nil {
		return nil, err
	}
	return s, nil
}

// sweepJob runs the reconciliation sweep. A sweep already started by hand
// is not an error.
func sweepJob(sweeper *service.Sweeper) scheduler.Job {
	return func(ctx context.Context) error {
		_, err := sweeper.Run(ctx)
		if errors.Is(err, service.ErrSweepInProgress) {
			log.Info().Msg("Scheduled sweep skipped, a sweep is already running")
			return nil
		}
		return err
	}
}

func billingJob(billing *service.BillingReporter) scheduler.Job {
	return func(ctx context.Context) error {
		_, err := billing.Run(ctx)
		return err
	}
}
