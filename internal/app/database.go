// Package app provides database initialization and setup.
package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/meal-ledger/config"
	"github.com/guttosm/meal-ledger/internal/circuitbreaker"
	"github.com/guttosm/meal-ledger/internal/metrics"
	"github.com/guttosm/meal-ledger/internal/repository"
	"github.com/guttosm/meal-ledger/internal/service"
)

// DatabaseComponents holds database-related components.
type DatabaseComponents struct {
	DB                     *repository.MongoDB
	Orders                 repository.OrderStore
	Activity               *service.ActivityService
	OrdersCircuitBreaker   *circuitbreaker.CircuitBreaker
	ActivityCircuitBreaker *circuitbreaker.CircuitBreaker
}

// InitializeDatabase initializes MongoDB connection and creates required repositories and services.
// Returns nil if database is disabled or connection fails.
func InitializeDatabase(cfg config.DatabaseConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	db, err := repository.NewMongoDB(cfg.URI, cfg.DatabaseName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing with in-memory orders")
		return nil
	}

	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	if cfg.ActivityTTL > 0 {
		if err := db.SetActivityTTL(context.Background(), cfg.ActivityTTL); err != nil {
			log.Warn().Err(err).Dur("ttl", cfg.ActivityTTL).Msg("Failed to set activity TTL index")
		}
	}

	ordersCB := newStoreBreaker("mongodb-orders", cfg)
	activityCB := newStoreBreaker("mongodb-activity", cfg)

	activity := repository.NewActivityStoreWithCircuitBreaker(repository.NewActivityRepository(db), activityCB)

	return &DatabaseComponents{
		DB:                     db,
		Orders:                 repository.NewOrderStoreWithCircuitBreaker(repository.NewOrdersRepository(db), ordersCB),
		Activity:               service.NewActivityService(activity),
		OrdersCircuitBreaker:   ordersCB,
		ActivityCircuitBreaker: activityCB,
	}
}

// newStoreBreaker creates a breaker that only trips on store failures and
// exports its state.
func newStoreBreaker(name string, cfg config.DatabaseConfig) *circuitbreaker.CircuitBreaker {
	metrics.SetCircuitBreakerState(name, int(circuitbreaker.StateClosed))
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             name,
		IsFailure:        repository.IsStoreFailure,
		OnStateChange: func(name string, _, to circuitbreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})
}

// Close disconnects from MongoDB.
func (d *DatabaseComponents) Close(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return nil
	}
	if err := d.DB.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
