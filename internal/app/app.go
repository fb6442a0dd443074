// Package app provides application initialization and dependency injection.
package app

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/meal-ledger/config"
	"github.com/guttosm/meal-ledger/internal/http"
	"github.com/guttosm/meal-ledger/internal/middleware"
	"github.com/guttosm/meal-ledger/internal/repository"
	"github.com/guttosm/meal-ledger/internal/scheduler"
)

// App holds the wired application.
type App struct {
	Router    *gin.Engine
	Services  *ServiceComponents
	Database  *DatabaseComponents
	Scheduler *scheduler.Scheduler

	routes *RouterComponents
}

// InitializeApp creates and wires all application dependencies.
// This is the main orchestration function that initializes all components.
func InitializeApp(cfg config.Config) (*App, error) {
	// Initialize logger first (needed by other components)
	InitializeLogger(cfg.Log)

	// Initialize database components (MongoDB repositories and services)
	dbComponents := InitializeDatabase(cfg.Database)
	InitializeAuditLogger(dbComponents)

	var store repository.OrderStore
	if dbComponents != nil {
		store = dbComponents.Orders
	} else {
		log.Warn().Msg("Orders are kept in memory and lost on restart")
		store = repository.NewMemoryOrderStore()
	}

	// Initialize business services
	services, err := InitializeServices(cfg, store, nil)
	if err != nil {
		closeDatabase(dbComponents)
		return nil, err
	}

	sched, err := InitializeScheduler(cfg.Sweep, services)
	if err != nil {
		services.Close()
		closeDatabase(dbComponents)
		return nil, err
	}

	// Initialize router components (handlers and configuration)
	routes := InitializeRouter(services, dbComponents, cfg)

	return &App{
		Router:    http.NewRouter(routes.HealthHandler, routes.Config, routes.Groups()...),
		Services:  services,
		Database:  dbComponents,
		Scheduler: sched,
		routes:    routes,
	}, nil
}

// Start launches the background jobs.
func (a *App) Start() {
	if a.Scheduler != nil {
		a.Scheduler.Start()
	}
}

// Close stops the background jobs, flushes the audit trail and disconnects
// from the database, in that order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Scheduler != nil {
		errs = append(errs, a.Scheduler.Stop(ctx))
	}
	a.routes.Close()
	a.Services.Close()
	middleware.StopAsyncLogger()
	errs = append(errs, a.Database.Close(ctx))
	return errors.Join(errs...)
}

func closeDatabase(dbComponents *DatabaseComponents) {
	middleware.StopAsyncLogger()
	if err := dbComponents.Close(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
	}
}
