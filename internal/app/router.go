// Package app provides router configuration.
package app

import (
	"github.com/guttosm/meal-ledger/config"
	"github.com/guttosm/meal-ledger/internal/http"
	"github.com/guttosm/meal-ledger/internal/middleware"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	HealthHandler *http.HealthHandler
	OrderRoutes   *http.OrderRoutes
	SweepRoutes   *http.SweepRoutes
	// ActivityRoutes is nil when the activity log is not persisted.
	ActivityRoutes *http.ActivityRoutes
	Idempotency    *middleware.IdempotencyStore
	Config         http.RouterConfig
}

// InitializeRouter initializes HTTP handlers and router configuration.
func InitializeRouter(
	services *ServiceComponents,
	dbComponents *DatabaseComponents,
	cfg config.Config,
) *RouterComponents {
	healthHandler := http.NewHealthHandler()
	healthHandler.SetSweepReporter(services.Sweeper)

	// Register store checks and circuit breakers for readiness
	if dbComponents != nil {
		if dbComponents.DB != nil {
			healthHandler.RegisterChecker("mongodb", dbComponents.DB)
		}
		if dbComponents.OrdersCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_orders", dbComponents.OrdersCircuitBreaker)
		}
		if dbComponents.ActivityCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_activity", dbComponents.ActivityCircuitBreaker)
		}
	}

	var idempotency *middleware.IdempotencyStore
	if cfg.Idempotency.Enabled {
		idempotency = middleware.NewIdempotencyStore(cfg.Idempotency.TTL)
	}

	routerCfg := http.RouterConfig{
		RateLimit:       cfg.Server.RateLimit,
		RateWindow:      cfg.Server.RateWindow,
		SweepRateLimit:  cfg.Server.SweepRateLimit,
		SweepRateWindow: cfg.Server.SweepRateWindow,
		RequestTimeout:  cfg.Server.RequestTimeout,
		Idempotency:     idempotency,
		CORSOrigins:     cfg.Server.CORSOrigins,
		SwaggerUser:     cfg.Server.SwaggerUser,
		SwaggerPass:     cfg.Server.SwaggerPass,
	}

	components := &RouterComponents{
		HealthHandler: healthHandler,
		OrderRoutes:   http.NewOrderRoutes(services.Orders),
		SweepRoutes:   http.NewSweepRoutes(services.Sweeper),
		Idempotency:   idempotency,
		Config:        routerCfg,
	}
	if dbComponents != nil && dbComponents.Activity != nil {
		components.ActivityRoutes = http.NewActivityRoutes(dbComponents.Activity)
	}
	return components
}

// Groups returns the route groups to mount under the API base path.
func (r *RouterComponents) Groups() []http.RouteGroup {
	groups := []http.RouteGroup{r.OrderRoutes, r.SweepRoutes}
	if r.ActivityRoutes != nil {
		groups = append(groups, r.ActivityRoutes)
	}
	return groups
}

// Close stops the background workers owned by the router components.
func (r *RouterComponents) Close() {
	if r == nil {
		return
	}
	r.SweepRoutes.Stop()
	if r.Idempotency != nil {
		r.Idempotency.Stop()
	}
}
