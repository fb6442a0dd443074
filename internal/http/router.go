package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/meal-ledger/internal/metrics"
	"github.com/guttosm/meal-ledger/internal/middleware"
)

// APIBasePath prefixes every business route.
const APIBasePath = "/api/v1"

// RouterConfig holds router configuration options.
type RouterConfig struct {
	RateLimit  int
	RateWindow time.Duration
	// SweepRateLimit caps manual sweeps per client. Zero leaves only the
	// global limit.
	SweepRateLimit  int
	SweepRateWindow time.Duration
	RequestTimeout  time.Duration
	// Idempotency stores replayable responses. Nil disables idempotency keys.
	Idempotency *middleware.IdempotencyStore
	CORSOrigins []string
	SwaggerUser string
	SwaggerPass string
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:       100,
		RateWindow:      time.Minute,
		SweepRateLimit:  2,
		SweepRateWindow: time.Minute,
		RequestTimeout:  middleware.DefaultTimeoutConfig().Timeout,
	}
}

// NewRouter creates and configures the Gin router of the meal ledger API.
func NewRouter(healthHandler *HealthHandler, cfg RouterConfig, groups ...RouteGroup) *gin.Engine {
	router := gin.New()

	configureGlobalMiddleware(router, &cfg)
	registerInfrastructureRoutes(router, healthHandler, &cfg)

	api := router.Group(APIBasePath)
	configureAPIMiddleware(api, &cfg)
	for _, g := range groups {
		if g != nil {
			g.RegisterRoutes(api, &cfg)
		}
	}

	return router
}

// configureGlobalMiddleware sets up middleware applied to all routes.
func configureGlobalMiddleware(router *gin.Engine, cfg *RouterConfig) {
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression("/metrics"),
		middleware.RequestLogger("/healthz", "/readyz", "/metrics"),
		middleware.ErrorHandler(),
	)

	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		router.Use(limiter.RateLimit())
	}
}

// registerInfrastructureRoutes registers health, metrics, and documentation routes.
func registerInfrastructureRoutes(router *gin.Engine, healthHandler *HealthHandler, cfg *RouterConfig) {
	if healthHandler != nil {
		healthHandler.Register(router)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.SwaggerUser != "" && cfg.SwaggerPass != "" {
		authorized := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
			cfg.SwaggerUser: cfg.SwaggerPass,
		}))
		authorized.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	} else {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

// configureAPIMiddleware sets up middleware for the API group.
func configureAPIMiddleware(api *gin.RouterGroup, cfg *RouterConfig) {
	// A manual sweep outlives any sensible request deadline.
	api.Use(middleware.Timeout(middleware.TimeoutConfig{
		Timeout:    cfg.RequestTimeout,
		SkipRoutes: []string{APIBasePath + "/sweep"},
	}))

	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Store:   cfg.Idempotency,
			Enabled: true,
		}))
	}
}
