package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/meal-ledger/internal/middleware"
	"github.com/guttosm/meal-ledger/internal/service"
)

// RouteGroup defines a group of routes that can be registered.
type RouteGroup interface {
	// RegisterRoutes registers routes to the given router group.
	RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig)
}

// OrderRoutes handles order, leave and attendance route registration.
type OrderRoutes struct {
	handler *OrderHandler
}

// NewOrderRoutes creates a new OrderRoutes instance.
func NewOrderRoutes(orders service.OrderService) *OrderRoutes {
	return &OrderRoutes{handler: NewOrderHandler(orders)}
}

// RegisterRoutes registers the order routes.
func (r *OrderRoutes) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	orders := rg.Group("/orders")
	orders.POST("", r.handler.CreateOrder)
	orders.GET("/:id", r.handler.GetOrder)
	orders.PUT("/:id", r.handler.EditOrder)
	orders.DELETE("/:id", r.handler.DeleteOrder)
	orders.POST("/:id/renew", r.handler.RenewOrder)
	orders.POST("/:id/billed", r.handler.MarkBilled)

	orders.POST("/:id/leaves", r.handler.AddLeave)
	orders.PUT("/:id/leaves/:leaveId", r.handler.EditLeave)
	orders.DELETE("/:id/leaves/:leaveId", r.handler.RemoveLeave)

	orders.PATCH("/:id/attendance", r.handler.MarkAttendance)
	orders.PATCH("/:id/attendance/batch", r.handler.MarkAttendanceBatch)

	rg.GET("/subscribers/:subscriberId/orders", r.handler.ListSubscriberOrders)
	rg.GET("/statistics/daily", r.handler.DailyStatistics)
}

// GetHandler returns the underlying order handler.
func (r *OrderRoutes) GetHandler() *OrderHandler {
	return r.handler
}

// ActivityRoutes registers the activity log routes.
type ActivityRoutes struct {
	handler *ActivityHandler
}

// NewActivityRoutes creates a new ActivityRoutes instance.
func NewActivityRoutes(activity service.ActivityLog) *ActivityRoutes {
	return &ActivityRoutes{handler: NewActivityHandler(activity)}
}

// RegisterRoutes registers the activity routes.
func (r *ActivityRoutes) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	rg.GET("/orders/:id/history", r.handler.OrderHistory)
	rg.GET("/activity", r.handler.Search)
}

// SweepRoutes registers the manual sweep routes.
type SweepRoutes struct {
	handler *SweepHandler
	limiter *middleware.RateLimiter
}

// NewSweepRoutes creates a new SweepRoutes instance.
func NewSweepRoutes(sweeper SweepRunner) *SweepRoutes {
	return &SweepRoutes{handler: NewSweepHandler(sweeper)}
}

// RegisterRoutes registers the sweep routes. A manual sweep walks every order,
// so it gets its own, much lower, rate limit when one is configured.
func (r *SweepRoutes) RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig) {
	handlers := []gin.HandlerFunc{r.handler.RunSweep}
	if cfg != nil && cfg.SweepRateLimit > 0 {
		r.limiter = middleware.NewRateLimiter(cfg.SweepRateLimit, cfg.SweepRateWindow)
		handlers = append([]gin.HandlerFunc{r.limiter.RouteRateLimit()}, handlers...)
	}
	rg.POST("/sweep", handlers...)
	rg.GET("/sweep/last", r.handler.LastSweep)
}

// Stop releases the sweep rate limiter.
func (r *SweepRoutes) Stop() {
	if r.limiter != nil {
		r.limiter.Stop()
	}
}
