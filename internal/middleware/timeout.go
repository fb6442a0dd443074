package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/meal-ledger/internal/domain/dto"
)

// TimeoutConfig holds configuration for the timeout middleware.
type TimeoutConfig struct {
	// Timeout bounds the request context.
	Timeout time.Duration
	// SkipRoutes lists route patterns that keep the server's context, such as
	// the manual sweep trigger.
	SkipRoutes []string
}

// DefaultTimeoutConfig returns the timeout defaults.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{Timeout: 30 * time.Second}
}

// Timeout puts a deadline on the request context. Handlers and the order
// store observe it; when it expires before anything was written the client
// gets a 504. The handler runs on the request goroutine so the gin context is
// never shared.
func Timeout(cfg TimeoutConfig) gin.HandlerFunc {
	if cfg.Timeout <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	skip := make(map[string]struct{}, len(cfg.SkipRoutes))
	for _, r := range cfg.SkipRoutes {
		skip[r] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}
		class := ErrorClass{Status: http.StatusGatewayTimeout, Code: dto.ErrCodeTimeout}
		c.AbortWithStatusJSON(class.Status, NewErrorResponse(c, class))
	}
}

// TimeoutWithDuration is Timeout with only the duration set.
func TimeoutWithDuration(timeout time.Duration) gin.HandlerFunc {
	return Timeout(TimeoutConfig{Timeout: timeout})
}
