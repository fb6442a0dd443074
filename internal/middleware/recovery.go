package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/meal-ledger/internal/domain/dto"
	"github.com/guttosm/meal-ledger/internal/logger"
)

// Recovery turns a handler panic into a translated 500 response. The panic
// value and stack are logged under the request ID; neither reaches the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			log := logger.Logger()
			log.Error().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request.Method).
				Str("route", c.FullPath()).
				Str("order_id", c.Param("id")).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from handler panic")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			class := ErrorClass{Status: http.StatusInternalServerError, Code: dto.ErrCodeInternal}
			c.AbortWithStatusJSON(class.Status, NewErrorResponse(c, class))
		}()
		c.Next()
	}
}
