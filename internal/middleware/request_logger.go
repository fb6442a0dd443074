package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/logger"
)

// RequestLogger logs one structured line per request and, when an async
// logger is installed, records it in the activity log. Requests for
// skipPaths (probes and the metrics endpoint) are not logged.
func RequestLogger(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		statusCode := c.Writer.Status()
		level := getLogLevel(statusCode)
		orderID := c.Param("id")

		log := logger.Logger().With().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status_code", statusCode).
			Int64("duration_ms", latency.Milliseconds()).
			Str("ip", c.ClientIP()).
			Logger()
		if orderID != "" {
			log = log.With().Str("order_id", orderID).Logger()
		}

		switch level {
		case model.SeverityError:
			log.Error().Msg("HTTP request")
		case model.SeverityWarn:
			log.Warn().Msg("HTTP request")
		default:
			log.Info().Msg("HTTP request")
		}

		al := GetAsyncLogger()
		if al == nil {
			return
		}
		entry := &model.Activity{
			At:        start.UTC(),
			Kind:      model.ActivityRequest,
			Severity:  level,
			OrderID:   orderID,
			RequestID: GetRequestID(c),
			Method:    c.Request.Method,
			Route:     c.FullPath(),
			Path:      c.Request.URL.Path,
			Status:    statusCode,
			LatencyMS: latency.Milliseconds(),
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if subscriberID := c.Param("subscriberId"); subscriberID != "" {
			entry.SubscriberID = subscriberID
		}
		al.Log(entry)
	}
}

func getLogLevel(statusCode int) string {
	switch {
	case statusCode >= 500:
		return model.SeverityError
	case statusCode >= 400:
		return model.SeverityWarn
	default:
		return model.SeverityInfo
	}
}
