package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/meal-ledger/internal/circuitbreaker"
	"github.com/guttosm/meal-ledger/internal/domain/dto"
	"github.com/guttosm/meal-ledger/internal/i18n"
	"github.com/guttosm/meal-ledger/internal/ledger"
	"github.com/guttosm/meal-ledger/internal/logger"
	"github.com/guttosm/meal-ledger/internal/repository"
	"github.com/guttosm/meal-ledger/internal/service"
)

// ErrorClass is the API rendering of an error.
type ErrorClass struct {
	Status int
	Code   string
	// Detail is the ledger's own description of a rule violation. It is
	// empty for infrastructure errors, whose text is never sent to clients.
	Detail string
}

// ClassifyError maps service, ledger and store errors to an HTTP status and
// API error code.
func ClassifyError(err error) ErrorClass {
	var invalid *dto.ValidationError
	if errors.As(err, &invalid) {
		return ErrorClass{Status: http.StatusBadRequest, Code: dto.ErrCodeInvalidRequest, Detail: invalid.Error()}
	}
	var rule *ledger.Error
	if errors.As(err, &rule) {
		status, code := dto.StatusFromKind(rule.Kind)
		return ErrorClass{Status: status, Code: code, Detail: rule.Message}
	}

	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return ErrorClass{Status: http.StatusNotFound, Code: dto.ErrCodeNotFound}
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrorClass{Status: http.StatusConflict, Code: dto.ErrCodeVersionConflict}
	case errors.Is(err, service.ErrSweepInProgress):
		return ErrorClass{Status: http.StatusConflict, Code: dto.ErrCodeSweepInProgress}
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return ErrorClass{Status: http.StatusServiceUnavailable, Code: dto.ErrCodeUnavailable}
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorClass{Status: http.StatusGatewayTimeout, Code: dto.ErrCodeTimeout}
	default:
		return ErrorClass{Status: http.StatusInternalServerError, Code: dto.ErrCodeInternal}
	}
}

// NewErrorResponse builds the translated error body for class.
func NewErrorResponse(c *gin.Context, class ErrorClass) dto.ErrorResponse {
	message := i18n.GetTranslator().Translate(i18n.ErrorKey(class.Code), i18n.GetLocale(c))
	resp := dto.NewError(class.Code, message).WithRequestID(GetRequestID(c))
	if class.Detail != "" {
		resp.Details = map[string]string{"reason": class.Detail}
	}
	return resp
}

// ErrorHandler logs the errors handlers attach to the context and renders
// the last one when the handler wrote no response of its own.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		class := ClassifyError(err)

		log := logger.Logger()
		event := log.Warn()
		if class.Status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Err(err).
			Str("request_id", GetRequestID(c)).
			Str("code", class.Code).
			Str("order_id", c.Param("id")).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Request error")

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(class.Status, NewErrorResponse(c, class))
		}
	}
}
