package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/meal-ledger/internal/circuitbreaker"
	"github.com/guttosm/meal-ledger/internal/domain/dto"
	"github.com/guttosm/meal-ledger/internal/ledger"
	"github.com/guttosm/meal-ledger/internal/repository"
	"github.com/guttosm/meal-ledger/internal/service"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{
			name:       "leave cap",
			err:        ledger.Errorf(ledger.KindLeaveCapExceeded, "total leave days 9 exceed the maximum of 8"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeLeaveCapExceeded,
			wantDetail: "total leave days 9 exceed the maximum of 8",
		},
		{
			name:       "wrapped overlapping leave",
			err:        fmt.Errorf("add leave: %w", ledger.Errorf(ledger.KindOverlappingLeave, "overlaps leave x")),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeOverlappingLeave,
			wantDetail: "overlaps leave x",
		},
		{
			name:       "request validation",
			err:        &dto.ValidationError{Field: "start", Message: "must be a date in YYYY-MM-DD format"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidRequest,
			wantDetail: "start: must be a date in YYYY-MM-DD format",
		},
		{
			name:       "missing order",
			err:        fmt.Errorf("load: %w", repository.ErrOrderNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "version conflict",
			err:        repository.ErrVersionConflict,
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeVersionConflict,
		},
		{
			name:       "sweep running",
			err:        service.ErrSweepInProgress,
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeSweepInProgress,
		},
		{
			name:       "breaker open",
			err:        circuitbreaker.ErrCircuitOpen,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   dto.ErrCodeUnavailable,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   dto.ErrCodeTimeout,
		},
		{
			name:       "anything else",
			err:        errors.New("socket closed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantDetail, got.Detail)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		handler     gin.HandlerFunc
		locale      string
		wantStatus  int
		wantCode    string
		wantMessage string
		wantReason  string
	}{
		{
			name: "renders unexpected error as internal",
			handler: func(c *gin.Context) {
				_ = c.Error(errors.New("socket closed"))
			},
			wantStatus:  http.StatusInternalServerError,
			wantCode:    dto.ErrCodeInternal,
			wantMessage: "An unexpected error occurred",
		},
		{
			name: "renders ledger error with reason",
			handler: func(c *gin.Context) {
				_ = c.Error(ledger.Errorf(ledger.KindAlreadyDelivered, "lunch on 2024-01-03 was delivered"))
			},
			wantStatus:  http.StatusConflict,
			wantCode:    dto.ErrCodeAlreadyDelivered,
			wantMessage: "The meal was already delivered",
			wantReason:  "lunch on 2024-01-03 was delivered",
		},
		{
			name: "translates message",
			handler: func(c *gin.Context) {
				_ = c.Error(repository.ErrVersionConflict)
			},
			locale:      "pt-BR",
			wantStatus:  http.StatusConflict,
			wantCode:    dto.ErrCodeVersionConflict,
			wantMessage: "O pedido foi alterado por outra pessoa, tente novamente",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestID(), ErrorHandler())
			router.POST("/orders/:id/leaves", tt.handler)

			req := httptest.NewRequest(http.MethodPost, "/orders/65a1f0c2e4b0a1b2c3d4e5f6/leaves", nil)
			if tt.locale != "" {
				req.Header.Set("Accept-Language", tt.locale)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, w.Header().Get(RequestIDHeader), body.RequestID)
			assert.Equal(t, tt.wantReason, body.Details["reason"])
		})
	}
}

func TestErrorHandler_KeepsWrittenResponse(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/ok", func(c *gin.Context) {
		_ = c.Error(errors.New("logged only"))
		c.String(http.StatusAccepted, "accepted")
	})
	router.GET("/clean", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "accepted", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clean", nil))
	assert.Equal(t, "ok", w.Body.String())
}
