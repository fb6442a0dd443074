package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/meal-ledger/internal/domain/dto"
)

func TestDefaultTimeoutConfig(t *testing.T) {
	cfg := DefaultTimeoutConfig()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.SkipRoutes)
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// waitForDeadline blocks like a store call that honours the context.
	waitForDeadline := func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
		case <-time.After(time.Second):
			c.Status(http.StatusOK)
		}
	}

	tests := []struct {
		name         string
		cfg          TimeoutConfig
		path         string
		handler      gin.HandlerFunc
		wantStatus   int
		wantDeadline bool
	}{
		{
			name:         "fast request completes",
			cfg:          TimeoutConfig{Timeout: time.Second},
			path:         "/orders/1",
			handler:      func(c *gin.Context) { c.Status(http.StatusOK) },
			wantStatus:   http.StatusOK,
			wantDeadline: true,
		},
		{
			name:         "slow request gets 504",
			cfg:          TimeoutConfig{Timeout: 20 * time.Millisecond},
			path:         "/orders/1",
			handler:      waitForDeadline,
			wantStatus:   http.StatusGatewayTimeout,
			wantDeadline: true,
		},
		{
			name: "handler response wins over the deadline",
			cfg:  TimeoutConfig{Timeout: 20 * time.Millisecond},
			path: "/orders/1",
			handler: func(c *gin.Context) {
				<-c.Request.Context().Done()
				c.Status(http.StatusServiceUnavailable)
			},
			wantStatus:   http.StatusServiceUnavailable,
			wantDeadline: true,
		},
		{
			name:         "skipped route has no deadline",
			cfg:          TimeoutConfig{Timeout: 20 * time.Millisecond, SkipRoutes: []string{"/sweep"}},
			path:         "/sweep",
			handler:      waitForDeadline,
			wantStatus:   http.StatusOK,
			wantDeadline: false,
		},
		{
			name:         "zero timeout disables the middleware",
			cfg:          TimeoutConfig{},
			path:         "/orders/1",
			handler:      func(c *gin.Context) { c.Status(http.StatusOK) },
			wantStatus:   http.StatusOK,
			wantDeadline: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hasDeadline bool
			router := gin.New()
			router.Use(RequestID(), Timeout(tt.cfg))
			handler := func(c *gin.Context) {
				_, hasDeadline = c.Request.Context().Deadline()
				tt.handler(c)
			}
			router.GET("/orders/:id", handler)
			router.GET("/sweep", handler)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDeadline, hasDeadline)
			if tt.wantStatus == http.StatusGatewayTimeout {
				var body dto.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, dto.ErrCodeTimeout, body.Error)
				assert.Equal(t, "The request timed out", body.Message)
			}
		})
	}
}

func TestTimeoutWithDuration(t *testing.T) {
	router := gin.New()
	router.Use(TimeoutWithDuration(time.Second))
	router.GET("/orders", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
