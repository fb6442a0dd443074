package metrics

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(PrometheusMiddleware())
	router.GET("/orders/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/error", func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "error")
	})

	tests := []struct {
		name           string
		path           string
		label          string
		expectedStatus int
	}{
		{
			name:           "uses the route template as path label",
			path:           "/orders/65a1",
			label:          "/orders/:id",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "records metrics for error request",
			path:           "/error",
			label:          "/error",
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "collapses unknown paths",
			path:           "/nope/123",
			label:          "unmatched",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(HTTPRequestTotal.WithLabelValues(http.MethodGet, tt.label, strconv.Itoa(tt.expectedStatus)))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			after := testutil.ToFloat64(HTTPRequestTotal.WithLabelValues(http.MethodGet, tt.label, strconv.Itoa(tt.expectedStatus)))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestRecordLedgerOperation(t *testing.T) {
	before := testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("leave.add", "success"))

	RecordLedgerOperation("leave.add", "success", 3*time.Millisecond)
	RecordLedgerOperation("leave.add", "leave_cap_exceeded", time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("leave.add", "success")))
}

func TestRecordSweep(t *testing.T) {
	finished := time.Date(2024, 1, 2, 0, 0, 5, 0, time.UTC)
	successBefore := testutil.ToFloat64(SweepRunsTotal.WithLabelValues("success"))
	partialBefore := testutil.ToFloat64(SweepRunsTotal.WithLabelValues("partial"))
	updatedBefore := testutil.ToFloat64(SweepOrdersTotal.WithLabelValues("updated"))

	RecordSweep(2*time.Second, 3, 7, 0, 0, finished)
	assert.Equal(t, successBefore+1, testutil.ToFloat64(SweepRunsTotal.WithLabelValues("success")))
	assert.Equal(t, updatedBefore+3, testutil.ToFloat64(SweepOrdersTotal.WithLabelValues("updated")))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(SweepLastSuccess))

	RecordSweep(time.Second, 0, 1, 1, 0, finished.Add(time.Hour))
	assert.Equal(t, partialBefore+1, testutil.ToFloat64(SweepRunsTotal.WithLabelValues("partial")))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(SweepLastSuccess))
}

func TestGauges(t *testing.T) {
	SetUnbilledExpiredOrders(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(UnbilledExpiredOrders))

	SetCircuitBreakerState("mongodb-orders", 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("mongodb-orders")))

	UpdateCacheMetrics(50, 100)
	assert.Equal(t, float64(50), testutil.ToFloat64(CacheSize))
	assert.Equal(t, float64(100), testutil.ToFloat64(CacheCapacity))
}

func TestRecordCacheOperation(t *testing.T) {
	before := testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("get", "hit"))
	RecordCacheOperation("get", "hit")
	assert.Equal(t, before+1, testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("get", "hit")))
}
