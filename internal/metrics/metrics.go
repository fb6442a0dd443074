// Package metrics provides Prometheus metrics collection for the meal ledger.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// LedgerOperationsTotal counts order mutations by operation and result.
	// Result is "success" or the ledger error kind.
	LedgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total number of ledger operations",
		},
		[]string{"operation", "result"},
	)

	// LedgerOperationDuration tracks how long an order mutation holds its order.
	LedgerOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Ledger operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"operation"},
	)

	// SweepRunsTotal counts reconciliation sweeps by result.
	SweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Total number of reconciliation sweeps",
		},
		[]string{"result"},
	)

	// SweepOrdersTotal counts orders visited by the sweep, by outcome.
	SweepOrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_orders_total",
			Help: "Total number of orders visited by reconciliation sweeps",
		},
		[]string{"outcome"},
	)

	// SweepDuration tracks reconciliation sweep duration.
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Reconciliation sweep duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	// SweepLastSuccess is the unix time of the last sweep that finished without failures.
	SweepLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweep_last_success_timestamp_seconds",
			Help: "Unix time of the last fully successful reconciliation sweep",
		},
	)

	// UnbilledExpiredOrders is the number of expired orders still waiting for billing.
	UnbilledExpiredOrders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unbilled_expired_orders",
			Help: "Number of expired orders not yet billed",
		},
	)

	// CircuitBreakerState exposes breaker state: 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	// CacheOperationsTotal tracks cache operations.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"},
	)

	// CacheSize tracks current cache size.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Current cache size",
		},
	)

	// CacheCapacity tracks cache capacity.
	CacheCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_capacity",
			Help: "Cache capacity",
		},
	)

	// ActivityEntriesTotal tracks activity log entries by outcome.
	ActivityEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_entries_total",
			Help: "Activity log entries by outcome (written, failed, dropped)",
		},
		[]string{"result"},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordLedgerOperation records the outcome of an order mutation.
func RecordLedgerOperation(operation, result string, duration time.Duration) {
	LedgerOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	LedgerOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordSweep records a finished sweep and its per-order outcomes.
func RecordSweep(duration time.Duration, updated, unchanged, failed, skipped int, finishedAt time.Time) {
	SweepDuration.Observe(duration.Seconds())
	SweepOrdersTotal.WithLabelValues("updated").Add(float64(updated))
	SweepOrdersTotal.WithLabelValues("unchanged").Add(float64(unchanged))
	SweepOrdersTotal.WithLabelValues("failed").Add(float64(failed))
	SweepOrdersTotal.WithLabelValues("skipped").Add(float64(skipped))

	if failed == 0 && skipped == 0 {
		SweepRunsTotal.WithLabelValues("success").Inc()
		SweepLastSuccess.Set(float64(finishedAt.Unix()))
		return
	}
	SweepRunsTotal.WithLabelValues("partial").Inc()
}

// RecordSweepError records a sweep that could not run to completion.
func RecordSweepError() {
	SweepRunsTotal.WithLabelValues("error").Inc()
}

// SetUnbilledExpiredOrders publishes the billing backlog.
func SetUnbilledExpiredOrders(n int64) {
	UnbilledExpiredOrders.Set(float64(n))
}

// SetCircuitBreakerState publishes the numeric state of a named breaker.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCacheOperation records metrics for a cache operation.
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheMetrics updates cache size and capacity metrics.
func UpdateCacheMetrics(size, capacity int) {
	CacheSize.Set(float64(size))
	CacheCapacity.Set(float64(capacity))
}

// RecordActivityEntries counts n activity entries that ended with result.
func RecordActivityEntries(result string, n int) {
	ActivityEntriesTotal.WithLabelValues(result).Add(float64(n))
}
