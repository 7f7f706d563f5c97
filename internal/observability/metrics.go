package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_http_requests_total",
			Help: "Total number of HTTP requests processed by the message service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "message_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	storeOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_store_operations_total",
			Help: "Total number of message store operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)
	directoryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_directory_cache_total",
			Help: "Directory cache lookups by result.",
		},
		[]string{"result"},
	)
	auditPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "message_audit_publish_errors_total",
			Help: "Total number of audit publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		storeOperationsTotal,
		directoryCacheTotal,
		auditPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler serves the default prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveStoreOp counts a store operation; err decides the outcome label.
func ObserveStoreOp(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storeOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func IncDirectoryCache(result string) {
	directoryCacheTotal.WithLabelValues(result).Inc()
}

func IncAuditPublishError() {
	auditPublishErrorsTotal.Inc()
}
