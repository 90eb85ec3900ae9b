// Package observability carries the HTTP middleware for logging, tracing
// and metrics.
package observability

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Metrics exposes the application-level prometheus instruments.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	BookingsCreated   *prometheus.CounterVec
	BookingsRejected  *prometheus.CounterVec
	BookingsCompleted *prometheus.CounterVec
}

// NewMetrics builds and registers the instruments on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chairbook_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chairbook_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chairbook_bookings_created_total",
			Help: "Bookings successfully created.",
		}, []string{"tenant"}),
		BookingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chairbook_bookings_rejected_total",
			Help: "Booking attempts refused, by reason.",
		}, []string{"tenant", "reason"}),
		BookingsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chairbook_bookings_completed_total",
			Help: "Bookings that reached completion.",
		}, []string{"tenant"}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.BookingsCreated,
		m.BookingsRejected,
		m.BookingsCompleted,
	)
	return m
}

// MetricsMiddleware records request counts and latency per route.
func MetricsMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

var Module = fx.Module("observability",
	fx.Provide(NewMetrics),
	fx.Invoke(ensureTracerProvider),
)

func ensureTracerProvider(_ *sdktrace.TracerProvider) {}
