// Package metrics holds the prometheus collectors exported by assetd.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "assetd"

// Metrics groups every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	replacements    *prometheus.CounterVec
	importedAssets  *prometheus.CounterVec
	recoveryImports *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		replacements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_replacements_total",
			Help:      "Asset replacement workflows by result.",
		}, []string{"result"}),
		importedAssets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_assets_total",
			Help:      "Assets inserted by bulk import, by file format.",
		}, []string{"format"}),
		recoveryImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovery_key_imports_total",
			Help:      "BitLocker recovery key uploads by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.replacements,
		m.importedAssets,
		m.recoveryImports,
	)
	return m
}

// Registry exposes the underlying registry (used by tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route. Errors
// are rendered here through the echo error handler so the recorded status
// is the one the client sees.
func (m *Metrics) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request().Method
		status := strconv.Itoa(c.Response().Status)
		m.httpRequests.WithLabelValues(method, route, status).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return nil
	}
}

// ObserveReplacement counts one replacement attempt. The Observe methods
// are no-ops on a nil *Metrics.
func (m *Metrics) ObserveReplacement(err error) {
	if m == nil {
		return
	}
	m.replacements.WithLabelValues(result(err)).Inc()
}

// ObserveImport counts inserted assets for a file format.
func (m *Metrics) ObserveImport(format string, n int) {
	if m == nil {
		return
	}
	m.importedAssets.WithLabelValues(format).Add(float64(n))
}

// ObserveRecoveryImport counts one BitLocker upload.
func (m *Metrics) ObserveRecoveryImport(err error) {
	if m == nil {
		return
	}
	m.recoveryImports.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
