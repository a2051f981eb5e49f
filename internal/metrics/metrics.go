// Package metrics exposes request instrumentation and the derived business
// gauges over a dedicated Prometheus registry.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/abgdnv/store-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TotalsProvider supplies the current business counters. The gauges are
// always recomputed from a fresh snapshot, never maintained incrementally.
type TotalsProvider interface {
	Totals(ctx context.Context) (store.Totals, error)
}

// Metrics holds the HTTP request collectors and the business gauges.
type Metrics struct {
	registry *prometheus.Registry
	totals   TotalsProvider

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	activeClients  prometheus.Gauge
	activeProducts prometheus.Gauge
	totalSales     prometheus.Gauge
	totalRevenue   prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered on its own
// registry, backed by the given TotalsProvider.
func New(totals TotalsProvider) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		totals:   totals,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests.",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_errors_total",
				Help: "Total HTTP errors.",
			},
			[]string{"method", "endpoint", "error_type"},
		),
		activeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "active_clients_total",
			Help: "Total number of active clients.",
		}),
		activeProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "active_products_total",
			Help: "Total number of active products.",
		}),
		totalSales: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sales_total",
			Help: "Total number of sales.",
		}),
		totalRevenue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "revenue_total",
			Help: "Total revenue from sales.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
		m.activeClients,
		m.activeProducts,
		m.totalSales,
		m.totalRevenue,
		prometheus.NewGoCollector(),
	)
	return m
}

// RefreshBusiness recomputes the business gauges from the live store state.
func (m *Metrics) RefreshBusiness(ctx context.Context) {
	totals, err := m.totals.Totals(ctx)
	if err != nil {
		return
	}
	m.activeClients.Set(float64(totals.Clients))
	m.activeProducts.Set(float64(totals.Products))
	m.totalSales.Set(float64(totals.Sales))
	m.totalRevenue.Set(totals.Revenue)
}

// Instrument wraps the handler chain with request metrics collection and
// refreshes the business gauges after every successful mutating request.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		endpoint := routePattern(r)
		status := ww.Status()
		m.httpDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()

		if status >= http.StatusBadRequest {
			errorType := "client_error"
			if status >= http.StatusInternalServerError {
				errorType = "server_error"
			}
			m.httpErrors.WithLabelValues(r.Method, endpoint, errorType).Inc()
		}

		if isMutating(r.Method) && status < http.StatusBadRequest {
			m.RefreshBusiness(r.Context())
		}
	})
}

// Handler returns the exposition endpoint. Business gauges are refreshed on
// every scrape so the exporter never serves stale values.
func (m *Metrics) Handler() http.Handler {
	exposition := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RefreshBusiness(r.Context())
		exposition.ServeHTTP(w, r)
	})
}

// routePattern returns the chi route pattern for the request, falling back
// to the raw path for unmatched routes.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
