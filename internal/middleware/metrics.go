package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP surface.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "storefront"
	}

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
	}

	prometheus.MustRegister(m.requestsTotal, m.requestDuration, m.requestsInFlight)
	return m
}

// Middleware records request counts, durations and in-flight gauge.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()

		wrapped := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		path := normalizePath(r.URL.Path)
		m.requestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.requestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// normalizePath collapses dynamic ID segments so metric labels stay
// low-cardinality.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/api/") {
		return path
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")

	// /api/orders/{id} and /api/orders/{id}/checkout-session
	if len(segments) >= 3 && segments[1] == "orders" {
		out := "/api/orders/:id"
		if len(segments) == 4 {
			out += "/" + segments[3]
		}
		return out
	}
	// /api/cart/items/{productRef}, /api/wishlist/items/{productRef}
	if len(segments) == 4 && segments[2] == "items" {
		return "/api/" + segments[1] + "/items/:productRef"
	}
	return path
}
