// Package metrics provides Prometheus instrumentation for the portfolio engine.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PositionsNormalized counts raw positions processed by the normalizer,
	// partitioned by outcome ("kept" or "dropped").
	PositionsNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradedash_positions_normalized_total",
		Help: "Raw positions processed by the normalizer",
	}, []string{"outcome"})

	// RankingComposeDuration tracks end-to-end leaderboard composition time.
	RankingComposeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tradedash_ranking_compose_seconds",
		Help:    "Leaderboard composition latency in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// RankingUsers is the size of the most recently composed leaderboard.
	RankingUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tradedash_ranking_users",
		Help: "Users in the most recently composed leaderboard",
	})

	// EnrichmentFailures counts per-user fetches that fell back to a default,
	// partitioned by what failed ("portfolio" or "balance").
	EnrichmentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradedash_ranking_enrichment_failures_total",
		Help: "Per-user ranking fetches that fell back to a default value",
	}, []string{"kind"})

	// AlertsRaised counts portfolio alerts by kind.
	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradedash_alerts_raised_total",
		Help: "Portfolio alerts raised",
	}, []string{"kind"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tradedash_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradedash_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradedash_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := routePattern(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern labels by chi route pattern so user ids don't explode cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack is required for websocket upgrades behind the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
