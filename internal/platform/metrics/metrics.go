// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache layers and outcomes used as label values.
const (
	LayerCoordinates = "coordinates"
	LayerSharedCoord = "coordinates_shared"
	LayerRoutes      = "routes"
	LayerLookup      = "lookup"

	OutcomeHit    = "hit"
	OutcomeMiss   = "miss"
	OutcomeAbsent = "absent"
	OutcomeError  = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream and storage operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"op", "outcome"},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Cache lookups by layer and outcome.",
		},
		[]string{"layer", "outcome"},
	)

	lookupSources = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distance_results_total",
			Help: "Successful distance lookups by source.",
		},
		[]string{"source"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveOperation(op string, err error, durationSeconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = OutcomeError
	}
	upstreamLatencySeconds.WithLabelValues(op, outcome).Observe(durationSeconds)
}

func IncCache(layer, outcome string) {
	cacheResults.WithLabelValues(layer, outcome).Inc()
}

func IncSource(source string) {
	lookupSources.WithLabelValues(source).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
