package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cep-distance-service/internal/api/handlers"
	"cep-distance-service/internal/platform/metrics"
)

type RouterOptions struct {
	Metrics bool
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(calc handlers.DistanceCalculator, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(recoverMiddleware)

	distance := &handlers.DistanceHandler{Calc: calc}

	r.Get("/ping", handlers.Ping)
	r.Post("/gps/distance", distance.Distance)
	if opts.Metrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	return r
}
