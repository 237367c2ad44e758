package ports

import (
	"context"
	"errors"

	"cep-distance-service/internal/domain"
)

// ErrNoRoute reports that the provider answered but returned no route.
var ErrNoRoute = errors.New("no route returned")

// Length and travel time of the primary route, as reported by the provider.
type RouteSummary struct {
	LengthMeters      float64
	TravelTimeSeconds float64
}

// Contract for retrieving the driving route between two coordinates.
type RouteProvider interface {
	// Return the primary route summary for the given travel mode.
	Route(ctx context.Context, origin, destination domain.Coordinates, mode domain.TravelMode) (RouteSummary, error)
}
