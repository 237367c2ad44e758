package ports

import (
	"context"

	"cep-distance-service/internal/domain"
)

// Contract for turning a normalized postal code into candidate points.
type Geocoder interface {
	// Return every coordinate pair listed for the postal code (possibly none).
	Geocode(ctx context.Context, postalCode string) ([]domain.Coordinates, error)
}

// Port: an optional shared store of resolved coordinates, keyed by
// normalized postal code. Absent coordinates are never stored here.
type CoordinateStore interface {
	GetCoordinates(ctx context.Context, postalCode string) (domain.Coordinates, bool, error)
	PutCoordinates(ctx context.Context, postalCode string, c domain.Coordinates) error
}
