package ports

import (
	"context"

	"cep-distance-service/internal/domain"
)

// Port: durable cache of computed lookups keyed by origin, destination and mode.
type LookupCache interface {
	// Return the entry for key and record the hit, or ok=false on a miss.
	Get(ctx context.Context, key domain.LookupKey) (entry domain.CacheEntry, ok bool, err error)
	// Insert or overwrite the route for key, keeping created_at and hit_count.
	Upsert(ctx context.Context, key domain.LookupKey, route domain.RouteResult, distanceUnit, timeUnit string) error
}
