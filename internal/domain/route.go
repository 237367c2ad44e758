package domain

import (
	"math"
	"time"
)

const (
	DistanceUnit = "km"
	TimeUnit     = "min"
)

// Source tags which layer produced a route result.
type Source string

const (
	SourceTrivial Source = "trivial"
	SourceDBCache Source = "db_cache"
	SourceLive    Source = "live"
)

// Driving distance (km) and travel time (min), both rounded to 2 decimals.
type RouteResult struct {
	DistanceKm float64
	TimeMin    float64
}

// RouteFromSummary converts a provider summary in meters and seconds.
func RouteFromSummary(lengthMeters, travelTimeSeconds float64) RouteResult {
	return RouteResult{
		DistanceKm: round2(lengthMeters / 1000),
		TimeMin:    round2(travelTimeSeconds / 60),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LookupKey identifies one persisted lookup. Mode is always the canonical
// travel mode, never the raw vehicle token.
type LookupKey struct {
	Origin      string
	Destination string
	Mode        TravelMode
}

// CacheEntry is one row of the persistent lookup cache.
type CacheEntry struct {
	Key          LookupKey
	Route        RouteResult
	DistanceUnit string
	TimeUnit     string
	CreatedAt    time.Time
	LastUsedAt   time.Time
	HitCount     int64
}
