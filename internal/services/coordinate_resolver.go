package services

import (
	"context"
	"log/slog"

	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/platform/memo"
	"cep-distance-service/internal/platform/metrics"
	"cep-distance-service/internal/ports"
)

// CoordinateResolver maps a normalized postal code to one representative
// point. Lookups go through the in-process cache, then the optional shared
// store, then the geocoder. Unresolved outcomes are cached in-process only.
type CoordinateResolver struct {
	geocoder ports.Geocoder
	shared   ports.CoordinateStore
	cache    *memo.Cache[string, domain.Resolution[domain.Coordinates]]
}

// NewCoordinateResolver builds a resolver. shared may be nil.
func NewCoordinateResolver(g ports.Geocoder, shared ports.CoordinateStore, p CachePolicy) *CoordinateResolver {
	return &CoordinateResolver{
		geocoder: g,
		shared:   shared,
		cache: memo.New(memo.Options[string, domain.Resolution[domain.Coordinates]]{
			Capacity: p.Capacity,
			Hash:     memo.StringHash,
			TTL:      absentTTL[domain.Coordinates](p.AbsentTTL),
			Now:      p.Now,
		}),
	}
}

// Resolve never fails: upstream errors become an unresolved result.
// postalCode must already be normalized.
func (r *CoordinateResolver) Resolve(ctx context.Context, postalCode string) domain.Resolution[domain.Coordinates] {
	if res, ok := r.cache.Get(postalCode); ok {
		if res.OK() {
			metrics.IncCache(metrics.LayerCoordinates, metrics.OutcomeHit)
		} else {
			metrics.IncCache(metrics.LayerCoordinates, metrics.OutcomeAbsent)
		}
		slog.DebugContext(ctx, "coord cache hit", "cep", postalCode, "resolved", res.OK())
		return res
	}
	metrics.IncCache(metrics.LayerCoordinates, metrics.OutcomeMiss)
	slog.DebugContext(ctx, "coord cache miss", "cep", postalCode)

	if c, ok := r.fromShared(ctx, postalCode); ok {
		res := domain.Resolved(c)
		r.cache.Add(postalCode, res)
		return res
	}

	// The geocoder keeps its own timeout; a departing caller must not cut
	// the call short and leave an absent entry behind.
	points, err := r.geocoder.Geocode(context.WithoutCancel(ctx), postalCode)
	if err != nil {
		slog.WarnContext(ctx, "geocode failed", "cep", postalCode, "err", err)
		points = nil
	}

	res := domain.MeanCoordinates(points)
	if !res.OK() && ctx.Err() != nil {
		slog.DebugContext(ctx, "coord cache skip", "cep", postalCode, "err", ctx.Err())
		return res
	}
	r.cache.Add(postalCode, res)
	slog.DebugContext(ctx, "coord cache store", "cep", postalCode, "resolved", res.OK(), "points", len(points))

	if c, ok := res.Get(); ok && r.shared != nil {
		if err := r.shared.PutCoordinates(ctx, postalCode, c); err != nil {
			slog.WarnContext(ctx, "shared coord store write failed", "cep", postalCode, "err", err)
		}
	}

	return res
}

func (r *CoordinateResolver) fromShared(ctx context.Context, postalCode string) (domain.Coordinates, bool) {
	if r.shared == nil {
		return domain.Coordinates{}, false
	}

	c, ok, err := r.shared.GetCoordinates(ctx, postalCode)
	switch {
	case err != nil:
		metrics.IncCache(metrics.LayerSharedCoord, metrics.OutcomeError)
		slog.WarnContext(ctx, "shared coord store read failed", "cep", postalCode, "err", err)
		return domain.Coordinates{}, false
	case !ok:
		metrics.IncCache(metrics.LayerSharedCoord, metrics.OutcomeMiss)
		return domain.Coordinates{}, false
	default:
		metrics.IncCache(metrics.LayerSharedCoord, metrics.OutcomeHit)
		slog.DebugContext(ctx, "shared coord hit", "cep", postalCode)
		return c, true
	}
}

// Len reports the number of cached postal codes.
func (r *CoordinateResolver) Len() int { return r.cache.Len() }
