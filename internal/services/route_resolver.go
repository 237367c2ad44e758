package services

import (
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"

	"github.com/cespare/xxhash/v2"

	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/platform/memo"
	"cep-distance-service/internal/platform/metrics"
	"cep-distance-service/internal/ports"
)

// RouteKey identifies a cached route by the exact coordinates and mode.
type RouteKey struct {
	Origin      domain.Coordinates
	Destination domain.Coordinates
	Mode        domain.TravelMode
}

func hashRouteKey(k RouteKey) uint64 {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(k.Origin.Lat))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(k.Origin.Lon))
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(k.Destination.Lat))
	binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(k.Destination.Lon))

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(string(k.Mode))
	return d.Sum64()
}

// RouteResolver computes driving distance and time between two points,
// caching both routes and failures in-process.
type RouteResolver struct {
	provider ports.RouteProvider
	cache    *memo.Cache[RouteKey, domain.Resolution[domain.RouteResult]]
}

func NewRouteResolver(p ports.RouteProvider, policy CachePolicy) *RouteResolver {
	return &RouteResolver{
		provider: p,
		cache: memo.New(memo.Options[RouteKey, domain.Resolution[domain.RouteResult]]{
			Capacity: policy.Capacity,
			Hash:     hashRouteKey,
			TTL:      absentTTL[domain.RouteResult](policy.AbsentTTL),
			Now:      policy.Now,
		}),
	}
}

// Resolve never fails: transport errors, bad statuses and empty route lists
// all become an unresolved result.
func (r *RouteResolver) Resolve(
	ctx context.Context,
	origin, destination domain.Coordinates,
	mode domain.TravelMode,
) domain.Resolution[domain.RouteResult] {
	key := RouteKey{Origin: origin, Destination: destination, Mode: mode}

	if res, ok := r.cache.Get(key); ok {
		if res.OK() {
			metrics.IncCache(metrics.LayerRoutes, metrics.OutcomeHit)
		} else {
			metrics.IncCache(metrics.LayerRoutes, metrics.OutcomeAbsent)
		}
		slog.DebugContext(ctx, "route cache hit", "origin", origin, "destination", destination, "mode", mode, "resolved", res.OK())
		return res
	}
	metrics.IncCache(metrics.LayerRoutes, metrics.OutcomeMiss)
	slog.DebugContext(ctx, "route cache miss", "origin", origin, "destination", destination, "mode", mode)

	res := r.fetch(ctx, key)
	if !res.OK() && ctx.Err() != nil {
		slog.DebugContext(ctx, "route cache skip", "mode", mode, "err", ctx.Err())
		return res
	}
	r.cache.Add(key, res)
	slog.DebugContext(ctx, "route cache store", "origin", origin, "destination", destination, "mode", mode, "resolved", res.OK())
	return res
}

func (r *RouteResolver) fetch(ctx context.Context, key RouteKey) domain.Resolution[domain.RouteResult] {
	// Detached from the caller: only the provider's own timeout may end the call.
	s, err := r.provider.Route(context.WithoutCancel(ctx), key.Origin, key.Destination, key.Mode)
	if err != nil {
		if errors.Is(err, ports.ErrNoRoute) {
			slog.WarnContext(ctx, "no route found", "mode", key.Mode, "err", err)
		} else {
			slog.WarnContext(ctx, "route request failed", "mode", key.Mode, "err", err)
		}
		return domain.Unresolved[domain.RouteResult]()
	}

	if !validSummaryValue(s.LengthMeters) || !validSummaryValue(s.TravelTimeSeconds) {
		slog.WarnContext(ctx, "route summary rejected", "meters", s.LengthMeters, "seconds", s.TravelTimeSeconds)
		return domain.Unresolved[domain.RouteResult]()
	}

	return domain.Resolved(domain.RouteFromSummary(s.LengthMeters, s.TravelTimeSeconds))
}

func validSummaryValue(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Len reports the number of cached routes.
func (r *RouteResolver) Len() int { return r.cache.Len() }
