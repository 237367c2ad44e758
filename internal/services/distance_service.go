package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/platform/metrics"
	"cep-distance-service/internal/ports"
)

// DistanceRequest holds the raw, unvalidated input of one lookup.
type DistanceRequest struct {
	Origin      string
	Destination string
	VehicleType string
}

// DistanceResult is a successful lookup. Origin and Destination are the
// normalized postal codes; VehicleType echoes the raw token.
type DistanceResult struct {
	Origin       string
	Destination  string
	VehicleType  string
	Mode         domain.TravelMode
	Route        domain.RouteResult
	DistanceUnit string
	TimeUnit     string
	Source       domain.Source
}

// DistanceService runs the lookup pipeline: validate, short-circuit equal
// codes, consult the persistent cache, then resolve coordinates and route and
// write the result back.
type DistanceService struct {
	coords  *CoordinateResolver
	routes  *RouteResolver
	lookups ports.LookupCache
}

// NewDistanceService wires the pipeline. lookups may be nil, which disables
// the persistent layer.
func NewDistanceService(coords *CoordinateResolver, routes *RouteResolver, lookups ports.LookupCache) *DistanceService {
	return &DistanceService{coords: coords, routes: routes, lookups: lookups}
}

// Distance returns a result or a *domain.LookupError of kind InvalidInput,
// NotFound or UpstreamFailure.
func (s *DistanceService) Distance(ctx context.Context, req DistanceRequest) (DistanceResult, error) {
	origin := domain.NormalizePostalCode(req.Origin)
	destination := domain.NormalizePostalCode(req.Destination)

	if !domain.ValidPostalCode(origin) || !domain.ValidPostalCode(destination) {
		return DistanceResult{}, domain.InvalidInput(fmt.Sprintf(
			"invalid postal codes: origin='%s', destination='%s'", req.Origin, req.Destination))
	}

	mode, err := domain.ParseVehicleType(req.VehicleType)
	if err != nil {
		return DistanceResult{}, err
	}

	out := DistanceResult{
		Origin:       origin,
		Destination:  destination,
		VehicleType:  req.VehicleType,
		Mode:         mode,
		DistanceUnit: domain.DistanceUnit,
		TimeUnit:     domain.TimeUnit,
	}

	if origin == destination {
		out.Source = domain.SourceTrivial
		metrics.IncSource(string(out.Source))
		return out, nil
	}

	key := domain.LookupKey{Origin: origin, Destination: destination, Mode: mode}
	if e, ok := s.cached(ctx, key); ok {
		out.Route = e.Route
		out.DistanceUnit = e.DistanceUnit
		out.TimeUnit = e.TimeUnit
		out.Source = domain.SourceDBCache
		metrics.IncSource(string(out.Source))
		return out, nil
	}

	from, to := s.resolvePair(ctx, origin, destination)
	fromC, okFrom := from.Get()
	toC, okTo := to.Get()
	if !okFrom || !okTo {
		return DistanceResult{}, domain.NotFound(fmt.Sprintf(
			"could not resolve coordinates for origin='%s', destination='%s'", origin, destination))
	}

	route, ok := s.routes.Resolve(ctx, fromC, toC, mode).Get()
	if !ok {
		return DistanceResult{}, domain.UpstreamFailure(fmt.Sprintf(
			"route calculation failed for origin='%s', destination='%s', mode='%s'", origin, destination, mode))
	}

	s.store(ctx, key, route)

	out.Route = route
	out.Source = domain.SourceLive
	metrics.IncSource(string(out.Source))
	return out, nil
}

// cached reads the persistent layer. Storage errors count as a miss.
func (s *DistanceService) cached(ctx context.Context, key domain.LookupKey) (domain.CacheEntry, bool) {
	if s.lookups == nil {
		return domain.CacheEntry{}, false
	}

	e, ok, err := s.lookups.Get(ctx, key)
	switch {
	case err != nil:
		metrics.IncCache(metrics.LayerLookup, metrics.OutcomeError)
		slog.WarnContext(ctx, "lookup cache read failed", "origin", key.Origin, "destination", key.Destination, "mode", key.Mode, "err", err)
		return domain.CacheEntry{}, false
	case !ok:
		metrics.IncCache(metrics.LayerLookup, metrics.OutcomeMiss)
		slog.DebugContext(ctx, "lookup cache miss", "origin", key.Origin, "destination", key.Destination, "mode", key.Mode)
		return domain.CacheEntry{}, false
	default:
		metrics.IncCache(metrics.LayerLookup, metrics.OutcomeHit)
		slog.DebugContext(ctx, "lookup cache hit", "origin", key.Origin, "destination", key.Destination, "mode", key.Mode, "hits", e.HitCount)
		return e, true
	}
}

// store writes a live result back. A failed write is logged; the caller
// still gets the computed route.
func (s *DistanceService) store(ctx context.Context, key domain.LookupKey, route domain.RouteResult) {
	if s.lookups == nil {
		return
	}
	if err := s.lookups.Upsert(ctx, key, route, domain.DistanceUnit, domain.TimeUnit); err != nil {
		slog.WarnContext(ctx, "lookup cache write failed", "origin", key.Origin, "destination", key.Destination, "mode", key.Mode, "err", err)
	}
}

// resolvePair geocodes both ends concurrently.
func (s *DistanceService) resolvePair(
	ctx context.Context,
	origin, destination string,
) (from, to domain.Resolution[domain.Coordinates]) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		from = s.coords.Resolve(ctx, origin)
	}()
	go func() {
		defer wg.Done()
		to = s.coords.Resolve(ctx, destination)
	}()
	wg.Wait()
	return from, to
}
