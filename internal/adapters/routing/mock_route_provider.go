package routing

import (
	"context"
	"fmt"
	"sync/atomic"

	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/ports"
)

type MockRoute struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
}

// MockRouteProvider answers from a fixed table of coordinate pairs and
// counts calls. Unknown pairs fail with ports.ErrNoRoute.
type MockRouteProvider struct {
	m     map[[2]domain.Coordinates]ports.RouteSummary
	calls atomic.Int64
}

func NewMockRouteProvider(routes []MockRoute) *MockRouteProvider {
	m := make(map[[2]domain.Coordinates]ports.RouteSummary, len(routes))
	for _, r := range routes {
		m[[2]domain.Coordinates{r.From, r.To}] = ports.RouteSummary{LengthMeters: r.Meters, TravelTimeSeconds: r.Seconds}
	}
	return &MockRouteProvider{m: m}
}

func (p *MockRouteProvider) Route(
	ctx context.Context,
	origin, destination domain.Coordinates,
	mode domain.TravelMode,
) (ports.RouteSummary, error) {
	p.calls.Add(1)

	r, ok := p.m[[2]domain.Coordinates{origin, destination}]
	if !ok {
		return ports.RouteSummary{}, fmt.Errorf("missing pair %v -> %v (%s): %w", origin, destination, mode, ports.ErrNoRoute)
	}
	return r, nil
}

func (p *MockRouteProvider) Calls() int64 { return p.calls.Load() }
