package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/platform/obs"
	"cep-distance-service/internal/ports"
)

const defaultBaseURL = "https://api.tomtom.com"

// TomTom implements ports.RouteProvider with the TomTom Routing API.
// A single attempt is made per call; the caller decides what a failure means.
type TomTom struct {
	session *http.Client
	apiKey  string
	baseURL string
	timeout time.Duration
}

func NewTomTom(session *http.Client, apiKey, baseURL string, timeout time.Duration) (*TomTom, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("tomtom api key is empty")
	}
	if session == nil {
		session = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &TomTom{
		session: session,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}, nil
}

type calculateRouteResponse struct {
	Routes []struct {
		Summary struct {
			LengthInMeters      float64 `json:"lengthInMeters"`
			TravelTimeInSeconds float64 `json:"travelTimeInSeconds"`
		} `json:"summary"`
	} `json:"routes"`
}

func (t *TomTom) Route(
	ctx context.Context,
	origin, destination domain.Coordinates,
	mode domain.TravelMode,
) (_ ports.RouteSummary, err error) {
	defer obs.Time(ctx, "tomtom.calculateRoute")(&err)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := t.newRequest(ctx, origin, destination, mode)
	if err != nil {
		return ports.RouteSummary{}, fmt.Errorf("tomtom route request: %w", err)
	}

	resp, err := t.do(req)
	if err != nil {
		return ports.RouteSummary{}, fmt.Errorf("tomtom route: %w", err)
	}
	defer resp.Body.Close()

	var decoded calculateRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteSummary{}, fmt.Errorf("decode tomtom response: %w", err)
	}

	if len(decoded.Routes) == 0 {
		return ports.RouteSummary{}, ports.ErrNoRoute
	}

	s := decoded.Routes[0].Summary
	return ports.RouteSummary{
		LengthMeters:      s.LengthInMeters,
		TravelTimeSeconds: s.TravelTimeInSeconds,
	}, nil
}

// routeLocations renders "lat,lon:lat,lon" as the path segment expects.
func routeLocations(origin, destination domain.Coordinates) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(origin.Lat) + "," + f(origin.Lon) + ":" + f(destination.Lat) + "," + f(destination.Lon)
}

func (t *TomTom) endpoint(origin, destination domain.Coordinates, mode domain.TravelMode) string {
	q := url.Values{}
	q.Set("key", t.apiKey)
	q.Set("travelMode", string(mode))

	return t.baseURL + "/routing/1/calculateRoute/" + routeLocations(origin, destination) + "/json?" + q.Encode()
}
