package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/platform/httpclient"
)

func (t *TomTom) newRequest(
	ctx context.Context,
	origin, destination domain.Coordinates,
	mode domain.TravelMode,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint(origin, destination, mode), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req once. Transport errors are stripped of the request URL,
// which carries the api key.
func (t *TomTom) do(req *http.Request) (*http.Response, error) {
	resp, err := httpclient.Do(t.session, req)
	if err == nil {
		return resp, nil
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return nil, fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return nil, err
}
