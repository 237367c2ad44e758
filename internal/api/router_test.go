package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cep-distance-service/internal/adapters/routing"
	"cep-distance-service/internal/api/dto"
	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/services"
)

type fakeCalc struct {
	res services.DistanceResult
	err error
	got services.DistanceRequest
}

func (f *fakeCalc) Distance(ctx context.Context, req services.DistanceRequest) (services.DistanceResult, error) {
	f.got = req
	if f.err != nil {
		return services.DistanceResult{}, f.err
	}
	return f.res, nil
}

type panicCalc struct{}

func (panicCalc) Distance(context.Context, services.DistanceRequest) (services.DistanceResult, error) {
	panic("boom")
}

type noGeocoder struct{}

func (noGeocoder) Geocode(context.Context, string) ([]domain.Coordinates, error) { return nil, nil }

func postDistance(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/gps/distance", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e.Detail
}

func TestPing(t *testing.T) {
	h := NewRouter(&fakeCalc{}, RouterOptions{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Fatalf("body=%s", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := NewRouter(&fakeCalc{}, RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc123" {
		t.Fatalf("X-Request-ID=%q", got)
	}
}

func TestDistance_Success(t *testing.T) {
	calc := &fakeCalc{res: services.DistanceResult{
		Origin:       "1000-001",
		Destination:  "4000-001",
		VehicleType:  "Ligeiro",
		Mode:         domain.ModeCar,
		Route:        domain.RouteResult{DistanceKm: 313.25, TimeMin: 180.5},
		DistanceUnit: "km",
		TimeUnit:     "min",
		Source:       domain.SourceLive,
	}}
	h := NewRouter(calc, RouterOptions{})

	rec := postDistance(t, h, `{"cep_origem":"1000001","cep_destino":"4000-001","vehicle_type":"Ligeiro"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	if calc.got.Origin != "1000001" || calc.got.Destination != "4000-001" || calc.got.VehicleType != "Ligeiro" {
		t.Fatalf("request passed raw values incorrectly: %+v", calc.got)
	}

	var resp dto.DistanceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := dto.DistanceResponse{
		OriginCEP:        "1000-001",
		DestinationCEP:   "4000-001",
		VehicleType:      "Ligeiro",
		TomTomTravelMode: "car",
		Distance:         313.25,
		DistanceUnit:     "km",
		TravelTime:       180.5,
		TimeUnit:         "min",
		Source:           "live",
	}
	if resp != want {
		t.Fatalf("resp=%+v want %+v", resp, want)
	}
}

func TestDistance_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"invalid input", domain.InvalidInput("bad codes"), http.StatusBadRequest, "bad codes"},
		{"not found", domain.NotFound("no coords"), http.StatusNotFound, "no coords"},
		{"upstream", domain.UpstreamFailure("no route"), http.StatusBadGateway, "no route"},
		{"unexpected", errors.New("db exploded at 0xdeadbeef"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(&fakeCalc{err: tt.err}, RouterOptions{})
			rec := postDistance(t, h, `{"cep_origem":"1000-001","cep_destino":"4000-001","vehicle_type":"car"}`)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status=%d want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeDetail(t, rec); got != tt.wantDetail {
				t.Fatalf("detail=%q want %q", got, tt.wantDetail)
			}
		})
	}
}

func TestDistance_BadBodies(t *testing.T) {
	h := NewRouter(&fakeCalc{}, RouterOptions{})

	for _, body := range []string{`not json`, `{"cep_origem":"1"}{"x":1}`} {
		rec := postDistance(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status=%d want 400", body, rec.Code)
		}
	}
}

func TestDistance_MethodNotAllowed(t *testing.T) {
	h := NewRouter(&fakeCalc{}, RouterOptions{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gps/distance", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d want 405", rec.Code)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	h := NewRouter(panicCalc{}, RouterOptions{})

	rec := postDistance(t, h, `{"cep_origem":"1000-001","cep_destino":"4000-001","vehicle_type":"car"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", rec.Code)
	}
	if got := decodeDetail(t, rec); got != "internal server error" {
		t.Fatalf("detail=%q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	off := NewRouter(&fakeCalc{}, RouterOptions{})
	rec := httptest.NewRecorder()
	off.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("metrics disabled: status=%d want 404", rec.Code)
	}

	on := NewRouter(&fakeCalc{}, RouterOptions{Metrics: true})
	on.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	rec = httptest.NewRecorder()
	on.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics enabled: status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("exposition missing http_requests_total")
	}
}

func newEndToEndRouter() http.Handler {
	svc := services.NewDistanceService(
		services.NewCoordinateResolver(noGeocoder{}, nil, services.CachePolicy{}),
		services.NewRouteResolver(routing.NewMockRouteProvider(nil), services.CachePolicy{}),
		nil,
	)
	return NewRouter(svc, RouterOptions{})
}

func TestEndToEnd_Trivial(t *testing.T) {
	rec := postDistance(t, newEndToEndRouter(), `{"cep_origem":"1000-001","cep_destino":"1000-001","vehicle_type":"ligeiro"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	var resp dto.DistanceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Distance != 0 || resp.TravelTime != 0 || resp.Source != "trivial" || resp.TomTomTravelMode != "car" {
		t.Fatalf("resp=%+v", resp)
	}
}

func TestEndToEnd_InvalidInputs(t *testing.T) {
	h := newEndToEndRouter()

	rec := postDistance(t, h, `{"cep_origem":"invalid","cep_destino":"1000-001","vehicle_type":"car"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rec.Code)
	}
	if d := decodeDetail(t, rec); !strings.Contains(d, "invalid") || !strings.Contains(d, "1000-001") {
		t.Fatalf("detail=%q", d)
	}

	rec = postDistance(t, h, `{"cep_origem":"1000-001","cep_destino":"4000-001","vehicle_type":"invalid"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rec.Code)
	}
	if d := decodeDetail(t, rec); !strings.Contains(d, "'invalid'") {
		t.Fatalf("detail=%q", d)
	}
}

func TestEndToEnd_NoCoordinates(t *testing.T) {
	rec := postDistance(t, newEndToEndRouter(), `{"cep_origem":"1000-001","cep_destino":"4000-001","vehicle_type":"van"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", rec.Code)
	}
}
