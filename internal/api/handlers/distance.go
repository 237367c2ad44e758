package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"cep-distance-service/internal/api/dto"
	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/services"
)

const maxBodyBytes = 1 << 16

type DistanceCalculator interface {
	Distance(ctx context.Context, req services.DistanceRequest) (services.DistanceResult, error)
}

type DistanceHandler struct {
	Calc DistanceCalculator
}

// Distance handles POST /gps/distance.
func (h *DistanceHandler) Distance(w http.ResponseWriter, r *http.Request) {
	var req dto.DistanceRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	res, err := h.Calc.Distance(r.Context(), services.DistanceRequest{
		Origin:      req.CEPOrigem,
		Destination: req.CEPDestino,
		VehicleType: req.VehicleType,
	})
	if err != nil {
		writeLookupError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.DistanceResponse{
		OriginCEP:        res.Origin,
		DestinationCEP:   res.Destination,
		VehicleType:      res.VehicleType,
		TomTomTravelMode: string(res.Mode),
		Distance:         res.Route.DistanceKm,
		DistanceUnit:     res.DistanceUnit,
		TravelTime:       res.Route.TimeMin,
		TimeUnit:         res.TimeUnit,
		Source:           string(res.Source),
	})
}

// writeLookupError maps pipeline error kinds to status codes. Anything
// unrecognised is logged and reported without internal detail.
func writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamFailure):
		status = http.StatusBadGateway
	default:
		slog.ErrorContext(r.Context(), "distance lookup failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	detail := err.Error()
	var le *domain.LookupError
	if errors.As(err, &le) {
		detail = le.Detail
	}
	writeError(w, r, status, detail)
}
