package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/runwayready/runwayready/internal/airline"
	"github.com/runwayready/runwayready/internal/api/models"
	"github.com/runwayready/runwayready/internal/api/response"
	"github.com/runwayready/runwayready/internal/recommend"
)

// RecommendHandler handles arrival recommendation endpoints.
type RecommendHandler struct {
	engine *recommend.Engine
	logger zerolog.Logger
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(engine *recommend.Engine, logger zerolog.Logger) *RecommendHandler {
	return &RecommendHandler{
		engine: engine,
		logger: logger,
	}
}

// Compute handles POST /v1/recommendations:compute.
func (h *RecommendHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "Invalid request body", nil)
		return
	}

	input := recommend.Input{
		Airport:        req.Airport,
		Airline:        req.Airline,
		FlightType:     airline.FlightType(req.FlightType),
		DepartureLocal: req.DepTimeLocalISO,
	}
	if req.Options != nil {
		input.Options = *req.Options
	}

	out, err := h.engine.Compute(r.Context(), input)
	if err != nil {
		h.writeComputeError(w, r, err)
		return
	}

	// Estimates lean on live waits with a short revalidation window.
	w.Header().Set("Cache-Control", "private, max-age=60")

	response.JSON(w, r, http.StatusOK, models.RecommendComputeResponse{
		GeneratedAt:    models.Timestamp(time.Now()),
		Recommendation: out,
	})
}

func (h *RecommendHandler) writeComputeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrMissingAirport):
		response.BadRequest(w, r, "Validation failed", []models.FieldError{
			{Field: "airport", Message: "is required", Code: "required"},
		})
	case errors.Is(err, recommend.ErrInvalidAirport):
		response.BadRequest(w, r, "Validation failed", []models.FieldError{
			{Field: "airport", Message: "must be a three-letter IATA code", Code: "invalid"},
		})
	case errors.Is(err, recommend.ErrInvalidDeparture):
		response.BadRequest(w, r, "Validation failed", []models.FieldError{
			{Field: "depTimeLocalISO", Message: "must be an ISO 8601 local timestamp", Code: "invalid"},
		})
	default:
		h.logger.Error().Err(err).Msg("recommendation compute failed")
		response.InternalError(w, r, "Failed to compute recommendation")
	}
}
