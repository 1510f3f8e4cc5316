package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/runwayready/runwayready/internal/airline"
	"github.com/runwayready/runwayready/internal/airport"
	"github.com/runwayready/runwayready/internal/api/models"
	"github.com/runwayready/runwayready/internal/api/response"
	"github.com/runwayready/runwayready/internal/risk"
	"github.com/runwayready/runwayready/internal/schedule"
)

// BusynessService supplies schedule-derived busyness for risk scoring.
type BusynessService interface {
	Busyness(ctx context.Context, iata string, dep time.Time, windowMin int) schedule.Busyness
}

// RiskHandler handles delay risk endpoints.
type RiskHandler struct {
	busyness BusynessService
	logger   zerolog.Logger
}

// NewRiskHandler creates a new RiskHandler. The busyness service is
// optional; without it the traffic factor is skipped.
func NewRiskHandler(busyness BusynessService, logger zerolog.Logger) *RiskHandler {
	return &RiskHandler{
		busyness: busyness,
		logger:   logger,
	}
}

var riskIATAPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Assess handles POST /v1/risk:assess.
func (h *RiskHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req models.RiskAssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "Invalid request body", nil)
		return
	}

	code := airport.Normalize(req.Airport)
	if code == "" {
		response.BadRequest(w, r, "Validation failed", []models.FieldError{
			{Field: "airport", Message: "is required", Code: "required"},
		})
		return
	}
	if !riskIATAPattern.MatchString(code) {
		response.BadRequest(w, r, "Validation failed", []models.FieldError{
			{Field: "airport", Message: "must be a three-letter IATA code", Code: "invalid"},
		})
		return
	}

	loc := airport.LocationFor(code)

	// A missing departure is allowed; the scorer reports an unknown tier.
	var dep time.Time
	if req.DepTimeLocalISO != "" {
		parsed, ok := parseLocalTime(req.DepTimeLocalISO, loc)
		if !ok {
			response.BadRequest(w, r, "Validation failed", []models.FieldError{
				{Field: "depTimeLocalISO", Message: "must be an ISO 8601 local timestamp", Code: "invalid"},
			})
			return
		}
		dep = parsed.In(loc)
	}

	var busyness *schedule.Busyness
	if req.IncludeBusyness && h.busyness != nil && !dep.IsZero() {
		b := h.busyness.Busyness(r.Context(), code, dep, schedule.DefaultWindowMin)
		busyness = &b
	}

	assessment := risk.Score(risk.Input{
		Airport:       code,
		AirlineCode:   req.AirlineCode,
		Departure:     dep,
		International: airline.FlightType(req.FlightType) == airline.FlightInternational,
		GroupSize:     req.GroupSize,
		Busyness:      busyness,
	})

	response.JSON(w, r, http.StatusOK, models.RiskAssessResponse{
		GeneratedAt: models.Timestamp(time.Now()),
		Assessment:  &assessment,
	})
}

func parseLocalTime(value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
