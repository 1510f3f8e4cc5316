package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runwayready/runwayready/internal/api"
	"github.com/runwayready/runwayready/internal/api/models"
	"github.com/runwayready/runwayready/internal/recommend"
	"github.com/runwayready/runwayready/internal/security"
)

func newTestRouter() http.Handler {
	logger := zerolog.New(io.Discard)

	// No live sources and no schedule provider: the engine falls back to
	// its deterministic hour-of-day tables.
	securityService := security.NewService(security.ServiceConfig{Logger: logger})
	engine := recommend.NewEngine(recommend.EngineConfig{
		Security: securityService,
		Logger:   logger,
	})

	return api.NewRouter(api.RouterConfig{
		Version:   "test",
		BuildTime: "2026-01-01T00:00:00Z",
		Logger:    logger,
		Engine:    engine,
		ProviderStatus: func() []models.ProviderStatus {
			return []models.ProviderStatus{
				{Provider: "catsa", Status: models.HealthStatusOK},
				{Provider: "aerodatabox", Status: models.HealthStatusOK},
			}
		},
	})
}

// departureIn formats a local departure timestamp the given duration out.
func departureIn(d time.Duration) string {
	return time.Now().Add(d).Format("2006-01-02T15:04")
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.NotEmpty(t, status.Subsystems)
	require.Len(t, status.Providers, 2)
	assert.Equal(t, "catsa", status.Providers[0].Provider)
}

func TestRouter_ComputeRecommendation(t *testing.T) {
	router := newTestRouter()

	input := models.RecommendComputeRequest{
		Airport:         "YYZ",
		Airline:         "Air Canada",
		FlightType:      "domestic",
		DepTimeLocalISO: departureIn(24 * time.Hour),
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "private, max-age=60", w.Header().Get("Cache-Control"))

	var resp models.RecommendComputeResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	require.NotNil(t, resp.Recommendation)
	assert.False(t, resp.Recommendation.ArriveAirport.IsZero())
	assert.GreaterOrEqual(t, resp.Recommendation.Meta.LeadMinutes.ChosenMin, 75)
	assert.NotEmpty(t, resp.Recommendation.Warnings)
}

func TestRouter_ComputeRecommendation_ValidationError(t *testing.T) {
	router := newTestRouter()

	// Missing airport
	input := models.RecommendComputeRequest{
		DepTimeLocalISO: departureIn(24 * time.Hour),
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "airport", problem.Errors[0].Field)
}

func TestRouter_ComputeRecommendation_MalformedBody(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations:compute", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_AssessRisk(t *testing.T) {
	router := newTestRouter()

	input := models.RiskAssessRequest{
		Airport:         "LGA",
		AirlineCode:     "NK",
		DepTimeLocalISO: "2026-01-12T07:30",
		GroupSize:       4,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/risk:assess", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.RiskAssessResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	require.NotNil(t, resp.Assessment)
	assert.NotEmpty(t, resp.Assessment.Factors)
	assert.NotEmpty(t, resp.Assessment.Recommendations)
	assert.Greater(t, resp.Assessment.RiskScore, 0)
}

func TestRouter_AssessRisk_InvalidAirport(t *testing.T) {
	router := newTestRouter()

	input := models.RiskAssessRequest{
		Airport:         "LaGuardia",
		DepTimeLocalISO: "2026-01-12T07:30",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/risk:assess", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "airport", problem.Errors[0].Field)
}

func TestRouter_ListAirlines(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/metadata/airlines", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var list models.AirlineList
	err := json.Unmarshal(w.Body.Bytes(), &list)
	require.NoError(t, err)

	require.NotEmpty(t, list.Items)
	names := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		names = append(names, item.Airline)
		assert.Greater(t, item.GateCloseInternationalMin, item.GateCloseDomesticMin)
	}
	assert.Contains(t, names, "Air Canada")
}

func TestRouter_ListAirports(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/metadata/airports", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var list models.AirportList
	err := json.Unmarshal(w.Body.Bytes(), &list)
	require.NoError(t, err)

	require.NotEmpty(t, list.Items)
	var yyz *models.Airport
	for i := range list.Items {
		if list.Items[i].IATA == "YYZ" {
			yyz = &list.Items[i]
		}
	}
	require.NotNil(t, yyz)
	assert.Equal(t, "CYYZ", yyz.ICAO)
	assert.Equal(t, "mega", yyz.CapacityTier)
	assert.Equal(t, 450, yyz.Saturation)
	assert.Equal(t, "America/Toronto", yyz.TimeZone)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
