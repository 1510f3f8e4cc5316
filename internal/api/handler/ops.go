// Package handler provides HTTP handlers for the RunwayReady API.
package handler

import (
	"net/http"
	"time"

	"github.com/runwayready/runwayready/internal/api/models"
	"github.com/runwayready/runwayready/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	providers func() []models.ProviderStatus
}

// NewOpsHandler creates a new OpsHandler. The providers func reports live
// upstream status for /v1/ops/status; nil means no providers are wired.
func NewOpsHandler(version, buildTime string, providers func() []models.ProviderStatus) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		providers: providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The engine
// runs entirely on in-process tables and degrades gracefully when upstream
// sources are down, so readiness tracks liveness.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	var providers []models.ProviderStatus
	if h.providers != nil {
		providers = h.providers()
	}

	overall := models.HealthStatusOK
	var degraded []string
	for _, p := range providers {
		if p.Status != models.HealthStatusOK {
			overall = models.HealthStatusDegraded
			degraded = append(degraded, p.Provider)
		}
	}

	status := models.SystemStatus{
		Status: overall,
		Time:   now,
		Subsystems: []models.SubsystemStatus{
			{Name: "recommendation-engine", Status: models.HealthStatusOK},
			{Name: "risk-scorer", Status: models.HealthStatusOK},
		},
		Providers:              providers,
		ActiveDegradationFlags: degraded,
	}
	response.JSON(w, r, http.StatusOK, status)
}
