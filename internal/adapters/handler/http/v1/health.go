package v1

import (
	"net/http"

	"dysonfactory/internal/core/port"
)

type HealthHandler struct {
	healthService port.HealthService
}

func NewHealthHandler(
	healthService port.HealthService,
) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Timestamp  int64             `json:"timestamp"`
	Message    string            `json:"message,omitempty"`
}

// GetSystemHealth handles GET /health
func (h *HealthHandler) GetSystemHealth(w http.ResponseWriter, r *http.Request) {
	if h.healthService == nil {
		writeErrorResponse(w, "internal_error", "health service not available")
		return
	}

	healthStatus, err := h.healthService.GetSystemHealth(r.Context())
	if err != nil {
		writeErrorResponse(w, "internal_error", "failed to get system health: "+err.Error())
		return
	}

	statusCode := http.StatusOK
	if healthStatus.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, HealthResponse{
		Status:     healthStatus.Status,
		Components: healthStatus.Components,
		Timestamp:  healthStatus.Timestamp,
		Message:    healthStatus.Message,
	})
}

// GetDetailedHealth handles GET /health/detailed
func (h *HealthHandler) GetDetailedHealth(w http.ResponseWriter, r *http.Request) {
	if h.healthService == nil {
		writeErrorResponse(w, "internal_error", "health service not available")
		return
	}

	healthStatus, err := h.healthService.GetDetailedHealth(r.Context())
	if err != nil {
		writeErrorResponse(w, "internal_error", "failed to get detailed health: "+err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, HealthResponse{
		Status:     healthStatus.Status,
		Components: healthStatus.Components,
		Timestamp:  healthStatus.Timestamp,
		Message:    healthStatus.Message,
	})
}
