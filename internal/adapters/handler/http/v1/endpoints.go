package v1

import (
	"net/http"
)

// SetToolRoutes sets up the tool dispatch surface and health routes.
func SetToolRoutes(router *http.ServeMux, toolHandler *ToolHandler, healthHandler *HealthHandler) {
	setAnalysisRoutes(toolHandler, router)
	setHealthRoutes(healthHandler, router)
}

// setAnalysisRoutes wires the five tool operations. Parameters travel in an
// optional JSON body; an empty body selects the documented defaults.
func setAnalysisRoutes(handler *ToolHandler, router *http.ServeMux) {
	router.HandleFunc("POST /v1/tools/bottlenecks", handler.AnalyzeBottlenecks)
	router.HandleFunc("POST /v1/tools/power", handler.AnalyzePower)
	router.HandleFunc("POST /v1/tools/logistics", handler.AnalyzeLogistics)
	router.HandleFunc("POST /v1/tools/snapshot", handler.GetFactorySnapshot)

	// Forces the save archive path regardless of live feed availability.
	router.HandleFunc("POST /v1/tools/save-analysis", handler.LoadSaveAnalysis)
}

// setHealthRoutes sets up system health endpoints
func setHealthRoutes(handler *HealthHandler, router *http.ServeMux) {
	router.HandleFunc("GET /health", handler.GetSystemHealth)
	router.HandleFunc("GET /health/detailed", handler.GetDetailedHealth)
}
