package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"dysonfactory/internal/core/domain"
)

// ErrorResponse is the structured error object every tool operation returns
// on failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, kind, message string) {
	writeJSONResponse(w, statusForKind(kind), ErrorResponse{
		Error:   kind,
		Message: message,
	})
}

// writePipelineError maps a pipeline error to its structured kind.
func writePipelineError(w http.ResponseWriter, err error) {
	writeErrorResponse(w, domain.ErrorKind(err), err.Error())
}

func statusForKind(kind string) int {
	switch kind {
	case "invalid_request", "invalid_format":
		return http.StatusBadRequest
	case "file_not_found", "directory_not_found", "no_snapshots_found":
		return http.StatusNotFound
	case "connection_unavailable", "timeout":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
