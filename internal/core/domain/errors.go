package domain

import "errors"

// Error taxonomy for the ingestion and analysis pipeline. Adapters wrap these
// sentinels with %w and the tool layer maps them to structured error kinds.
var (
	// ErrConnectionUnavailable means the live feed could not be reached.
	// Recoverable: the tool layer falls back to the save archive.
	ErrConnectionUnavailable = errors.New("cannot connect to factory feed")

	// ErrTimeout means no frame arrived within the wait budget.
	ErrTimeout = errors.New("no data received from factory feed")

	ErrDirectoryNotFound = errors.New("save directory not found")
	ErrNoSnapshotsFound  = errors.New("no save files found")
	ErrFileNotFound      = errors.New("save file not found")
	ErrInvalidFormat     = errors.New("invalid save file type")
	ErrDecodeFailed      = errors.New("save decode failed")

	// ErrAnalysisFailed marks an unexpected internal fault in an analyzer,
	// caught at the tool boundary.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// ErrorKind returns the structured error kind for a pipeline error, or
// "internal_error" for anything outside the taxonomy.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrConnectionUnavailable):
		return "connection_unavailable"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrDirectoryNotFound):
		return "directory_not_found"
	case errors.Is(err, ErrNoSnapshotsFound):
		return "no_snapshots_found"
	case errors.Is(err, ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrDecodeFailed):
		return "decode_failed"
	case errors.Is(err, ErrAnalysisFailed):
		return "analysis_failed"
	default:
		return "internal_error"
	}
}
