package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"dysonfactory/internal/core/domain"
	"dysonfactory/internal/core/port"
	"dysonfactory/internal/core/service/analysis"
)

// ToolHandler exposes the analyzers as tool operations for the dispatch
// layer. Every operation returns a report or a structured error; nothing
// escapes the handler as a panic or unhandled error.
type ToolHandler struct {
	source      port.StateSource
	archive     port.ArchiveReader
	bottlenecks *analysis.BottleneckAnalyzer
	power       *analysis.PowerAnalyzer
	logistics   *analysis.LogisticsAnalyzer
	snapshots   *analysis.SnapshotService
}

func NewToolHandler(
	source port.StateSource,
	archive port.ArchiveReader,
	bottlenecks *analysis.BottleneckAnalyzer,
	power *analysis.PowerAnalyzer,
	logistics *analysis.LogisticsAnalyzer,
	snapshots *analysis.SnapshotService,
) *ToolHandler {
	return &ToolHandler{
		source:      source,
		archive:     archive,
		bottlenecks: bottlenecks,
		power:       power,
		logistics:   logistics,
		snapshots:   snapshots,
	}
}

// Request structures. Pointer fields distinguish "absent" from zero so the
// documented defaults apply.
type bottleneckRequest struct {
	PlanetID          *int   `json:"planet_id"`
	TargetItem        string `json:"target_item"`
	TimeWindow        *int   `json:"time_window"`
	IncludeDownstream *bool  `json:"include_downstream"`
}

type powerRequest struct {
	PlanetID                 *int  `json:"planet_id"`
	IncludeAccumulatorCycles *bool `json:"include_accumulator_cycles"`
}

type logisticsRequest struct {
	PlanetID            *int     `json:"planet_id"`
	ItemFilter          []string `json:"item_filter"`
	SaturationThreshold *float64 `json:"saturation_threshold"`
}

type snapshotRequest struct {
	PlanetID   *int     `json:"planet_id"`
	ItemFilter []string `json:"item_filter"`
}

type saveAnalysisRequest struct {
	SaveFilePath string `json:"save_file_path"`
	AnalysisType string `json:"analysis_type"`
}

// AnalyzeBottlenecks handles POST /v1/tools/bottlenecks
func (h *ToolHandler) AnalyzeBottlenecks(w http.ResponseWriter, r *http.Request) {
	var req bottleneckRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	opts := analysis.DefaultBottleneckOptions()
	opts.PlanetID = req.PlanetID
	opts.TargetItem = req.TargetItem
	if req.TimeWindow != nil {
		opts.TimeWindowSec = *req.TimeWindow
	}
	if req.IncludeDownstream != nil {
		opts.IncludeDownstream = *req.IncludeDownstream
	}

	state, err := h.source.CurrentState(r.Context())
	if err != nil {
		writePipelineError(w, err)
		return
	}

	report, err := h.runBottleneck(r.Context(), state, opts)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, report)
}

// AnalyzePower handles POST /v1/tools/power
func (h *ToolHandler) AnalyzePower(w http.ResponseWriter, r *http.Request) {
	var req powerRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	opts := analysis.DefaultPowerOptions()
	opts.PlanetID = req.PlanetID
	if req.IncludeAccumulatorCycles != nil {
		opts.IncludeAccumulatorCycles = *req.IncludeAccumulatorCycles
	}

	state, err := h.source.CurrentState(r.Context())
	if err != nil {
		writePipelineError(w, err)
		return
	}

	report, err := h.runPower(r.Context(), state, opts)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, report)
}

// AnalyzeLogistics handles POST /v1/tools/logistics
func (h *ToolHandler) AnalyzeLogistics(w http.ResponseWriter, r *http.Request) {
	var req logisticsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	opts := analysis.DefaultLogisticsOptions()
	opts.PlanetID = req.PlanetID
	opts.ItemFilter = req.ItemFilter
	if req.SaturationThreshold != nil {
		opts.SaturationThreshold = *req.SaturationThreshold
	}

	state, err := h.source.CurrentState(r.Context())
	if err != nil {
		writePipelineError(w, err)
		return
	}

	report, err := h.runLogistics(r.Context(), state, opts)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, report)
}

// GetFactorySnapshot handles POST /v1/tools/snapshot
func (h *ToolHandler) GetFactorySnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	state, err := h.source.CurrentState(r.Context())
	if err != nil {
		writePipelineError(w, err)
		return
	}

	report, err := h.snapshots.Build(r.Context(), state, analysis.SnapshotOptions{
		PlanetID:   req.PlanetID,
		ItemFilter: req.ItemFilter,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, report)
}

// LoadSaveAnalysis handles POST /v1/tools/save-analysis. It always reads
// from the save archive, regardless of live feed availability.
func (h *ToolHandler) LoadSaveAnalysis(w http.ResponseWriter, r *http.Request) {
	var req saveAnalysisRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.SaveFilePath == "" {
		writeErrorResponse(w, "invalid_request", "save_file_path is required")
		return
	}
	if req.AnalysisType == "" {
		req.AnalysisType = "full"
	}

	state, err := h.archive.ParseFile(r.Context(), req.SaveFilePath)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	switch req.AnalysisType {
	case "production":
		report, err := h.runBottleneck(r.Context(), state, analysis.DefaultBottleneckOptions())
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSONResponse(w, http.StatusOK, report)
	case "power":
		report, err := h.runPower(r.Context(), state, analysis.DefaultPowerOptions())
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSONResponse(w, http.StatusOK, report)
	case "logistics":
		report, err := h.runLogistics(r.Context(), state, analysis.DefaultLogisticsOptions())
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSONResponse(w, http.StatusOK, report)
	case "full":
		writeJSONResponse(w, http.StatusOK, h.runFullAnalysis(r.Context(), state))
	default:
		writeErrorResponse(w, "invalid_request",
			fmt.Sprintf("unknown analysis_type %q (expected production|power|logistics|full)", req.AnalysisType))
	}
}

// runFullAnalysis runs all three analyzers with independent error
// containment: a failed section is reported alongside the sections that
// succeeded.
func (h *ToolHandler) runFullAnalysis(ctx context.Context, state *domain.FactoryState) *domain.SaveAnalysis {
	result := &domain.SaveAnalysis{Errors: map[string]domain.ToolError{}}

	if report, err := h.runBottleneck(ctx, state, analysis.DefaultBottleneckOptions()); err != nil {
		result.Errors["production"] = domain.ToolError{Error: domain.ErrorKind(err), Message: err.Error()}
	} else {
		result.Production = report
	}

	if report, err := h.runPower(ctx, state, analysis.DefaultPowerOptions()); err != nil {
		result.Errors["power"] = domain.ToolError{Error: domain.ErrorKind(err), Message: err.Error()}
	} else {
		result.Power = report
	}

	if report, err := h.runLogistics(ctx, state, analysis.DefaultLogisticsOptions()); err != nil {
		result.Errors["logistics"] = domain.ToolError{Error: domain.ErrorKind(err), Message: err.Error()}
	} else {
		result.Logistics = report
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result
}

// The run helpers convert analyzer panics into AnalysisFailed errors so an
// internal fault never crosses the tool boundary.

func (h *ToolHandler) runBottleneck(ctx context.Context, state *domain.FactoryState, opts analysis.BottleneckOptions) (report *domain.BottleneckReport, err error) {
	defer recoverAnalysis("bottleneck", &err)
	return h.bottlenecks.Analyze(ctx, state, opts)
}

func (h *ToolHandler) runPower(ctx context.Context, state *domain.FactoryState, opts analysis.PowerOptions) (report *domain.PowerReport, err error) {
	defer recoverAnalysis("power", &err)
	return h.power.Analyze(ctx, state, opts)
}

func (h *ToolHandler) runLogistics(ctx context.Context, state *domain.FactoryState, opts analysis.LogisticsOptions) (report *domain.LogisticsReport, err error) {
	defer recoverAnalysis("logistics", &err)
	return h.logistics.Analyze(ctx, state, opts)
}

func recoverAnalysis(name string, err *error) {
	if r := recover(); r != nil {
		slog.Error("Analyzer panic", "analyzer", name, "panic", r)
		*err = fmt.Errorf("%w: %s analyzer: %v", domain.ErrAnalysisFailed, name, r)
	}
}

// decodeRequest decodes an optional JSON body. An empty body yields the
// zero request so all defaults apply.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, "invalid_request", "malformed request body: "+err.Error())
		return false
	}
	return true
}
