package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
)

// PathHeader reports which branch produced a free-form analysis.
const PathHeader = "X-Analysis-Path"

// FreeformHandler serves the dual-path text analysis.
type FreeformHandler struct {
	service *core.AnalysisService
	logger  *zap.Logger
}

func NewFreeformHandler(service *core.AnalysisService, logger *zap.Logger) *FreeformHandler {
	return &FreeformHandler{
		service: service,
		logger:  logger.Named("freeform"),
	}
}

type freeformResponse struct {
	Analysis string `json:"analysis"`
}

// Analyze handles POST /analyze
func (h *FreeformHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req core.FreeformInput
	if !decode(w, r, h.logger, &req) {
		return
	}

	result, err := h.service.AnalyzeFreeform(r.Context(), r.Header.Get(UserIDHeader), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set(PathHeader, string(result.Path))
	writeJSON(w, http.StatusOK, freeformResponse{Analysis: result.Analysis})
}
