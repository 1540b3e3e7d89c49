package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
	"github.com/mikey/scam-guard/internal/heuristics"
)

// AnalyzeHandler serves the per-channel analysis endpoints.
type AnalyzeHandler struct {
	service *core.AnalysisService
	logger  *zap.Logger
}

func NewAnalyzeHandler(service *core.AnalysisService, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service: service,
		logger:  logger.Named("analyze"),
	}
}

// ImageRequest carries a base64 payload or data URL.
type ImageRequest struct {
	Image string `json:"image"`
}

// Email handles POST /api/analyze/email
func (h *AnalyzeHandler) Email(w http.ResponseWriter, r *http.Request) {
	var req core.EmailInput
	if !decode(w, r, h.logger, &req) {
		return
	}
	result, err := h.service.AnalyzeEmail(r.Context(), r.Header.Get(UserIDHeader), req)
	h.respond(w, result, err)
}

// Text handles POST /api/analyze/text
func (h *AnalyzeHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req core.TextInput
	if !decode(w, r, h.logger, &req) {
		return
	}
	result, err := h.service.AnalyzeText(r.Context(), r.Header.Get(UserIDHeader), req)
	h.respond(w, result, err)
}

// Call handles POST /api/analyze/call
func (h *AnalyzeHandler) Call(w http.ResponseWriter, r *http.Request) {
	var req core.CallInput
	if !decode(w, r, h.logger, &req) {
		return
	}
	result, err := h.service.AnalyzeCall(r.Context(), r.Header.Get(UserIDHeader), req)
	h.respond(w, result, err)
}

// Website handles POST /api/analyze/website
func (h *AnalyzeHandler) Website(w http.ResponseWriter, r *http.Request) {
	var req core.WebsiteInput
	if !decode(w, r, h.logger, &req) {
		return
	}
	result, err := h.service.AnalyzeWebsite(r.Context(), r.Header.Get(UserIDHeader), req)
	h.respond(w, result, err)
}

// Image handles POST /api/analyze/image. A payload that is not valid base64
// is scored like undecodable image bytes.
func (h *AnalyzeHandler) Image(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if !decode(w, r, h.logger, &req) {
		return
	}

	data, err := heuristics.DecodeImagePayload(req.Image)
	if err != nil {
		h.logger.Debug("Image payload not decodable", zap.Int("length", len(req.Image)))
		data = nil
	}

	result, err := h.service.AnalyzeImage(r.Context(), r.Header.Get(UserIDHeader), core.ImageInput{Data: data})
	h.respond(w, result, err)
}

func (h *AnalyzeHandler) respond(w http.ResponseWriter, result *core.AnalysisResult, err error) {
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
