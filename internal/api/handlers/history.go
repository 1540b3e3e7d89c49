package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
)

type HistoryHandler struct {
	service *core.AnalysisService
	logger  *zap.Logger
}

func NewHistoryHandler(service *core.AnalysisService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger.Named("history"),
	}
}

// List handles GET /history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.History(r.Context(), r.Header.Get(UserIDHeader), 0)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
