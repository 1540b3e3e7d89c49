// Package handlers implements the HTTP endpoints of the scam-guard API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
)

// UserIDHeader carries the caller's identity for history.
const UserIDHeader = "X-User-ID"

// Handlers holds all API handlers
type Handlers struct {
	Info     *InfoHandler
	Analyze  *AnalyzeHandler
	History  *HistoryHandler
	Freeform *FreeformHandler
}

// NewHandlers creates all handlers
func NewHandlers(service *core.AnalysisService, logger *zap.Logger) *Handlers {
	return &Handlers{
		Info:     NewInfoHandler(service, logger),
		Analyze:  NewAnalyzeHandler(service, logger),
		History:  NewHistoryHandler(service, logger),
		Freeform: NewFreeformHandler(service, logger),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads a JSON body. It writes the 400 itself and reports false on
// failure.
func decode(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Debug("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, core.ErrHistoryDisabled):
		writeError(w, http.StatusServiceUnavailable, "History is not enabled")
	default:
		logger.Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Analysis failed")
	}
}
