package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
)

const serviceName = "ScamGuard API"

// InfoHandler serves the index, health, stats and examples endpoints.
type InfoHandler struct {
	service   *core.AnalysisService
	logger    *zap.Logger
	startTime time.Time
}

func NewInfoHandler(service *core.AnalysisService, logger *zap.Logger) *InfoHandler {
	return &InfoHandler{
		service:   service,
		logger:    logger.Named("info"),
		startTime: time.Now(),
	}
}

type homeResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Uptime    string `json:"uptime"`
	Generator bool   `json:"generator_available"`
	History   bool   `json:"history_enabled"`
	Timestamp string `json:"timestamp"`
}

// StatsResponse is core.Stats plus service status.
type StatsResponse struct {
	core.Stats
	APIStatus   string `json:"api_status"`
	LastUpdated string `json:"last_updated"`
}

// Example is a sample message for trying the API.
type Example struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	IsFraud bool   `json:"is_fraud"`
}

var examples = []Example{
	{
		Type:    "phishing_email",
		Text:    "URGENT: Your account will be suspended! Click here immediately to verify your information.",
		IsFraud: true,
	},
	{
		Type:    "fake_news",
		Text:    "Scientists discover miracle cure that doctors don't want you to know about!",
		IsFraud: true,
	},
	{
		Type:    "legitimate",
		Text:    "Your monthly statement is now available. Log in to your account to view it.",
		IsFraud: false,
	},
}

// Home handles GET /
func (h *InfoHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, homeResponse{
		Message: "ScamGuard API is running!",
		Endpoints: map[string]string{
			"health":          "/api/health",
			"analyze_email":   "/api/analyze/email",
			"analyze_text":    "/api/analyze/text",
			"analyze_call":    "/api/analyze/call",
			"analyze_website": "/api/analyze/website",
			"analyze_image":   "/api/analyze/image",
			"analyze":         "/analyze",
			"history":         "/history",
			"examples":        "/api/examples",
			"stats":           "/api/stats",
			"metrics":         "/metrics",
		},
	})
}

// Health handles GET /api/health
func (h *InfoHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Generator: h.service.GeneratorAvailable(),
		History:   h.service.HistoryEnabled(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats handles GET /api/stats
func (h *InfoHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Stats:       h.service.Stats(),
		APIStatus:   "operational",
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	})
}

// Examples handles GET /api/examples
func (h *InfoHandler) Examples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, examples)
}
