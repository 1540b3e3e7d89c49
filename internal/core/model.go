package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/mikey/scam-guard/internal/heuristics"
)

// Channel is the medium an input arrived through.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelText     Channel = "text"
	ChannelCall     Channel = "call"
	ChannelWebsite  Channel = "website"
	ChannelImage    Channel = "image"
	ChannelFreeform Channel = "freeform"
)

// EmailInput is an email as seen by the recipient.
type EmailInput struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"content"`
}

// TextInput is an SMS or chat message. SenderNumber is optional.
type TextInput struct {
	Body         string `json:"content"`
	SenderNumber string `json:"sender_number,omitempty"`
}

// CallInput is metadata about a phone call.
type CallInput struct {
	CallerNumber string `json:"caller_number"`
	CallType     string `json:"call_type,omitempty"`
	UrgencyLevel string `json:"urgency_level,omitempty"`
}

// WebsiteInput is a URL and, optionally, the page text.
type WebsiteInput struct {
	URL  string `json:"url"`
	Body string `json:"content,omitempty"`
}

// ImageInput holds raw image bytes.
type ImageInput struct {
	Data []byte `json:"-"`
}

// FreeformInput is unstructured text for the dual-path analysis.
type FreeformInput struct {
	Body string `json:"text"`
}

// AnalysisResult is the structured verdict for a channel input.
type AnalysisResult struct {
	ID                uuid.UUID               `json:"id"`
	Channel           Channel                 `json:"channel"`
	RiskTier          heuristics.RiskTier     `json:"risk_level"`
	RiskScore         int                     `json:"risk_score"`
	Reasons           []string                `json:"warnings"`
	Recommendations   []string                `json:"recommendations"`
	SourceCredibility *heuristics.Credibility `json:"source_credibility,omitempty"`
	GeneratedAt       time.Time               `json:"timestamp"`
}

// DisplayScore is RiskScore capped for presentation.
func (r *AnalysisResult) DisplayScore() int {
	return heuristics.DisplayScore(r.RiskScore)
}

// Path records which branch produced a free-form analysis.
type Path string

const (
	PathPrimary  Path = "primary"
	PathFallback Path = "fallback"
)

// Reasons for taking the fallback path.
const (
	FallbackUnavailable   = "unavailable"
	FallbackRateLimited   = "rate_limited"
	FallbackError         = "error"
	FallbackTimeout       = "timeout"
	FallbackEmptyResponse = "empty_response"
)

// FreeformResult is the advisory text for a free-form input along with how
// it was produced.
type FreeformResult struct {
	Analysis       string    `json:"analysis"`
	Path           Path      `json:"path"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
	Model          string    `json:"model,omitempty"`
	Cached         bool      `json:"cached,omitempty"`
	GeneratedAt    time.Time `json:"timestamp"`
}

// HistoryRecord is one stored analysis for a user.
type HistoryRecord struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"-"`
	Channel   Channel   `json:"channel"`
	InputText string    `json:"text"`
	Result    string    `json:"result"`
	RiskTier  string    `json:"risk_level,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is a snapshot of the service counters since start-up.
type Stats struct {
	TotalAnalyses    int64            `json:"total_analyses"`
	RiskDistribution map[string]int64 `json:"risk_distribution"`
	ByChannel        map[string]int64 `json:"by_channel"`
	PrimaryAnalyses  int64            `json:"primary_analyses"`
	FallbackAnalyses int64            `json:"fallback_analyses"`
}
