package core

import (
	"context"
	"time"
)

// TextGenerator is an external generative-text service.
type TextGenerator interface {
	// Generate returns the model's completion for prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider and model for logs and metrics.
	Name() string
}

// ResultCache stores generated analyses keyed by a digest of the input.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// HistoryRecorder persists analyses per user.
type HistoryRecorder interface {
	Record(ctx context.Context, record *HistoryRecord) error

	// Recent returns up to limit records for userID, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]*HistoryRecord, error)
}

// Limiter gates calls to the generator.
type Limiter interface {
	Allow() bool
}

// MetricsRecorder receives engine events.
type MetricsRecorder interface {
	ObserveAnalysis(channel, tier string)
	ObserveFreeformPath(path, reason string)
	ObserveGeneration(provider string, elapsed time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveAnalysis(string, string)                 {}
func (noopMetrics) ObserveFreeformPath(string, string)             {}
func (noopMetrics) ObserveGeneration(string, time.Duration, error) {}
