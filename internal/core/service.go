package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/heuristics"
)

// ErrHistoryDisabled is returned by History when no recorder is configured.
var ErrHistoryDisabled = errors.New("history is not enabled")

const incompleteReason = "Analysis incomplete: internal error"

// ServiceConfig holds the service-level knobs.
type ServiceConfig struct {
	// RecordTimeout bounds each asynchronous history write.
	RecordTimeout time.Duration
	// HistoryLimit caps the records returned by History.
	HistoryLimit int
}

var DefaultServiceConfig = ServiceConfig{
	RecordTimeout: 5 * time.Second,
	HistoryLimit:  20,
}

// AnalysisService is the scam-risk engine. It validates input, runs the
// channel scorers, classifies the score and attaches advice. Every method is
// safe for concurrent use.
type AnalysisService struct {
	scorer     *heuristics.Scorer
	dispatcher *Dispatcher
	history    HistoryRecorder
	metrics    MetricsRecorder
	logger     *zap.Logger
	cfg        ServiceConfig
	now        func() time.Time

	pending   sync.WaitGroup
	total     atomic.Int64
	primary   atomic.Int64
	fallback  atomic.Int64
	byTier    map[heuristics.RiskTier]*atomic.Int64
	byChannel map[Channel]*atomic.Int64
}

// NewAnalysisService builds the engine. history and metrics may be nil.
func NewAnalysisService(
	scorer *heuristics.Scorer,
	dispatcher *Dispatcher,
	history HistoryRecorder,
	metrics MetricsRecorder,
	cfg ServiceConfig,
	logger *zap.Logger,
) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scorer == nil {
		scorer = heuristics.NewScorer(nil, heuristics.Options{}, logger)
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if dispatcher == nil {
		dispatcher = NewDispatcher(nil, nil, nil, metrics, DefaultDispatcherConfig, logger)
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = DefaultServiceConfig.RecordTimeout
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultServiceConfig.HistoryLimit
	}

	s := &AnalysisService{
		scorer:     scorer,
		dispatcher: dispatcher,
		history:    history,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
		byTier:     make(map[heuristics.RiskTier]*atomic.Int64),
		byChannel:  make(map[Channel]*atomic.Int64),
	}
	for _, t := range []heuristics.RiskTier{heuristics.RiskLow, heuristics.RiskMedium, heuristics.RiskHigh} {
		s.byTier[t] = new(atomic.Int64)
	}
	for _, c := range []Channel{ChannelEmail, ChannelText, ChannelCall, ChannelWebsite, ChannelImage, ChannelFreeform} {
		s.byChannel[c] = new(atomic.Int64)
	}
	return s
}

// Scorer exposes the heuristic scorer, mainly for the catalog.
func (s *AnalysisService) Scorer() *heuristics.Scorer {
	return s.scorer
}

// AnalyzeEmail scores an email. Sender, subject and body are required.
func (s *AnalysisService) AnalyzeEmail(ctx context.Context, userID string, in EmailInput) (*AnalysisResult, error) {
	switch {
	case blank(in.Sender):
		return nil, missing("sender")
	case blank(in.Subject):
		return nil, missing("subject")
	case blank(in.Body):
		return nil, missing("content")
	}

	score := s.evaluate(ChannelEmail, func() heuristics.Score {
		return s.scorer.ScoreEmail(in.Sender, in.Subject, in.Body)
	})
	result := s.finish(ChannelEmail, score, credibility(in.Sender))

	s.record(userID, ChannelEmail, fmt.Sprintf("From: %s\nSubject: %s\n\n%s", in.Sender, in.Subject, in.Body), result)
	return result, nil
}

// AnalyzeText scores an SMS or chat message. The body is required.
func (s *AnalysisService) AnalyzeText(ctx context.Context, userID string, in TextInput) (*AnalysisResult, error) {
	if blank(in.Body) {
		return nil, missing("content")
	}

	score := s.evaluate(ChannelText, func() heuristics.Score {
		return s.scorer.ScoreText(in.Body, strings.TrimSpace(in.SenderNumber))
	})
	result := s.finish(ChannelText, score, credibility(in.SenderNumber))

	s.record(userID, ChannelText, in.Body, result)
	return result, nil
}

// AnalyzeCall scores call metadata. The caller number is required.
func (s *AnalysisService) AnalyzeCall(ctx context.Context, userID string, in CallInput) (*AnalysisResult, error) {
	if blank(in.CallerNumber) {
		return nil, missing("caller_number")
	}

	callType, urgency := heuristics.CallDefaults(in.CallType, in.UrgencyLevel)
	score := s.evaluate(ChannelCall, func() heuristics.Score {
		return s.scorer.ScoreCall(in.CallerNumber, callType, urgency)
	})
	result := s.finish(ChannelCall, score, credibility(in.CallerNumber))

	s.record(userID, ChannelCall, fmt.Sprintf("Caller: %s\nType: %s\nUrgency: %s", in.CallerNumber, callType, urgency), result)
	return result, nil
}

// AnalyzeWebsite scores a URL and optional page text. The URL is required.
func (s *AnalysisService) AnalyzeWebsite(ctx context.Context, userID string, in WebsiteInput) (*AnalysisResult, error) {
	if blank(in.URL) {
		return nil, missing("url")
	}

	score := s.evaluate(ChannelWebsite, func() heuristics.Score {
		return s.scorer.ScoreWebsite(in.URL, in.Body)
	})
	result := s.finish(ChannelWebsite, score, credibility(in.URL))

	s.record(userID, ChannelWebsite, strings.TrimSpace(in.URL+"\n"+in.Body), result)
	return result, nil
}

// AnalyzeImage scores raw image bytes. Missing or corrupt data is not an
// error; it is scored as maximally suspicious. The result carries no
// credibility.
func (s *AnalysisService) AnalyzeImage(ctx context.Context, userID string, in ImageInput) (*AnalysisResult, error) {
	score := s.evaluate(ChannelImage, func() heuristics.Score {
		return s.scorer.ScoreImage(in.Data)
	})
	result := s.finish(ChannelImage, score, nil)

	s.record(userID, ChannelImage, fmt.Sprintf("[image, %d bytes]", len(in.Data)), result)
	return result, nil
}

// AnalyzeFreeform produces an advisory for unstructured text, from the
// generator when available and from the rule-based classifier otherwise.
// The only error is a missing body.
func (s *AnalysisService) AnalyzeFreeform(ctx context.Context, userID string, in FreeformInput) (*FreeformResult, error) {
	if blank(in.Body) {
		return nil, missing("text")
	}

	result := s.dispatcher.Dispatch(ctx, in.Body)

	tier, ok := heuristics.ParseRiskLevel(result.Analysis)
	label := "unknown"
	s.total.Add(1)
	s.byChannel[ChannelFreeform].Add(1)
	if ok {
		s.byTier[tier].Add(1)
		label = string(tier)
	}
	if result.Path == PathPrimary {
		s.primary.Add(1)
	} else {
		s.fallback.Add(1)
	}
	s.metrics.ObserveAnalysis(string(ChannelFreeform), label)

	if userID != "" && s.history != nil {
		s.enqueue(&HistoryRecord{
			ID:        uuid.New(),
			UserID:    userID,
			Channel:   ChannelFreeform,
			InputText: in.Body,
			Result:    result.Analysis,
			RiskTier:  string(tier),
			CreatedAt: result.GeneratedAt,
		})
	}
	return result, nil
}

// History returns the most recent records for a user, newest first.
func (s *AnalysisService) History(ctx context.Context, userID string, limit int) ([]*HistoryRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if blank(userID) {
		return nil, missing("user_id")
	}
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}

	records, err := s.history.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}

// HistoryEnabled reports whether analyses are being recorded.
func (s *AnalysisService) HistoryEnabled() bool {
	return s.history != nil
}

// GeneratorAvailable reports whether the primary free-form path is configured.
func (s *AnalysisService) GeneratorAvailable() bool {
	return s.dispatcher.Available()
}

// Stats returns a snapshot of the counters.
func (s *AnalysisService) Stats() Stats {
	st := Stats{
		TotalAnalyses:    s.total.Load(),
		RiskDistribution: make(map[string]int64, len(s.byTier)),
		ByChannel:        make(map[string]int64, len(s.byChannel)),
		PrimaryAnalyses:  s.primary.Load(),
		FallbackAnalyses: s.fallback.Load(),
	}
	for t, c := range s.byTier {
		st.RiskDistribution[strings.ToLower(string(t))] = c.Load()
	}
	for ch, c := range s.byChannel {
		st.ByChannel[string(ch)] = c.Load()
	}
	return st
}

// Wait blocks until pending history writes finish.
func (s *AnalysisService) Wait() {
	s.pending.Wait()
}

// evaluate runs a scorer, turning a panic into an empty low-risk score.
func (s *AnalysisService) evaluate(channel Channel, fn func() heuristics.Score) (score heuristics.Score) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scorer panicked",
				zap.String("channel", string(channel)),
				zap.Any("panic", r))
			score = heuristics.Score{Reasons: []string{incompleteReason}}
		}
	}()
	return fn()
}

func (s *AnalysisService) finish(channel Channel, score heuristics.Score, cred *heuristics.Credibility) *AnalysisResult {
	tier := heuristics.Classify(score.Points)
	reasons := score.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	result := &AnalysisResult{
		ID:                uuid.New(),
		Channel:           channel,
		RiskTier:          tier,
		RiskScore:         score.Points,
		Reasons:           reasons,
		Recommendations:   heuristics.Recommendations(tier),
		SourceCredibility: cred,
		GeneratedAt:       s.now(),
	}

	s.total.Add(1)
	s.byTier[tier].Add(1)
	s.byChannel[channel].Add(1)
	s.metrics.ObserveAnalysis(string(channel), string(tier))

	s.logger.Debug("Analysis complete",
		zap.String("channel", string(channel)),
		zap.String("risk_level", string(tier)),
		zap.Int("risk_score", score.Points),
		zap.Int("warnings", len(reasons)))

	return result
}

func (s *AnalysisService) record(userID string, channel Channel, input string, result *AnalysisResult) {
	if userID == "" || s.history == nil {
		return
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("Failed to encode analysis for history", zap.Error(err))
		return
	}
	s.enqueue(&HistoryRecord{
		ID:        result.ID,
		UserID:    userID,
		Channel:   channel,
		InputText: input,
		Result:    string(encoded),
		RiskTier:  string(result.RiskTier),
		CreatedAt: result.GeneratedAt,
	})
}

// enqueue writes a record in the background. Failures are logged only.
func (s *AnalysisService) enqueue(rec *HistoryRecord) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RecordTimeout)
		defer cancel()

		if err := s.history.Record(ctx, rec); err != nil {
			s.logger.Warn("Failed to record analysis history",
				zap.String("channel", string(rec.Channel)),
				zap.Error(err))
		}
	}()
}

func credibility(source string) *heuristics.Credibility {
	c := heuristics.AssessCredibility(source)
	return &c
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
