package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/heuristics"
	"github.com/mikey/scam-guard/internal/utils"
)

// DispatcherConfig tunes the primary path.
type DispatcherConfig struct {
	// Timeout bounds the single generator call.
	Timeout time.Duration
	// CacheTTL is how long generated analyses are kept. Zero disables caching.
	CacheTTL time.Duration
	// MaxPromptBytes truncates the message before it is sent. Zero disables.
	MaxPromptBytes int
}

var DefaultDispatcherConfig = DispatcherConfig{
	Timeout:        20 * time.Second,
	CacheTTL:       24 * time.Hour,
	MaxPromptBytes: 8 * 1024,
}

// generation is the outcome of one primary attempt: either text or the reason
// the fallback must be used.
type generation struct {
	text   string
	cached bool
	reason string
	err    error
}

func (g generation) ok() bool { return g.reason == "" }

// Dispatcher produces a free-form analysis from the generator when it can
// and from the deterministic classifier when it cannot. Dispatch never
// fails.
type Dispatcher struct {
	generator TextGenerator
	cache     ResultCache
	limiter   Limiter
	metrics   MetricsRecorder
	processor *utils.TextProcessor
	cfg       DispatcherConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewDispatcher wires the primary path. generator, cache and limiter may be nil.
func NewDispatcher(
	generator TextGenerator,
	cache ResultCache,
	limiter Limiter,
	metrics MetricsRecorder,
	cfg DispatcherConfig,
	logger *zap.Logger,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultDispatcherConfig.Timeout
	}
	return &Dispatcher{
		generator: generator,
		cache:     cache,
		limiter:   limiter,
		metrics:   metrics,
		processor: utils.NewTextProcessor(logger),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Available reports whether a generator is configured.
func (d *Dispatcher) Available() bool {
	return d.generator != nil
}

// Dispatch analyzes body. Each call attempts the primary path afresh.
func (d *Dispatcher) Dispatch(ctx context.Context, body string) *FreeformResult {
	gen := d.attempt(ctx, body)

	if gen.ok() {
		d.metrics.ObserveFreeformPath(string(PathPrimary), "")
		return &FreeformResult{
			Analysis:    gen.text,
			Path:        PathPrimary,
			Model:       d.generator.Name(),
			Cached:      gen.cached,
			GeneratedAt: d.now(),
		}
	}

	if gen.reason != FallbackUnavailable {
		d.logger.Warn("Generator failed, using rule-based analysis",
			zap.String("reason", gen.reason),
			zap.Error(gen.err))
	}
	d.metrics.ObserveFreeformPath(string(PathFallback), gen.reason)

	return &FreeformResult{
		Analysis:       heuristics.ClassifyText(body).Render(),
		Path:           PathFallback,
		FallbackReason: gen.reason,
		GeneratedAt:    d.now(),
	}
}

func (d *Dispatcher) attempt(ctx context.Context, body string) generation {
	if d.generator == nil {
		return generation{reason: FallbackUnavailable}
	}

	key := CacheKey(body)
	if d.cache != nil && d.cfg.CacheTTL > 0 {
		text, found, err := d.cache.Get(ctx, key)
		switch {
		case err != nil:
			d.logger.Debug("Result cache read failed", zap.Error(err))
		case found:
			d.logger.Debug("Result cache hit", zap.String("key", key))
			return generation{text: text, cached: true}
		}
	}

	if d.limiter != nil && !d.limiter.Allow() {
		return generation{reason: FallbackRateLimited}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	prompt := BuildPrompt(d.processor.ProcessText(body, d.cfg.MaxPromptBytes))
	start := d.now()
	text, err := d.generate(callCtx, prompt)
	d.metrics.ObserveGeneration(d.generator.Name(), d.now().Sub(start), err)

	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)):
		return generation{reason: FallbackTimeout, err: err}
	case errors.Is(err, ErrEmptyResponse):
		return generation{reason: FallbackEmptyResponse, err: err}
	case err != nil:
		return generation{reason: FallbackError, err: err}
	case strings.TrimSpace(text) == "":
		return generation{reason: FallbackEmptyResponse}
	}

	if d.cache != nil && d.cfg.CacheTTL > 0 {
		if err := d.cache.Set(ctx, key, text, d.cfg.CacheTTL); err != nil {
			d.logger.Warn("Failed to cache generated analysis", zap.Error(err))
		}
	}
	return generation{text: text}
}

// generate calls the generator, turning a panic into an error.
func (d *Dispatcher) generate(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Generator panicked",
				zap.String("provider", d.generator.Name()),
				zap.Any("panic", r))
			text, err = "", fmt.Errorf("generator panicked: %v", r)
		}
	}()
	return d.generator.Generate(ctx, prompt)
}

// CacheKey derives the result-cache key for a message.
func CacheKey(body string) string {
	sum := sha256.Sum256([]byte(utils.Normalize(strings.TrimSpace(body))))
	return "freeform:" + hex.EncodeToString(sum[:])
}
