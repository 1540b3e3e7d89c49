package core_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
)

const modelAnswer = "Risk Level: MEDIUM\nWarning Signs: Unsolicited offer\nExplanation: Verify before acting."

func newDispatcher(gen core.TextGenerator, cache core.ResultCache, limiter core.Limiter, m core.MetricsRecorder) *core.Dispatcher {
	cfg := core.DispatcherConfig{Timeout: 200 * time.Millisecond, CacheTTL: time.Hour, MaxPromptBytes: 1024}
	return core.NewDispatcher(gen, cache, limiter, m, cfg, zap.NewNop())
}

func TestDispatcher_PrimaryPath(t *testing.T) {
	gen := &mockGenerator{text: modelAnswer}
	d := newDispatcher(gen, nil, nil, nil)

	result := d.Dispatch(context.Background(), "Exclusive offer just for you")

	assert.Equal(t, core.PathPrimary, result.Path)
	assert.Equal(t, modelAnswer, result.Analysis)
	assert.Equal(t, "mock/test-model", result.Model)
	assert.Empty(t, result.FallbackReason)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Exclusive offer just for you")
	assert.Contains(t, gen.prompts[0], "Risk Level:")
}

func TestDispatcher_FallbackReasons(t *testing.T) {
	body := "Send me $500 now and I'll double your money"

	tests := []struct {
		name    string
		gen     core.TextGenerator
		limiter core.Limiter
		reason  string
	}{
		{"no generator", nil, nil, core.FallbackUnavailable},
		{"generator error", &mockGenerator{err: errors.New("service unavailable")}, nil, core.FallbackError},
		{"empty response", &mockGenerator{text: "   \n"}, nil, core.FallbackEmptyResponse},
		{"empty response error", &mockGenerator{err: fmt.Errorf("%w from test", core.ErrEmptyResponse)}, nil, core.FallbackEmptyResponse},
		{"generator panic", panicGenerator{}, nil, core.FallbackError},
		{"timeout", &mockGenerator{text: modelAnswer, delay: 2 * time.Second}, nil, core.FallbackTimeout},
		{"rate limited", &mockGenerator{text: modelAnswer}, denyLimiter{}, core.FallbackRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newCountingMetrics()
			d := newDispatcher(tt.gen, nil, tt.limiter, m)

			result := d.Dispatch(context.Background(), body)

			assert.Equal(t, core.PathFallback, result.Path)
			assert.Equal(t, tt.reason, result.FallbackReason)
			assert.True(t, strings.HasPrefix(result.Analysis, "Risk Level: HIGH\n"))
			assert.Contains(t, result.Analysis, "Investment/money scam pattern detected")
			assert.Equal(t, 1, m.paths["fallback/"+tt.reason])
		})
	}
}

func TestDispatcher_GeneratorPanicFallsBack(t *testing.T) {
	cache := newMapCache()
	d := newDispatcher(panicGenerator{}, cache, nil, nil)

	var result *core.FreeformResult
	require.NotPanics(t, func() {
		result = d.Dispatch(context.Background(), "urgent, click here")
	})

	assert.Equal(t, core.PathFallback, result.Path)
	assert.Equal(t, core.FallbackError, result.FallbackReason)
	assert.Empty(t, result.Model)
	assert.True(t, strings.HasPrefix(result.Analysis, "Risk Level: HIGH\n"))
	assert.Contains(t, result.Analysis, "Multiple urgency tactics detected")
	assert.Empty(t, cache.data)
}

func TestDispatcher_FallbackIsPerRequest(t *testing.T) {
	gen := &mockGenerator{err: errors.New("throttled")}
	d := newDispatcher(gen, nil, nil, nil)

	first := d.Dispatch(context.Background(), "hello")
	assert.Equal(t, core.PathFallback, first.Path)

	gen.mu.Lock()
	gen.err = nil
	gen.text = modelAnswer
	gen.mu.Unlock()

	second := d.Dispatch(context.Background(), "hello")
	assert.Equal(t, core.PathPrimary, second.Path)
	assert.Equal(t, 2, gen.Calls())
}

func TestDispatcher_NoRetry(t *testing.T) {
	gen := &mockGenerator{err: errors.New("boom")}
	d := newDispatcher(gen, nil, nil, nil)

	d.Dispatch(context.Background(), "hello")
	assert.Equal(t, 1, gen.Calls())
}

func TestDispatcher_Cache(t *testing.T) {
	gen := &mockGenerator{text: modelAnswer}
	cache := newMapCache()
	d := newDispatcher(gen, cache, nil, nil)

	first := d.Dispatch(context.Background(), "Win a FREE cruise")
	second := d.Dispatch(context.Background(), "  win a free cruise ")

	assert.Equal(t, core.PathPrimary, second.Path)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Analysis, second.Analysis)
	assert.Equal(t, 1, gen.Calls())
}

func TestDispatcher_CacheErrorsIgnored(t *testing.T) {
	gen := &mockGenerator{text: modelAnswer}
	cache := newMapCache()
	cache.err = errors.New("connection refused")
	d := newDispatcher(gen, cache, nil, nil)

	result := d.Dispatch(context.Background(), "hello")
	assert.Equal(t, core.PathPrimary, result.Path)
	assert.Equal(t, modelAnswer, result.Analysis)
}

func TestDispatcher_FailuresNotCached(t *testing.T) {
	gen := &mockGenerator{err: errors.New("boom")}
	cache := newMapCache()
	d := newDispatcher(gen, cache, nil, nil)

	d.Dispatch(context.Background(), "hello")
	assert.Empty(t, cache.data)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, core.CacheKey("Hello"), core.CacheKey(" hello "))
	assert.NotEqual(t, core.CacheKey("hello"), core.CacheKey("goodbye"))
	assert.True(t, strings.HasPrefix(core.CacheKey("x"), "freeform:"))
}
