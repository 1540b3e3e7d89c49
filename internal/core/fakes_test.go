package core_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mikey/scam-guard/internal/core"
)

type mockGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	delay   time.Duration
	calls   int
	prompts []string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.text, m.err
}

func (m *mockGenerator) Name() string { return "mock/test-model" }

func (m *mockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type panicGenerator struct{}

func (panicGenerator) Generate(context.Context, string) (string, error) {
	panic("provider bug")
}

func (panicGenerator) Name() string { return "panic/test-model" }

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string]string)} }

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[key] = value
	return nil
}

type denyLimiter struct{}

func (denyLimiter) Allow() bool { return false }

type memoryHistory struct {
	mu      sync.Mutex
	records []*core.HistoryRecord
	err     error
}

func (h *memoryHistory) Record(_ context.Context, rec *core.HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, rec)
	return nil
}

func (h *memoryHistory) Recent(_ context.Context, userID string, limit int) ([]*core.HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*core.HistoryRecord
	for _, r := range h.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (h *memoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

type countingMetrics struct {
	mu    sync.Mutex
	paths map[string]int
}

func newCountingMetrics() *countingMetrics { return &countingMetrics{paths: make(map[string]int)} }

func (m *countingMetrics) ObserveAnalysis(string, string) {}

func (m *countingMetrics) ObserveFreeformPath(path, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[path+"/"+reason]++
}

func (m *countingMetrics) ObserveGeneration(string, time.Duration, error) {}
