package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
)

func newSQLite(t *testing.T, opts Options) *SQLiteHistory {
	t.Helper()
	h, err := NewSQLiteHistory(filepath.Join(t.TempDir(), "nested", "history.db"), zap.NewNop(), opts)
	require.NoError(t, err)
	t.Cleanup(h.Stop)
	return h
}

func record(userID string, channel core.Channel, at time.Time) *core.HistoryRecord {
	return &core.HistoryRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Channel:   channel,
		InputText: "input for " + string(channel),
		Result:    "Risk Level: LOW",
		RiskTier:  "LOW",
		CreatedAt: at,
	}
}

func TestSQLiteHistory_RecordAndRecent(t *testing.T) {
	h := newSQLite(t, Options{})
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first := record("alice", core.ChannelEmail, base)
	second := record("alice", core.ChannelText, base.Add(time.Minute))
	other := record("bob", core.ChannelCall, base.Add(2*time.Minute))
	for _, r := range []*core.HistoryRecord{first, second, other} {
		require.NoError(t, h.Record(ctx, r))
	}

	got, err := h.Recent(ctx, "alice", 20)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, core.ChannelText, got[0].Channel)
	assert.Equal(t, "input for text", got[0].InputText)
	assert.True(t, second.CreatedAt.Equal(got[0].CreatedAt))
	assert.Equal(t, first.ID, got[1].ID)

	limited, err := h.Recent(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := h.Recent(ctx, "nobody", 20)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteHistory_Purge(t *testing.T) {
	h := newSQLite(t, Options{Retention: time.Hour})
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, record("alice", core.ChannelEmail, time.Now().Add(-2*time.Hour))))
	require.NoError(t, h.Record(ctx, record("alice", core.ChannelText, time.Now())))

	require.NoError(t, h.Purge(ctx))

	got, err := h.Recent(ctx, "alice", 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.ChannelText, got[0].Channel)
}

func TestSQLiteHistory_PurgeDisabled(t *testing.T) {
	h := newSQLite(t, Options{})
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, record("alice", core.ChannelEmail, time.Now().AddDate(-5, 0, 0))))
	require.NoError(t, h.Purge(ctx))

	got, err := h.Recent(ctx, "alice", 20)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteHistory_WithService(t *testing.T) {
	h := newSQLite(t, Options{})
	svc := core.NewAnalysisService(nil, nil, h, nil, core.DefaultServiceConfig, zap.NewNop())
	ctx := context.Background()

	_, err := svc.AnalyzeWebsite(ctx, "carol", core.WebsiteInput{URL: "http://phishing.org"})
	require.NoError(t, err)
	svc.Wait()

	got, err := svc.History(ctx, "carol", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.ChannelWebsite, got[0].Channel)
	assert.Equal(t, "MEDIUM", got[0].RiskTier)
	assert.Contains(t, got[0].Result, `"risk_score":35`)
}

func TestNewMySQLHistory_InvalidDSN(t *testing.T) {
	_, err := NewMySQLHistory("not a dsn", zap.NewNop(), Options{})
	assert.Error(t, err)
}

func TestNewPostgresHistory_InvalidDSN(t *testing.T) {
	_, err := NewPostgresHistory(context.Background(), "postgres://%zz", zap.NewNop(), Options{})
	assert.ErrorContains(t, err, "failed to parse postgres DSN")
}
