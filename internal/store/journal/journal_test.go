package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tradebattle/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := New(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func entry(sessionID string, round int, owner string, at time.Time) store.TradeEntry {
	return store.TradeEntry{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Round:      round,
		Owner:      owner,
		Kind:       "buy",
		Symbol:     "QBIT",
		Shares:     3,
		Price:      decimal.RequireFromString("101.25"),
		ExecutedAt: at,
	}
}

func TestJournalRoundTrip(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Millisecond)

	first := entry("session-a", 1, "human", base)
	second := entry("session-a", 1, "ai", base.Add(time.Second))
	other := entry("session-b", 1, "human", base)
	require.NoError(t, j.AppendTrades(ctx, []store.TradeEntry{first, second, other}))

	got, err := j.ListTrades(ctx, "session-a")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, first.ID, got[0].ID, "trades come back in execution order")
	assert.Equal(t, second.ID, got[1].ID)
	assert.Equal(t, "human", got[0].Owner)
	assert.True(t, got[0].Price.Equal(first.Price))
	assert.Equal(t, int64(3), got[0].Shares)
	assert.True(t, got[0].ExecutedAt.Equal(base))
}

func TestJournalDuplicateBatchIsIdempotent(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	batch := []store.TradeEntry{entry("session-a", 1, "human", time.Now())}
	require.NoError(t, j.AppendTrades(ctx, batch))
	require.NoError(t, j.AppendTrades(ctx, batch), "re-archiving the same turn must not fail")

	got, err := j.ListTrades(ctx, "session-a")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestJournalEmptyCases(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	assert.NoError(t, j.AppendTrades(ctx, nil))

	got, err := j.ListTrades(ctx, "unknown-session")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJournalRequiresPath(t *testing.T) {
	_, err := New("  ")
	assert.Error(t, err)
}
