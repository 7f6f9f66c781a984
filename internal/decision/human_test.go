package decision

import (
	"testing"

	"tradebattle/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanSourceDrainsAtMostOnePerPropose(t *testing.T) {
	h := NewHumanSource(4)
	require.NoError(t, h.Enqueue(TradeRequest{Kind: ActionBuy, Symbol: "qbit", Shares: 2}))
	require.NoError(t, h.Enqueue(TradeRequest{Kind: ActionSell, Symbol: "HELIO", Shares: 1}))

	first := h.Propose(market.Snapshot{}, nil)
	assert.Equal(t, Action{Kind: ActionBuy, Symbol: "QBIT", Shares: 2}, first)
	assert.Equal(t, 1, h.Pending())

	second := h.Propose(market.Snapshot{}, nil)
	assert.Equal(t, Action{Kind: ActionSell, Symbol: "HELIO", Shares: 1}, second)

	third := h.Propose(market.Snapshot{}, nil)
	assert.Equal(t, ActionHold, third.Kind, "an empty queue means hold")
}

func TestHumanSourceValidation(t *testing.T) {
	h := NewHumanSource(4)

	assert.Error(t, h.Enqueue(TradeRequest{Kind: ActionHold, Symbol: "QBIT", Shares: 1}))
	assert.Error(t, h.Enqueue(TradeRequest{Kind: "short", Symbol: "QBIT", Shares: 1}))
	assert.Error(t, h.Enqueue(TradeRequest{Kind: ActionBuy, Symbol: "  ", Shares: 1}))
	assert.Error(t, h.Enqueue(TradeRequest{Kind: ActionBuy, Symbol: "QBIT", Shares: 0}))
	assert.Zero(t, h.Pending())
}

func TestHumanSourceQueueLimit(t *testing.T) {
	h := NewHumanSource(2)
	require.NoError(t, h.Enqueue(TradeRequest{Kind: ActionBuy, Symbol: "A", Shares: 1}))
	require.NoError(t, h.Enqueue(TradeRequest{Kind: ActionBuy, Symbol: "B", Shares: 1}))

	err := h.Enqueue(TradeRequest{Kind: ActionBuy, Symbol: "C", Shares: 1})
	assert.Error(t, err, "requests past the limit are rejected, not silently dropped")
	assert.Equal(t, 2, h.Pending())
}

func TestHumanSourceReset(t *testing.T) {
	h := NewHumanSource(4)
	require.NoError(t, h.Enqueue(TradeRequest{Kind: ActionBuy, Symbol: "QBIT", Shares: 1}))

	h.Reset()
	assert.Zero(t, h.Pending())
	assert.Equal(t, ActionHold, h.Propose(market.Snapshot{}, nil).Kind,
		"stale requests from a finished turn must never execute")
}
