package decision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMomentumPolicyHoldsUntilHistoryFills(t *testing.T) {
	policy := NewMomentumPolicy(3)
	acct := newAccount(t, 10000)

	for i := 0; i < 2; i++ {
		action, err := policy.Decide(snapshotOf(map[string]float64{"QBIT": 100}), acct)
		require.NoError(t, err)
		assert.Equal(t, ActionHold, action.Kind, "no trade before the averaging window fills")
	}
}

func TestMomentumPolicyBuysTheRiser(t *testing.T) {
	policy := NewMomentumPolicy(3)
	acct := newAccount(t, 10000)

	// QBIT trends up while HELIO stays flat; once the window fills, the
	// policy should chase QBIT.
	walk := []map[string]float64{
		{"QBIT": 100, "HELIO": 50},
		{"QBIT": 104, "HELIO": 50},
		{"QBIT": 108, "HELIO": 50},
		{"QBIT": 112, "HELIO": 50},
	}
	var last Action
	for _, prices := range walk {
		action, err := policy.Decide(snapshotOf(prices), acct)
		require.NoError(t, err)
		last = action
	}
	assert.Equal(t, ActionBuy, last.Kind)
	assert.Equal(t, "QBIT", last.Symbol)
	assert.Positive(t, last.Shares)
}

func TestMomentumPolicySellsBelowAverage(t *testing.T) {
	policy := NewMomentumPolicy(3)
	acct := newAccount(t, 10000)
	_, err := acct.Buy("QBIT", 5, decimal.NewFromInt(100))
	require.NoError(t, err)

	walk := []map[string]float64{
		{"QBIT": 100},
		{"QBIT": 98},
		{"QBIT": 96},
		{"QBIT": 80},
	}
	var last Action
	for _, prices := range walk {
		action, err := policy.Decide(snapshotOf(prices), acct)
		require.NoError(t, err)
		last = action
	}
	assert.Equal(t, ActionSell, last.Kind)
	assert.Equal(t, "QBIT", last.Symbol)
	assert.Equal(t, int64(5), last.Shares, "exits dump the whole position")
}

func writeSignalFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signals.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSignalFilePolicyConsumesSignalsInOrder(t *testing.T) {
	path := writeSignalFile(t, `{"signals":[
		{"symbol":"qbit","action":"buy","shares":2},
		{"symbol":"HELIO","action":"buy","shares":1}
	]}`)
	policy, err := NewSignalFilePolicy(path)
	require.NoError(t, err)

	snap := snapshotOf(map[string]float64{"QBIT": 100, "HELIO": 50})
	acct := newAccount(t, 10000)

	first, err := policy.Decide(snap, acct)
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: ActionBuy, Symbol: "QBIT", Shares: 2}, first)

	second, err := policy.Decide(snap, acct)
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: ActionBuy, Symbol: "HELIO", Shares: 1}, second)

	third, err := policy.Decide(snap, acct)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, third.Kind, "an exhausted feed means hold")
}

func TestSignalFilePolicySkipsUnknownAndMalformedEntries(t *testing.T) {
	path := writeSignalFile(t, `{"signals":[
		{"symbol":"GHOST","action":"buy","shares":2},
		{"symbol":"QBIT","action":"buy","shares":0},
		{"symbol":"QBIT","action":"buy","shares":3}
	]}`)
	policy, err := NewSignalFilePolicy(path)
	require.NoError(t, err)

	snap := snapshotOf(map[string]float64{"QBIT": 100})
	action, err := policy.Decide(snap, newAccount(t, 10000))
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: ActionBuy, Symbol: "QBIT", Shares: 3}, action)
}

func TestSignalFilePolicyClampsSellToHoldings(t *testing.T) {
	path := writeSignalFile(t, `{"signals":[{"symbol":"QBIT","action":"sell","shares":10}]}`)
	policy, err := NewSignalFilePolicy(path)
	require.NoError(t, err)

	acct := newAccount(t, 10000)
	_, err = acct.Buy("QBIT", 4, decimal.NewFromInt(100))
	require.NoError(t, err)

	action, err := policy.Decide(snapshotOf(map[string]float64{"QBIT": 100}), acct)
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: ActionSell, Symbol: "QBIT", Shares: 4}, action)
}

func TestSignalFilePolicyErrors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := NewSignalFilePolicy(" ")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		policy, err := NewSignalFilePolicy(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		_, err = policy.Decide(snapshotOf(map[string]float64{"QBIT": 100}), newAccount(t, 100))
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		policy, err := NewSignalFilePolicy(writeSignalFile(t, `{"signals":[`))
		require.NoError(t, err)
		_, err = policy.Decide(snapshotOf(map[string]float64{"QBIT": 100}), newAccount(t, 100))
		assert.Error(t, err)
	})

	t.Run("no signals array", func(t *testing.T) {
		policy, err := NewSignalFilePolicy(writeSignalFile(t, `{"other":1}`))
		require.NoError(t, err)
		_, err = policy.Decide(snapshotOf(map[string]float64{"QBIT": 100}), newAccount(t, 100))
		assert.Error(t, err)
	})
}
