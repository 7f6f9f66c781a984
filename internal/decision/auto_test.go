package decision

import (
	"errors"
	"testing"
	"time"

	"tradebattle/internal/account"
	"tradebattle/internal/market"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(prices map[string]float64) market.Snapshot {
	snap := market.Snapshot{At: time.Now()}
	for sym, price := range prices {
		snap.Instruments = append(snap.Instruments, market.Instrument{
			Symbol: sym,
			Price:  decimal.NewFromFloat(price),
		})
	}
	return snap
}

func newAccount(t *testing.T, cash int64) *account.Account {
	t.Helper()
	acct, err := account.New("ai", decimal.NewFromInt(cash))
	require.NoError(t, err)
	return acct
}

type stubPolicy struct {
	action Action
	err    error
}

func (p *stubPolicy) Name() string { return "stub" }

func (p *stubPolicy) Decide(market.Snapshot, *account.Account) (Action, error) {
	return p.action, p.err
}

func TestAutoSourceDowngradesPolicyFailureToHold(t *testing.T) {
	src := NewAutoSource(&stubPolicy{err: errors.New("feed unavailable")})
	action := src.Propose(snapshotOf(map[string]float64{"QBIT": 100}), newAccount(t, 1000))
	assert.Equal(t, ActionHold, action.Kind)
}

func TestAutoSourceRejectsNonPositiveShares(t *testing.T) {
	src := NewAutoSource(&stubPolicy{action: Action{Kind: ActionBuy, Symbol: "QBIT", Shares: 0}})
	action := src.Propose(snapshotOf(map[string]float64{"QBIT": 100}), newAccount(t, 1000))
	assert.Equal(t, ActionHold, action.Kind)
}

func TestAutoSourcePassesThroughValidTrades(t *testing.T) {
	want := Action{Kind: ActionSell, Symbol: "QBIT", Shares: 3}
	src := NewAutoSource(&stubPolicy{action: want})
	assert.Equal(t, want, src.Propose(snapshotOf(map[string]float64{"QBIT": 100}), newAccount(t, 1000)))
}

func TestAutoSourceDefaultsToRandomPolicy(t *testing.T) {
	src := NewAutoSource(nil)
	assert.Equal(t, "random", src.PolicyName())
}

func TestRandomPolicyProposesAffordableTrades(t *testing.T) {
	policy := NewRandomPolicy(99)
	snap := snapshotOf(map[string]float64{"QBIT": 100, "HELIO": 42.5})
	acct := newAccount(t, 1000)

	for i := 0; i < 100; i++ {
		action, err := policy.Decide(snap, acct)
		require.NoError(t, err)
		if action.Kind != ActionBuy {
			continue
		}
		price, ok := snap.Price(action.Symbol)
		require.True(t, ok, "random policy must only pick listed symbols")
		cost := price.Mul(decimal.NewFromInt(action.Shares))
		assert.True(t, cost.LessThanOrEqual(acct.Cash()),
			"proposed buy of %d %s costs %s with %s cash", action.Shares, action.Symbol, cost, acct.Cash())
	}
}

func TestRandomPolicyHoldsWhenBroke(t *testing.T) {
	policy := NewRandomPolicy(1)
	snap := snapshotOf(map[string]float64{"QBIT": 100})
	acct := newAccount(t, 0)

	for i := 0; i < 50; i++ {
		action, err := policy.Decide(snap, acct)
		require.NoError(t, err)
		assert.NotEqual(t, ActionBuy, action.Kind, "no buys without cash")
	}
}
