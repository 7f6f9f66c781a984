package account

import (
	"testing"
	"time"

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

func TestBuyConservesValue(t *testing.T) {
	cases := []struct {
		name   string
		cash   float64
		shares int64
		price  float64
	}{
		{"small", 1000, 3, 25.5},
		{"exact", 100, 4, 25},
		{"single share", 10000, 1, 9999.99},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			acct, err := New("human", decimal.NewFromFloat(tc.cash))
			require.NoError(t, err)

			_, err = acct.Buy("QBIT", tc.shares, decimal.NewFromFloat(tc.price))
			require.NoError(t, err)

			cost := decimal.NewFromFloat(tc.price).Mul(decimal.NewFromInt(tc.shares))
			assert.True(t, acct.Cash().Add(cost).Equal(decimal.NewFromFloat(tc.cash)),
				"cash' + shares*price must equal original cash")
			assert.Equal(t, tc.shares, acct.Shares("QBIT"))
		})
	}
}

func TestBuyInsufficientFundsLeavesStateUntouched(t *testing.T) {
	acct, err := New("human", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = acct.Buy("QBIT", 5, decimal.NewFromInt(30))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, acct.Cash().Equal(decimal.NewFromInt(100)))
	assert.Zero(t, acct.Shares("QBIT"))
	assert.Empty(t, acct.Trades())
}

func TestSellIsInverseOfBuy(t *testing.T) {
	acct, err := New("human", decimal.NewFromInt(10000))
	require.NoError(t, err)

	price := decimal.NewFromFloat(123.45)
	_, err = acct.Buy("HELIO", 7, price)
	require.NoError(t, err)
	_, err = acct.Sell("HELIO", 7, price)
	require.NoError(t, err)

	assert.True(t, acct.Cash().Equal(decimal.NewFromInt(10000)),
		"buy then sell at the same price must restore cash")
	assert.Zero(t, acct.Shares("HELIO"))
	assert.NotContains(t, acct.Holdings(), "HELIO", "zero positions must be removed")
	assert.Len(t, acct.Trades(), 2)
}

func TestSellInsufficientHoldings(t *testing.T) {
	acct, err := New("ai", decimal.NewFromInt(1000))
	require.NoError(t, err)
	_, err = acct.Buy("AERO", 2, decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = acct.Sell("AERO", 3, decimal.NewFromInt(10))
	require.ErrorIs(t, err, ErrInsufficientHoldings)
	assert.Equal(t, int64(2), acct.Shares("AERO"))
}

func TestTradeValidation(t *testing.T) {
	acct, err := New("human", decimal.NewFromInt(1000))
	require.NoError(t, err)

	_, err = acct.Buy("QBIT", 0, decimal.NewFromInt(10))
	assert.Error(t, err)
	_, err = acct.Buy("QBIT", -3, decimal.NewFromInt(10))
	assert.Error(t, err)
	_, err = acct.Sell("QBIT", 0, decimal.NewFromInt(10))
	assert.Error(t, err)
	_, err = acct.Buy("QBIT", 1, decimal.Zero)
	assert.Error(t, err)
}

func TestTotalValue(t *testing.T) {
	acct, err := New("human", decimal.NewFromInt(1000))
	require.NoError(t, err)
	_, err = acct.Buy("QBIT", 2, decimal.NewFromInt(100))
	require.NoError(t, err)

	snap := snapshotOf(map[string]float64{"QBIT": 100, "AERO": 20})
	want := decimal.NewFromInt(800).Add(decimal.NewFromInt(200))
	assert.True(t, acct.TotalValue(snap).Equal(want))

	// Identical prices must yield an identical valuation.
	again := snapshotOf(map[string]float64{"QBIT": 100, "AERO": 20})
	assert.True(t, acct.TotalValue(again).Equal(want),
		"total value must be invariant under a no-op tick")
}

func TestTotalValueMissingSymbolContributesZero(t *testing.T) {
	acct, err := New("human", decimal.NewFromInt(500))
	require.NoError(t, err)
	_, err = acct.Buy("GHOST", 3, decimal.NewFromInt(50))
	require.NoError(t, err)

	snap := snapshotOf(map[string]float64{"QBIT": 100})
	assert.True(t, acct.TotalValue(snap).Equal(decimal.NewFromInt(350)),
		"a symbol missing from the snapshot contributes zero")
}

func TestNegativeStartingCashRejected(t *testing.T) {
	_, err := New("human", decimal.NewFromInt(-1))
	assert.Error(t, err)
}
