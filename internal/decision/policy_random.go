package decision

import (
	"fmt"
	"math/rand"
	"time"

	"tradebattle/internal/account"
	"tradebattle/internal/market"

	"github.com/shopspring/decimal"
)

// RandomPolicy is the default automated policy: pick a random instrument and
// a random affordable share count, occasionally selling an open position
// instead.
type RandomPolicy struct {
	rng *rand.Rand
	// MaxCashPerTrade caps how much of the balance a single buy may spend
	// (0..1, default 0.5).
	MaxCashPerTrade float64
}

func NewRandomPolicy(seed int64) *RandomPolicy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed)), MaxCashPerTrade: 0.5}
}

func (p *RandomPolicy) Name() string { return "random" }

func (p *RandomPolicy) Decide(snap market.Snapshot, acct *account.Account) (Action, error) {
	if len(snap.Instruments) == 0 {
		return Hold(), fmt.Errorf("empty market snapshot")
	}

	// Roughly one in three decisions tries to take profit on a held symbol.
	holdings := acct.Holdings()
	if len(holdings) > 0 && p.rng.Intn(3) == 0 {
		for sym, held := range holdings {
			shares := 1 + p.rng.Int63n(held)
			return Action{Kind: ActionSell, Symbol: sym, Shares: shares}, nil
		}
	}

	ins := snap.Instruments[p.rng.Intn(len(snap.Instruments))]
	budget := acct.Cash().Mul(decimal.NewFromFloat(p.MaxCashPerTrade))
	if !ins.Price.IsPositive() {
		return Hold(), fmt.Errorf("instrument %s has non-positive price %s", ins.Symbol, ins.Price)
	}
	affordable := budget.Div(ins.Price).IntPart()
	if affordable <= 0 {
		return Hold(), nil
	}
	shares := 1 + p.rng.Int63n(affordable)
	return Action{Kind: ActionBuy, Symbol: ins.Symbol, Shares: shares}, nil
}
