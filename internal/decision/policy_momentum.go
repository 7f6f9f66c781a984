package decision

import (
	"fmt"

	"tradebattle/internal/account"
	"tradebattle/internal/market"

	talib "github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

// MomentumPolicy follows the trend of the prices it has observed: buy the
// symbol trading furthest above its moving average, sell a holding that has
// dropped below its own. It accumulates history from the snapshots it is
// shown, so early in a turn it simply holds.
type MomentumPolicy struct {
	period  int
	history map[string][]float64
	// MaxCashPerTrade caps how much of the balance a single buy may spend.
	MaxCashPerTrade float64
}

func NewMomentumPolicy(period int) *MomentumPolicy {
	if period < 2 {
		period = 5
	}
	return &MomentumPolicy{
		period:          period,
		history:         make(map[string][]float64),
		MaxCashPerTrade: 0.5,
	}
}

func (p *MomentumPolicy) Name() string { return "momentum" }

func (p *MomentumPolicy) Decide(snap market.Snapshot, acct *account.Account) (Action, error) {
	if len(snap.Instruments) == 0 {
		return Hold(), fmt.Errorf("empty market snapshot")
	}
	p.observe(snap)

	// Exit first: dump any holding trading below its moving average.
	for sym, held := range acct.Holdings() {
		avg, ok := p.sma(sym)
		if !ok {
			continue
		}
		price, found := snap.Price(sym)
		if found && price.LessThan(decimal.NewFromFloat(avg)) {
			return Action{Kind: ActionSell, Symbol: sym, Shares: held}, nil
		}
	}

	bestSym := ""
	bestEdge := 0.0
	var bestPrice decimal.Decimal
	for _, ins := range snap.Instruments {
		avg, ok := p.sma(ins.Symbol)
		if !ok || avg <= 0 {
			continue
		}
		cur, _ := ins.Price.Float64()
		edge := (cur - avg) / avg
		if edge > bestEdge {
			bestEdge = edge
			bestSym = ins.Symbol
			bestPrice = ins.Price
		}
	}
	if bestSym == "" {
		return Hold(), nil
	}
	budget := acct.Cash().Mul(decimal.NewFromFloat(p.MaxCashPerTrade))
	shares := budget.Div(bestPrice).IntPart()
	if shares <= 0 {
		return Hold(), nil
	}
	return Action{Kind: ActionBuy, Symbol: bestSym, Shares: shares}, nil
}

func (p *MomentumPolicy) observe(snap market.Snapshot) {
	keep := p.period * 3
	for _, ins := range snap.Instruments {
		cur, _ := ins.Price.Float64()
		hist := append(p.history[ins.Symbol], cur)
		if len(hist) > keep {
			hist = hist[len(hist)-keep:]
		}
		p.history[ins.Symbol] = hist
	}
}

func (p *MomentumPolicy) sma(symbol string) (float64, bool) {
	hist := p.history[symbol]
	if len(hist) < p.period {
		return 0, false
	}
	out := talib.Sma(hist, p.period)
	if len(out) == 0 {
		return 0, false
	}
	return out[len(out)-1], true
}
