package account

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"tradebattle/internal/logger"
	"tradebattle/internal/market"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds rejects a buy whose cost exceeds available cash.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientHoldings rejects a sell of more shares than are held.
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// TradeKind distinguishes the two trade directions.
type TradeKind string

const (
	TradeBuy  TradeKind = "buy"
	TradeSell TradeKind = "sell"
)

// Trade is one executed order. Trades are append-only and never mutated.
type Trade struct {
	ID        string          `json:"id"`
	Kind      TradeKind       `json:"kind"`
	Symbol    string          `json:"symbol"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// Account holds one participant's cash and share positions for a single
// round. Cash and per-symbol share counts never go negative; the holdings
// map never stores a zero entry.
type Account struct {
	owner    string
	cash     decimal.Decimal
	holdings map[string]int64
	trades   []Trade
	nowFn    func() time.Time
}

func New(owner string, startingCash decimal.Decimal) (*Account, error) {
	if startingCash.IsNegative() {
		return nil, fmt.Errorf("starting cash cannot be negative, got %s", startingCash)
	}
	return &Account{
		owner:    owner,
		cash:     startingCash,
		holdings: make(map[string]int64),
		nowFn:    time.Now,
	}, nil
}

// Owner identifies the participant this account belongs to.
func (a *Account) Owner() string { return a.owner }

// Cash returns the current cash balance.
func (a *Account) Cash() decimal.Decimal { return a.cash }

// Shares returns the held share count for symbol (0 when none).
func (a *Account) Shares(symbol string) int64 { return a.holdings[symbol] }

// Holdings returns a copy of the positions map.
func (a *Account) Holdings() map[string]int64 {
	out := make(map[string]int64, len(a.holdings))
	for sym, n := range a.holdings {
		out[sym] = n
	}
	return out
}

// Trades returns a copy of the append-only trade log.
func (a *Account) Trades() []Trade {
	out := make([]Trade, len(a.trades))
	copy(out, a.trades)
	return out
}

// Buy debits cash and credits holdings atomically, or changes nothing.
func (a *Account) Buy(symbol string, shares int64, unitPrice decimal.Decimal) (Trade, error) {
	if shares <= 0 {
		return Trade{}, fmt.Errorf("buy %s: share count must be positive, got %d", symbol, shares)
	}
	if !unitPrice.IsPositive() {
		return Trade{}, fmt.Errorf("buy %s: unit price must be positive, got %s", symbol, unitPrice)
	}
	cost := unitPrice.Mul(decimal.NewFromInt(shares))
	if a.cash.LessThan(cost) {
		return Trade{}, fmt.Errorf("buy %d %s at %s needs %s, have %s: %w",
			shares, symbol, unitPrice, cost, a.cash, ErrInsufficientFunds)
	}
	a.cash = a.cash.Sub(cost)
	a.holdings[symbol] += shares
	return a.append(TradeBuy, symbol, shares, unitPrice), nil
}

// Sell credits cash and debits holdings, removing the position entirely when
// it reaches zero.
func (a *Account) Sell(symbol string, shares int64, unitPrice decimal.Decimal) (Trade, error) {
	if shares <= 0 {
		return Trade{}, fmt.Errorf("sell %s: share count must be positive, got %d", symbol, shares)
	}
	if !unitPrice.IsPositive() {
		return Trade{}, fmt.Errorf("sell %s: unit price must be positive, got %s", symbol, unitPrice)
	}
	held := a.holdings[symbol]
	if held < shares {
		return Trade{}, fmt.Errorf("sell %d %s but only %d held: %w",
			shares, symbol, held, ErrInsufficientHoldings)
	}
	a.cash = a.cash.Add(unitPrice.Mul(decimal.NewFromInt(shares)))
	if held == shares {
		delete(a.holdings, symbol)
	} else {
		a.holdings[symbol] = held - shares
	}
	return a.append(TradeSell, symbol, shares, unitPrice), nil
}

// TotalValue is cash plus the mark-to-market value of all holdings. A symbol
// missing from the snapshot contributes zero; that indicates a stale
// snapshot, so it is logged as an anomaly rather than treated as an error.
func (a *Account) TotalValue(snap market.Snapshot) decimal.Decimal {
	total := a.cash
	for _, sym := range a.sortedSymbols() {
		price, ok := snap.Price(sym)
		if !ok {
			logger.Warnf("account %s holds %d %s but the symbol is missing from the market snapshot", a.owner, a.holdings[sym], sym)
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(a.holdings[sym])))
	}
	return total
}

func (a *Account) append(kind TradeKind, symbol string, shares int64, price decimal.Decimal) Trade {
	trade := Trade{
		ID:        uuid.NewString(),
		Kind:      kind,
		Symbol:    symbol,
		Shares:    shares,
		Price:     price,
		Timestamp: a.nowFn(),
	}
	a.trades = append(a.trades, trade)
	return trade
}

func (a *Account) sortedSymbols() []string {
	syms := make([]string, 0, len(a.holdings))
	for sym := range a.holdings {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}
