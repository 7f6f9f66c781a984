package market

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Spec describes one tradable instrument at catalog load time.
type Spec struct {
	Symbol      string
	DisplayName string
	StartPrice  decimal.Decimal
}

// Instrument is one tradable symbol with its current simulated price.
// Prices are only ever mutated by Market.Tick.
type Instrument struct {
	Symbol      string          `json:"symbol"`
	DisplayName string          `json:"display_name"`
	Price       decimal.Decimal `json:"price"`
	LastChange  decimal.Decimal `json:"last_change"`
}

// Config controls the simulated price walk.
type Config struct {
	TickInterval time.Duration
	// MaxDriftPct bounds each tick's move: deltas are uniform in ±MaxDriftPct
	// of the current price (0.03 = ±3%).
	MaxDriftPct float64
	PriceFloor  decimal.Decimal
	// Seed fixes the price trajectory; 0 means seed from the clock.
	Seed int64
}

// Market owns an ordered set of instruments and advances their prices on a
// fixed tick. One Market lives exactly one turn; trajectories are never
// shared across turns or rounds.
type Market struct {
	instruments []Instrument
	index       map[string]int
	rng         *rand.Rand
	cfg         Config
}

func New(specs []Spec, cfg Config) (*Market, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("instrument catalog cannot be empty")
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("market tick interval must be positive, got %s", cfg.TickInterval)
	}
	if cfg.MaxDriftPct <= 0 || cfg.MaxDriftPct >= 1 {
		return nil, fmt.Errorf("market max drift must be in (0,1), got %v", cfg.MaxDriftPct)
	}
	if !cfg.PriceFloor.IsPositive() {
		return nil, fmt.Errorf("price floor must be positive, got %s", cfg.PriceFloor)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m := &Market{
		instruments: make([]Instrument, 0, len(specs)),
		index:       make(map[string]int, len(specs)),
		rng:         rand.New(rand.NewSource(seed)),
		cfg:         cfg,
	}
	for _, spec := range specs {
		sym := strings.ToUpper(strings.TrimSpace(spec.Symbol))
		if sym == "" {
			return nil, fmt.Errorf("instrument catalog contains an empty symbol")
		}
		if _, dup := m.index[sym]; dup {
			return nil, fmt.Errorf("duplicate symbol in catalog: %s", sym)
		}
		if !spec.StartPrice.IsPositive() {
			return nil, fmt.Errorf("instrument %s requires a positive start price, got %s", sym, spec.StartPrice)
		}
		m.index[sym] = len(m.instruments)
		m.instruments = append(m.instruments, Instrument{
			Symbol:      sym,
			DisplayName: spec.DisplayName,
			Price:       spec.StartPrice,
		})
	}
	return m, nil
}

// TickInterval is the configured price-update period.
func (m *Market) TickInterval() time.Duration {
	return m.cfg.TickInterval
}

// Tick advances every instrument by an independent draw uniform in
// ±MaxDriftPct of its current price, clamped at the floor, and returns the
// resulting snapshot.
func (m *Market) Tick() Snapshot {
	for i := range m.instruments {
		ins := &m.instruments[i]
		draw := (m.rng.Float64()*2 - 1) * m.cfg.MaxDriftPct
		delta := ins.Price.Mul(decimal.NewFromFloat(draw))
		next := ins.Price.Add(delta)
		if next.LessThan(m.cfg.PriceFloor) {
			next = m.cfg.PriceFloor
		}
		ins.LastChange = next.Sub(ins.Price)
		ins.Price = next
	}
	return m.Snapshot()
}

// Snapshot returns an immutable copy of the current instrument state.
// Callers never see the mutable originals.
func (m *Market) Snapshot() Snapshot {
	out := make([]Instrument, len(m.instruments))
	copy(out, m.instruments)
	return Snapshot{At: time.Now(), Instruments: out}
}

// Snapshot is a point-in-time copy of the market used for valuation and
// decision-making.
type Snapshot struct {
	At          time.Time
	Instruments []Instrument
}

// Price looks up an instrument's price by symbol.
func (s Snapshot) Price(symbol string) (decimal.Decimal, bool) {
	symbol = strings.ToUpper(symbol)
	for _, ins := range s.Instruments {
		if ins.Symbol == symbol {
			return ins.Price, true
		}
	}
	return decimal.Zero, false
}

// Symbols returns the snapshot's symbols in catalog order.
func (s Snapshot) Symbols() []string {
	out := make([]string, len(s.Instruments))
	for i, ins := range s.Instruments {
		out[i] = ins.Symbol
	}
	return out
}
