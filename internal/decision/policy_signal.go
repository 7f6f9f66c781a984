package decision

import (
	"fmt"
	"os"
	"strings"

	"tradebattle/internal/account"
	"tradebattle/internal/market"

	"github.com/tidwall/gjson"
)

// SignalFilePolicy trades on an externally maintained signal feed: a JSON
// file of `{"signals":[{"symbol":"...","action":"buy|sell","shares":N}]}`
// entries. Each Decide consumes the first actionable signal whose symbol is
// present in the snapshot. Read or parse failures surface as errors so the
// automated source downgrades them to Hold.
type SignalFilePolicy struct {
	path     string
	consumed int
}

func NewSignalFilePolicy(path string) (*SignalFilePolicy, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("signal policy requires a feed path")
	}
	return &SignalFilePolicy{path: path}, nil
}

func (p *SignalFilePolicy) Name() string { return "signal-file" }

func (p *SignalFilePolicy) Decide(snap market.Snapshot, acct *account.Account) (Action, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return Hold(), fmt.Errorf("reading signal feed: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return Hold(), fmt.Errorf("signal feed %s is not valid JSON", p.path)
	}
	signals := gjson.GetBytes(data, "signals")
	if !signals.IsArray() {
		return Hold(), fmt.Errorf("signal feed %s has no signals array", p.path)
	}
	entries := signals.Array()
	for ; p.consumed < len(entries); p.consumed++ {
		entry := entries[p.consumed]
		symbol := strings.ToUpper(entry.Get("symbol").String())
		shares := entry.Get("shares").Int()
		if symbol == "" || shares <= 0 {
			continue
		}
		if _, known := snap.Price(symbol); !known {
			continue
		}
		switch strings.ToLower(entry.Get("action").String()) {
		case "buy":
			p.consumed++
			return Action{Kind: ActionBuy, Symbol: symbol, Shares: shares}, nil
		case "sell":
			if acct.Shares(symbol) <= 0 {
				continue
			}
			if held := acct.Shares(symbol); shares > held {
				shares = held
			}
			p.consumed++
			return Action{Kind: ActionSell, Symbol: symbol, Shares: shares}, nil
		}
	}
	return Hold(), nil
}
