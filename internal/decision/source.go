package decision

import (
	"tradebattle/internal/account"
	"tradebattle/internal/market"
)

// ActionKind enumerates what a decision source can propose.
type ActionKind string

const (
	ActionHold ActionKind = "hold"
	ActionBuy  ActionKind = "buy"
	ActionSell ActionKind = "sell"
)

// Action is one proposed trade (or a hold).
type Action struct {
	Kind   ActionKind
	Symbol string
	Shares int64
}

// Hold is the do-nothing action.
func Hold() Action { return Action{Kind: ActionHold} }

// IsTrade reports whether the action would move money.
func (a Action) IsTrade() bool {
	return a.Kind == ActionBuy || a.Kind == ActionSell
}

// Source produces trade proposals for one participant. Implementations must
// contain their own failures: a Source never returns an error, it returns
// Hold instead.
type Source interface {
	Propose(snap market.Snapshot, acct *account.Account) Action
}

// Policy is the pluggable brain behind the automated source. Policies may
// fail; the automated source downgrades any failure to Hold.
type Policy interface {
	Name() string
	Decide(snap market.Snapshot, acct *account.Account) (Action, error)
}
