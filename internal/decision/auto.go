package decision

import (
	"tradebattle/internal/account"
	"tradebattle/internal/logger"
	"tradebattle/internal/market"
)

// AutoSource adapts a Policy to the Source contract. Policy failures are
// logged and downgraded to Hold; they never reach the orchestrator.
type AutoSource struct {
	policy Policy
}

func NewAutoSource(policy Policy) *AutoSource {
	if policy == nil {
		policy = NewRandomPolicy(0)
	}
	return &AutoSource{policy: policy}
}

// PolicyName identifies the wrapped policy.
func (s *AutoSource) PolicyName() string { return s.policy.Name() }

func (s *AutoSource) Propose(snap market.Snapshot, acct *account.Account) Action {
	action, err := s.policy.Decide(snap, acct)
	if err != nil {
		logger.Warnf("policy %s failed, holding: %v", s.policy.Name(), err)
		return Hold()
	}
	if action.IsTrade() && action.Shares <= 0 {
		logger.Warnf("policy %s proposed %s %s with non-positive shares, holding", s.policy.Name(), action.Kind, action.Symbol)
		return Hold()
	}
	return action
}
