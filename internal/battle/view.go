package battle

import (
	"tradebattle/internal/account"
	"tradebattle/internal/market"

	"github.com/shopspring/decimal"
)

// ParticipantView summarizes one side's account for the state surface.
type ParticipantView struct {
	Cash     decimal.Decimal  `json:"cash"`
	Holdings map[string]int64 `json:"holdings"`
	Value    decimal.Decimal  `json:"value"`
	Trades   int              `json:"trades"`
}

// StateView is a point-in-time copy of the match handed to callers; nothing
// in it aliases orchestrator-owned state.
type StateView struct {
	SessionID          string              `json:"session_id"`
	Phase              Phase               `json:"phase"`
	Round              int                 `json:"round"`
	MaxRounds          int                 `json:"max_rounds"`
	HumanWins          int                 `json:"human_wins"`
	AIWins             int                 `json:"ai_wins"`
	CountdownRemaining int                 `json:"countdown_remaining"`
	Instruments        []market.Instrument `json:"instruments"`
	Human              ParticipantView     `json:"human"`
	AI                 ParticipantView     `json:"ai"`
	Results            []RoundResult       `json:"results"`
	Winner             Winner              `json:"winner,omitempty"`
}

func (o *Orchestrator) stateView() StateView {
	view := StateView{
		SessionID:          o.session.ID,
		Phase:              o.session.Phase,
		Round:              o.session.CurrentRound,
		MaxRounds:          o.cfg.MaxRounds,
		HumanWins:          o.session.HumanWins,
		AIWins:             o.session.AIWins,
		CountdownRemaining: o.remaining,
		Results:            append([]RoundResult(nil), o.session.Results...),
	}
	if o.session.Phase == PhaseMatchComplete {
		view.Winner = o.session.overallWinner()
	}
	var snap market.Snapshot
	if o.mkt != nil {
		snap = o.mkt.Snapshot()
		view.Instruments = snap.Instruments
	}
	if o.humanAcct != nil {
		view.Human = participantView(o.humanAcct, snap)
		if o.humanFrozen {
			view.Human.Value = o.humanFinal
		}
	}
	if o.aiAcct != nil {
		view.AI = participantView(o.aiAcct, snap)
	}
	return view
}

func participantView(acct *account.Account, snap market.Snapshot) ParticipantView {
	return ParticipantView{
		Cash:     acct.Cash(),
		Holdings: acct.Holdings(),
		Value:    acct.TotalValue(snap),
		Trades:   len(acct.Trades()),
	}
}
