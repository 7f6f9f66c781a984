package battle

import (
	"time"

	"github.com/shopspring/decimal"
)

// Phase is one state of the battle state machine.
type Phase string

const (
	PhaseSetup         Phase = "setup"
	PhaseHumanTurn     Phase = "human_turn"
	PhaseTransition    Phase = "transition"
	PhaseAITurn        Phase = "ai_turn"
	PhaseRoundResolved Phase = "round_resolved"
	PhaseMatchComplete Phase = "match_complete"
)

// Winner identifies which side took a round or the match.
type Winner string

const (
	WinnerHuman Winner = "human"
	WinnerAI    Winner = "ai"
	WinnerTie   Winner = "tie"
)

// RoundResult is the immutable outcome of one completed round.
type RoundResult struct {
	Round      int             `json:"round"`
	HumanValue decimal.Decimal `json:"human_value"`
	AIValue    decimal.Decimal `json:"ai_value"`
	Winner     Winner          `json:"winner"`
}

// resolveRound scores one round: strictly higher final value wins, equal
// values are a tie.
func resolveRound(round int, humanValue, aiValue decimal.Decimal) RoundResult {
	res := RoundResult{Round: round, HumanValue: humanValue, AIValue: aiValue}
	switch humanValue.Cmp(aiValue) {
	case 1:
		res.Winner = WinnerHuman
	case -1:
		res.Winner = WinnerAI
	default:
		res.Winner = WinnerTie
	}
	return res
}

// Session is the aggregate the orchestrator owns exclusively: round cursor,
// phase, win tallies and the accumulated results.
type Session struct {
	ID           string
	CurrentRound int
	Phase        Phase
	HumanWins    int
	AIWins       int
	Results      []RoundResult
	StartedAt    time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, CurrentRound: 1, Phase: PhaseSetup, StartedAt: now}
}

// record appends a round result and updates the win tallies.
func (s *Session) record(res RoundResult) {
	s.Results = append(s.Results, res)
	switch res.Winner {
	case WinnerHuman:
		s.HumanWins++
	case WinnerAI:
		s.AIWins++
	}
}

// majorityWins is the early-termination threshold: ceil(maxRounds/2).
func majorityWins(maxRounds int) int {
	return (maxRounds + 1) / 2
}

// terminal reports whether the match is over: all rounds played, or either
// side already holds a majority.
func (s *Session) terminal(maxRounds int) bool {
	majority := majorityWins(maxRounds)
	return s.HumanWins >= majority || s.AIWins >= majority || len(s.Results) >= maxRounds
}

// overallWinner compares win tallies. Equal counts after all rounds is a
// legitimate tie; it is never forced to one side.
func (s *Session) overallWinner() Winner {
	switch {
	case s.HumanWins > s.AIWins:
		return WinnerHuman
	case s.AIWins > s.HumanWins:
		return WinnerAI
	default:
		return WinnerTie
	}
}
