package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrSessionNotFound is returned when a session id has no stored record.
var ErrSessionNotFound = errors.New("session not found")

// RoundResult mirrors one round's outcome in storage-friendly form.
type RoundResult struct {
	Round      int             `json:"round"`
	HumanValue decimal.Decimal `json:"human_value"`
	AIValue    decimal.Decimal `json:"ai_value"`
	Winner     string          `json:"winner"`
}

// SessionRecord is the one-way record the orchestrator emits after a match
// completes.
type SessionRecord struct {
	SessionID       string          `json:"session_id"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     time.Time       `json:"completed_at"`
	DurationMs      int64           `json:"duration_ms"`
	MaxRounds       int             `json:"max_rounds"`
	RoundResults    []RoundResult   `json:"round_results"`
	FinalHumanScore decimal.Decimal `json:"final_human_score"`
	FinalAIScore    decimal.Decimal `json:"final_ai_score"`
	HumanWins       int             `json:"human_wins"`
	AIWins          int             `json:"ai_wins"`
	Winner          string          `json:"winner"`
	HumanWon        bool            `json:"human_won"`
	TotalTrades     int             `json:"total_trades"`
	// BestRound is the round where the human posted their highest final
	// value, 0 when no rounds were played.
	BestRound int `json:"best_round"`
}

// TradeEntry is one executed trade in the per-session journal.
type TradeEntry struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	Round      int             `json:"round"`
	Owner      string          `json:"owner"`
	Kind       string          `json:"kind"`
	Symbol     string          `json:"symbol"`
	Shares     int64           `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// Recorder persists finished sessions. Failures must be contained by the
// caller; recording never influences a match outcome.
type Recorder interface {
	Record(ctx context.Context, record SessionRecord) error
}

// Reader serves stored sessions back to the results surface.
type Reader interface {
	ListSessions(ctx context.Context, limit int) ([]SessionRecord, error)
	GetSession(ctx context.Context, id string) (SessionRecord, error)
}

// TradeJournal archives the append-only trade logs of finished turns.
type TradeJournal interface {
	AppendTrades(ctx context.Context, entries []TradeEntry) error
	ListTrades(ctx context.Context, sessionID string) ([]TradeEntry, error)
}
