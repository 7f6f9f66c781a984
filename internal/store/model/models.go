package model

import (
	"gorm.io/datatypes"
)

// BattleSessionModel is the persisted form of a finished match.
type BattleSessionModel struct {
	ID              string         `gorm:"column:id;primaryKey"`
	StartedAtUnix   int64          `gorm:"column:started_at"`
	CompletedAtUnix int64          `gorm:"column:completed_at"`
	DurationMs      int64          `gorm:"column:duration_ms"`
	MaxRounds       int            `gorm:"column:max_rounds"`
	RoundsPlayed    int            `gorm:"column:rounds_played"`
	HumanWins       int            `gorm:"column:human_wins"`
	AIWins          int            `gorm:"column:ai_wins"`
	FinalHumanScore string         `gorm:"column:final_human_score"`
	FinalAIScore    string         `gorm:"column:final_ai_score"`
	Winner          string         `gorm:"column:winner"`
	HumanWon        bool           `gorm:"column:human_won"`
	TotalTrades     int            `gorm:"column:total_trades"`
	BestRound       int            `gorm:"column:best_round"`
	ResultsJSON     datatypes.JSON `gorm:"column:results_json;type:TEXT"`
	CreatedAtUnix   int64          `gorm:"column:created_at"`
}

func (BattleSessionModel) TableName() string { return "battle_sessions" }
