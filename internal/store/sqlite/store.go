package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradebattle/internal/store"
	"tradebattle/internal/store/model"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteStore persists finished battle sessions. It implements both
// store.Recorder and store.Reader.
type SqliteStore struct {
	db *gorm.DB
}

func NewSqliteStore(path string) (*SqliteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return newSqliteStore(db)
}

func NewSqliteStoreFromDB(db *gorm.DB) (*SqliteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	return newSqliteStore(db)
}

func newSqliteStore(db *gorm.DB) (*SqliteStore, error) {
	if err := db.AutoMigrate(&model.BattleSessionModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record writes one finished session.
func (s *SqliteStore) Record(ctx context.Context, record store.SessionRecord) error {
	resultsJSON, err := json.Marshal(record.RoundResults)
	if err != nil {
		return fmt.Errorf("encoding round results: %w", err)
	}
	row := model.BattleSessionModel{
		ID:              record.SessionID,
		StartedAtUnix:   record.StartedAt.UnixMilli(),
		CompletedAtUnix: record.CompletedAt.UnixMilli(),
		DurationMs:      record.DurationMs,
		MaxRounds:       record.MaxRounds,
		RoundsPlayed:    len(record.RoundResults),
		HumanWins:       record.HumanWins,
		AIWins:          record.AIWins,
		FinalHumanScore: record.FinalHumanScore.String(),
		FinalAIScore:    record.FinalAIScore.String(),
		Winner:          record.Winner,
		HumanWon:        record.HumanWon,
		TotalTrades:     record.TotalTrades,
		BestRound:       record.BestRound,
		ResultsJSON:     resultsJSON,
		CreatedAtUnix:   time.Now().UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// ListSessions returns the most recently completed sessions.
func (s *SqliteStore) ListSessions(ctx context.Context, limit int) ([]store.SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []model.BattleSessionModel
	err := s.db.WithContext(ctx).
		Order("completed_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]store.SessionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetSession fetches one session by id.
func (s *SqliteStore) GetSession(ctx context.Context, id string) (store.SessionRecord, error) {
	var row model.BattleSessionModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.SessionRecord{}, store.ErrSessionNotFound
	}
	if err != nil {
		return store.SessionRecord{}, err
	}
	return toRecord(row)
}

func toRecord(row model.BattleSessionModel) (store.SessionRecord, error) {
	var results []store.RoundResult
	if len(row.ResultsJSON) > 0 {
		if err := json.Unmarshal(row.ResultsJSON, &results); err != nil {
			return store.SessionRecord{}, fmt.Errorf("decoding round results for session %s: %w", row.ID, err)
		}
	}
	humanScore, err := decimal.NewFromString(row.FinalHumanScore)
	if err != nil {
		humanScore = decimal.Zero
	}
	aiScore, err := decimal.NewFromString(row.FinalAIScore)
	if err != nil {
		aiScore = decimal.Zero
	}
	return store.SessionRecord{
		SessionID:       row.ID,
		StartedAt:       time.UnixMilli(row.StartedAtUnix),
		CompletedAt:     time.UnixMilli(row.CompletedAtUnix),
		DurationMs:      row.DurationMs,
		MaxRounds:       row.MaxRounds,
		RoundResults:    results,
		FinalHumanScore: humanScore,
		FinalAIScore:    aiScore,
		HumanWins:       row.HumanWins,
		AIWins:          row.AIWins,
		Winner:          row.Winner,
		HumanWon:        row.HumanWon,
		TotalTrades:     row.TotalTrades,
		BestRound:       row.BestRound,
	}, nil
}
