package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradebattle/internal/store"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Journal archives the per-turn trade logs into a standalone sqlite file,
// separate from the session store.
type Journal struct {
	db *sql.DB
}

func New(path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id          TEXT PRIMARY KEY,
			session_id  TEXT NOT NULL,
			round       INTEGER NOT NULL,
			owner       TEXT NOT NULL,
			kind        TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			shares      INTEGER NOT NULL,
			price       TEXT NOT NULL,
			executed_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_trades_session ON trades(session_id, round);`)
	return err
}

func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// AppendTrades writes a batch of executed trades. Entries are append-only;
// an id conflict means the batch was already archived and is skipped.
func (j *Journal) AppendTrades(ctx context.Context, entries []store.TradeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (id, session_id, round, owner, kind, symbol, shares, price, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.SessionID, e.Round, e.Owner, e.Kind, e.Symbol,
			e.Shares, e.Price.String(), e.ExecutedAt.UnixMilli()); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListTrades returns all archived trades for a session in execution order.
func (j *Journal) ListTrades(ctx context.Context, sessionID string) ([]store.TradeEntry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, round, owner, kind, symbol, shares, price, executed_at
		FROM trades WHERE session_id = ? ORDER BY executed_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.TradeEntry
	for rows.Next() {
		var e store.TradeEntry
		var price string
		var executedAt int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Round, &e.Owner, &e.Kind, &e.Symbol, &e.Shares, &price, &executedAt); err != nil {
			return nil, err
		}
		dec, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("trade %s has malformed price %q: %w", e.ID, price, err)
		}
		e.Price = dec
		e.ExecutedAt = time.UnixMilli(executedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
