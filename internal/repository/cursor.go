package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/domain"
)

// CursorRepository persists the per-(game, half) batting-order cursor.
// The cursor is advanced in the same transaction as each committed event
// so "next batter" never has to be inferred by scanning event history.
type CursorRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewCursorRepository(sqlDB *sql.DB, logger zerolog.Logger) *CursorRepository {
	return &CursorRepository{db: sqlDB, logger: logger}
}

func (r *CursorRepository) WithTx(tx *sql.Tx) *CursorRepository {
	return &CursorRepository{db: tx, logger: r.logger}
}

// Get returns the next batting-order slot for the scope, 0 when the
// half has not batted yet.
func (r *CursorRepository) Get(ctx context.Context, gameID string, half domain.Half) (int, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT next_slot FROM batting_cursors WHERE game_id = ? AND half = ?`, gameID, half)

	var slot int
	err := row.Scan(&slot)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get batting cursor: %w", err)
	}
	return slot, nil
}

func (r *CursorRepository) Set(ctx context.Context, gameID string, half domain.Half, nextSlot int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO batting_cursors (game_id, half, next_slot, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (game_id, half) DO UPDATE SET next_slot = excluded.next_slot, updated_at = excluded.updated_at`,
		gameID, half, nextSlot, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set batting cursor: %w", err)
	}
	return nil
}
