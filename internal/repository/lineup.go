package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/domain"
)

type LineupRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewLineupRepository(sqlDB *sql.DB, logger zerolog.Logger) *LineupRepository {
	return &LineupRepository{db: sqlDB, logger: logger}
}

func (r *LineupRepository) WithTx(tx *sql.Tx) *LineupRepository {
	return &LineupRepository{db: tx, logger: r.logger}
}

// Replace swaps the tracked team's lineup for a game in one statement
// batch. The scoring core only ever reads lineups; this write path
// exists for game setup.
func (r *LineupRepository) Replace(ctx context.Context, gameID string, slots []domain.LineupSlot) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lineup_slots WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("failed to clear lineup: %w", err)
	}
	for _, slot := range slots {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO lineup_slots (game_id, player_id, batting_order, fielding_position, is_active)
			VALUES (?, ?, ?, ?, ?)`,
			gameID, slot.PlayerID, slot.BattingOrder, slot.FieldingPosition, slot.IsActive,
		)
		if err != nil {
			return fmt.Errorf("failed to insert lineup slot: %w", err)
		}
	}
	return nil
}

// GetActive returns the active batting order for a game, sorted by slot.
func (r *LineupRepository) GetActive(ctx context.Context, gameID string) ([]domain.LineupSlot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT game_id, player_id, batting_order, fielding_position, is_active
		FROM lineup_slots
		WHERE game_id = ? AND is_active = 1
		ORDER BY batting_order ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lineup: %w", err)
	}
	defer rows.Close()

	var slots []domain.LineupSlot
	for rows.Next() {
		var s domain.LineupSlot
		if err := rows.Scan(&s.GameID, &s.PlayerID, &s.BattingOrder, &s.FieldingPosition, &s.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan lineup slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
