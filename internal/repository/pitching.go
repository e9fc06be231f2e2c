package repository

import (
	"context"
	"database/sql"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/domain"
)

type PitchingLineRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewPitchingLineRepository(sqlDB *sql.DB, logger zerolog.Logger) *PitchingLineRepository {
	return &PitchingLineRepository{db: sqlDB, logger: logger}
}

func (r *PitchingLineRepository) WithTx(tx *sql.Tx) *PitchingLineRepository {
	return &PitchingLineRepository{db: tx, logger: r.logger}
}

func (r *PitchingLineRepository) Upsert(ctx context.Context, line *domain.PitchingLine) error {
	if line.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		line.ID = id
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pitching_lines (id, game_id, player_id, outs_recorded, hits_allowed,
			walks_allowed, runs_allowed, earned_runs, strikeouts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id, player_id) DO UPDATE SET
			outs_recorded = excluded.outs_recorded,
			hits_allowed = excluded.hits_allowed,
			walks_allowed = excluded.walks_allowed,
			runs_allowed = excluded.runs_allowed,
			earned_runs = excluded.earned_runs,
			strikeouts = excluded.strikeouts,
			updated_at = excluded.updated_at`,
		line.ID, line.GameID, line.PlayerID, line.OutsRecorded, line.HitsAllowed,
		line.WalksAllowed, line.RunsAllowed, line.EarnedRuns, line.Strikeouts,
		line.CreatedAt, line.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pitching line: %w", err)
	}
	return nil
}

func (r *PitchingLineRepository) ListByGame(ctx context.Context, gameID string) ([]domain.PitchingLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, game_id, player_id, outs_recorded, hits_allowed, walks_allowed,
			runs_allowed, earned_runs, strikeouts, created_at, updated_at
		FROM pitching_lines
		WHERE game_id = ?
		ORDER BY created_at ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pitching lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.PitchingLine
	for rows.Next() {
		var line domain.PitchingLine
		err := rows.Scan(
			&line.ID, &line.GameID, &line.PlayerID, &line.OutsRecorded, &line.HitsAllowed,
			&line.WalksAllowed, &line.RunsAllowed, &line.EarnedRuns, &line.Strikeouts,
			&line.CreatedAt, &line.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pitching line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
