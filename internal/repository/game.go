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

type GameRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewGameRepository(sqlDB *sql.DB, logger zerolog.Logger) *GameRepository {
	return &GameRepository{db: sqlDB, logger: logger}
}

func (r *GameRepository) WithTx(tx *sql.Tx) *GameRepository {
	return &GameRepository{db: tx, logger: r.logger}
}

const gameColumns = `id, opponent_name, status, team_score, opponent_score, bat_first,
	max_innings, current_inning, current_half, scorer_token, created_at, updated_at`

func (r *GameRepository) Create(ctx context.Context, g *domain.Game) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO games (`+gameColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OpponentName, g.Status, g.TeamScore, g.OpponentScore, g.BatFirst,
		g.MaxInnings, g.CurrentInning, g.CurrentHalf, g.ScorerToken, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return nil
}

func (r *GameRepository) Get(ctx context.Context, id string) (*domain.Game, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)

	var g domain.Game
	err := row.Scan(
		&g.ID, &g.OpponentName, &g.Status, &g.TeamScore, &g.OpponentScore, &g.BatFirst,
		&g.MaxInnings, &g.CurrentInning, &g.CurrentHalf, &g.ScorerToken, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("game", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &g, nil
}

func (r *GameRepository) UpdateStatus(ctx context.Context, id string, status domain.GameStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}
	return nil
}

func (r *GameRepository) UpdateScore(ctx context.Context, id string, team, opponent int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET team_score = ?, opponent_score = ?, updated_at = ? WHERE id = ?`,
		team, opponent, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update game score: %w", err)
	}
	return nil
}

// UpdateProgress moves the game's active half-inning pointer.
func (r *GameRepository) UpdateProgress(ctx context.Context, id string, inning int, half domain.Half) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET current_inning = ?, current_half = ?, updated_at = ? WHERE id = ?`,
		inning, half, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update game progress: %w", err)
	}
	return nil
}

func (r *GameRepository) UpdateMaxInnings(ctx context.Context, id string, maxInnings int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET max_innings = ?, updated_at = ? WHERE id = ?`,
		maxInnings, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update max innings: %w", err)
	}
	return nil
}
