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

type RunnerRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewRunnerRepository(sqlDB *sql.DB, logger zerolog.Logger) *RunnerRepository {
	return &RunnerRepository{db: sqlDB, logger: logger}
}

func (r *RunnerRepository) WithTx(tx *sql.Tx) *RunnerRepository {
	return &RunnerRepository{db: tx, logger: r.logger}
}

const runnerColumns = `id, game_id, inning, player_id, event_id, base, is_active, created_at, updated_at`

func (r *RunnerRepository) Insert(ctx context.Context, runner *domain.Runner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runners (`+runnerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runner.ID, runner.GameID, runner.Inning, runner.PlayerID, runner.EventID,
		runner.Base, runner.IsActive, runner.CreatedAt, runner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert runner: %w", err)
	}
	return nil
}

func (r *RunnerRepository) Get(ctx context.Context, id string) (*domain.Runner, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runnerColumns+` FROM runners WHERE id = ?`, id)

	var runner domain.Runner
	err := row.Scan(
		&runner.ID, &runner.GameID, &runner.Inning, &runner.PlayerID, &runner.EventID,
		&runner.Base, &runner.IsActive, &runner.CreatedAt, &runner.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("runner", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get runner: %w", err)
	}
	return &runner, nil
}

// ListActive returns the active runners for a (game, inning) scope in
// most-recently-updated order, so duplicate cleanup can keep the head row.
func (r *RunnerRepository) ListActive(ctx context.Context, gameID string, inning int) ([]domain.Runner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+runnerColumns+` FROM runners
		WHERE game_id = ? AND inning = ? AND is_active = 1
		ORDER BY updated_at DESC, id DESC`, gameID, inning)
	if err != nil {
		return nil, fmt.Errorf("failed to query active runners: %w", err)
	}
	defer rows.Close()

	var runners []domain.Runner
	for rows.Next() {
		var runner domain.Runner
		err := rows.Scan(
			&runner.ID, &runner.GameID, &runner.Inning, &runner.PlayerID, &runner.EventID,
			&runner.Base, &runner.IsActive, &runner.CreatedAt, &runner.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan runner: %w", err)
		}
		runners = append(runners, runner)
	}
	return runners, rows.Err()
}

func (r *RunnerRepository) UpdateBase(ctx context.Context, id string, base int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runners SET base = ?, updated_at = ? WHERE id = ?`,
		base, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update runner base: %w", err)
	}
	return nil
}

// Deactivate retires a runner, either scored (base 4) or put out.
func (r *RunnerRepository) Deactivate(ctx context.Context, id string, base int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runners SET is_active = 0, base = ?, updated_at = ? WHERE id = ?`,
		base, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate runner: %w", err)
	}
	return nil
}

// DeactivateAll clears the bases for a (game, inning) scope at the end
// of a half-inning.
func (r *RunnerRepository) DeactivateAll(ctx context.Context, gameID string, inning int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runners SET is_active = 0, updated_at = ? WHERE game_id = ? AND inning = ? AND is_active = 1`,
		time.Now(), gameID, inning,
	)
	if err != nil {
		return fmt.Errorf("failed to clear runners: %w", err)
	}
	return nil
}

// DeleteByEvent removes the runner row an at-bat event placed, used
// when the event itself is deleted.
func (r *RunnerRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM runners WHERE event_id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete runner by event: %w", err)
	}
	return nil
}

// Delete removes a runner row outright; only duplicate cleanup uses it.
func (r *RunnerRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM runners WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete runner: %w", err)
	}
	return nil
}
