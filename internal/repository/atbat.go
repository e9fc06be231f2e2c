package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/domain"
)

type AtBatEventRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewAtBatEventRepository(sqlDB *sql.DB, logger zerolog.Logger) *AtBatEventRepository {
	return &AtBatEventRepository{db: sqlDB, logger: logger}
}

func (r *AtBatEventRepository) WithTx(tx *sql.Tx) *AtBatEventRepository {
	return &AtBatEventRepository{db: tx, logger: r.logger}
}

const atBatColumns = `id, game_id, inning, half, batter_id, result, base_reached, rbi,
	run_scored, stolen_base, extra_out_runner_ids, fielding_position, notes, created_at, updated_at`

func (r *AtBatEventRepository) Insert(ctx context.Context, e *domain.AtBatEvent) error {
	extraOuts, err := json.Marshal(e.ExtraOutRunnerIDs)
	if err != nil {
		return fmt.Errorf("failed to encode extra out runner ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO at_bat_events (`+atBatColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GameID, e.Inning, e.Half, e.BatterID, e.Result, e.BaseReached, e.RBI,
		e.RunScored, e.StolenBase, string(extraOuts), e.FieldingPosition, e.Notes, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert at-bat event: %w", err)
	}
	return nil
}

func (r *AtBatEventRepository) Update(ctx context.Context, e *domain.AtBatEvent) error {
	extraOuts, err := json.Marshal(e.ExtraOutRunnerIDs)
	if err != nil {
		return fmt.Errorf("failed to encode extra out runner ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE at_bat_events
		SET result = ?, base_reached = ?, rbi = ?, run_scored = ?, stolen_base = ?,
			extra_out_runner_ids = ?, fielding_position = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		e.Result, e.BaseReached, e.RBI, e.RunScored, e.StolenBase,
		string(extraOuts), e.FieldingPosition, e.Notes, time.Now(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update at-bat event: %w", err)
	}
	return nil
}

func (r *AtBatEventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM at_bat_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete at-bat event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("at-bat event", id)
	}
	return nil
}

func (r *AtBatEventRepository) Get(ctx context.Context, id string) (*domain.AtBatEvent, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+atBatColumns+` FROM at_bat_events WHERE id = ?`, id)
	e, err := scanAtBat(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("at-bat event", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get at-bat event: %w", err)
	}
	return e, nil
}

// ListByHalfInning returns a half-inning's events in creation order,
// which is the order the plate appearances happened.
func (r *AtBatEventRepository) ListByHalfInning(ctx context.Context, gameID string, inning int, half domain.Half) ([]domain.AtBatEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+atBatColumns+` FROM at_bat_events
		WHERE game_id = ? AND inning = ? AND half = ?
		ORDER BY created_at ASC, id ASC`, gameID, inning, half)
	if err != nil {
		return nil, fmt.Errorf("failed to query half-inning events: %w", err)
	}
	return collectAtBats(rows)
}

func (r *AtBatEventRepository) ListByGame(ctx context.Context, gameID string) ([]domain.AtBatEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+atBatColumns+` FROM at_bat_events
		WHERE game_id = ?
		ORDER BY inning ASC, half ASC, created_at ASC, id ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query game events: %w", err)
	}
	return collectAtBats(rows)
}

// SetRunScored retroactively marks the event of a runner who crossed home.
func (r *AtBatEventRepository) SetRunScored(ctx context.Context, id string, scored bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE at_bat_events SET run_scored = ?, updated_at = ? WHERE id = ?`,
		scored, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set run scored: %w", err)
	}
	return nil
}

func (r *AtBatEventRepository) SetStolenBase(ctx context.Context, id string, stolen bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE at_bat_events SET stolen_base = ?, updated_at = ? WHERE id = ?`,
		stolen, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set stolen base: %w", err)
	}
	return nil
}

func collectAtBats(rows *sql.Rows) ([]domain.AtBatEvent, error) {
	defer rows.Close()
	var events []domain.AtBatEvent
	for rows.Next() {
		e, err := scanAtBat(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan at-bat event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func scanAtBat(scan func(...any) error) (*domain.AtBatEvent, error) {
	var e domain.AtBatEvent
	var extraOuts string
	err := scan(
		&e.ID, &e.GameID, &e.Inning, &e.Half, &e.BatterID, &e.Result, &e.BaseReached, &e.RBI,
		&e.RunScored, &e.StolenBase, &extraOuts, &e.FieldingPosition, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(extraOuts), &e.ExtraOutRunnerIDs); err != nil {
		return nil, fmt.Errorf("failed to decode extra out runner ids: %w", err)
	}
	return &e, nil
}
