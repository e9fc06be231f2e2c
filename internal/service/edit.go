package service

import (
	"context"
	"fmt"

	"sandlot-scorebook/internal/constants"
	"sandlot-scorebook/internal/domain"
	"sandlot-scorebook/internal/pubsub"
	"sandlot-scorebook/internal/scoring"
)

// EventPatch carries the editable fields of a plate appearance. Nil
// means leave unchanged.
type EventPatch struct {
	Result           *domain.ResultCategory `json:"result,omitempty"`
	BaseReached      *int                   `json:"base_reached,omitempty"`
	RBI              *int                   `json:"rbi,omitempty"`
	Notes            *string                `json:"notes,omitempty"`
	FieldingPosition *string                `json:"fielding_position,omitempty"`
	ScorerToken      string                 `json:"scorer_token,omitempty"`
}

// Edit updates an event while its half-inning is still unlocked. Edits
// adjust the record and the recomputed aggregates; they do not replay
// runner advancement, which stays the operator's job via manual moves.
func (s *PlateAppearanceService) Edit(ctx context.Context, eventID string, patch EventPatch) (*CommitResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	event, game, err := s.loadUnlocked(ctx, eventID, patch.ScorerToken)
	if err != nil {
		return nil, err
	}

	if patch.Result != nil {
		if !patch.Result.Valid() {
			return nil, domain.Validationf("unknown result category %q", *patch.Result)
		}
		event.Result = *patch.Result
		event.BaseReached = patch.Result.DefaultBaseReached()
	}
	if patch.BaseReached != nil {
		event.BaseReached = *patch.BaseReached
	}
	if event.Result.IsOnBase() {
		if event.BaseReached < 1 || event.BaseReached > scoring.Scored {
			return nil, domain.Validationf("result %q requires base-reached between 1 and 4", event.Result)
		}
	} else if event.BaseReached != 0 {
		return nil, domain.Validationf("result %q implies base-reached 0, got %d", event.Result, event.BaseReached)
	}
	if patch.RBI != nil {
		if *patch.RBI < 0 || *patch.RBI > constants.MaxRBI {
			return nil, domain.Validationf("rbi must be between 0 and %d", constants.MaxRBI)
		}
		event.RBI = *patch.RBI
	}
	if patch.Notes != nil {
		event.Notes = *patch.Notes
	}
	if patch.FieldingPosition != nil {
		event.FieldingPosition = *patch.FieldingPosition
	}
	event.RunScored = event.RunScored || event.BaseReached >= scoring.Scored

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	eventsTx := s.events.WithTx(tx)
	gamesTx := s.games.WithTx(tx)
	runnersTx := s.runners.WithTx(tx)

	if err := eventsTx.Update(ctx, event); err != nil {
		return nil, err
	}
	if err := recomputeScore(ctx, eventsTx, gamesTx, game); err != nil {
		return nil, err
	}

	history, err := eventsTx.ListByHalfInning(ctx, game.ID, event.Inning, event.Half)
	if err != nil {
		return nil, err
	}
	state := scoring.FoldHalfInning(game.ID, event.Inning, event.Half, history)
	if state.IsLocked {
		if err := s.applyTransition(ctx, runnersTx, gamesTx, game, event.Inning, event.Half); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event edit: %w", err)
	}

	s.logger.Info().
		Str("game_id", game.ID).
		Str("event_id", event.ID).
		Str("result", string(event.Result)).
		Msg("plate appearance edited")

	return s.finishCommit(ctx, game.ID, event.Inning, *event, state, pubsub.UpdatePlateAppearance)
}

// Delete removes an event from an unlocked half-inning along with any
// runner row it placed, then recomputes the derived state.
func (s *PlateAppearanceService) Delete(ctx context.Context, eventID string, scorerToken string) (*CommitResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	event, game, err := s.loadUnlocked(ctx, eventID, scorerToken)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	eventsTx := s.events.WithTx(tx)
	gamesTx := s.games.WithTx(tx)
	runnersTx := s.runners.WithTx(tx)

	if err := runnersTx.DeleteByEvent(ctx, event.ID); err != nil {
		return nil, err
	}
	if err := eventsTx.Delete(ctx, event.ID); err != nil {
		return nil, err
	}
	if err := recomputeScore(ctx, eventsTx, gamesTx, game); err != nil {
		return nil, err
	}

	history, err := eventsTx.ListByHalfInning(ctx, game.ID, event.Inning, event.Half)
	if err != nil {
		return nil, err
	}
	state := scoring.FoldHalfInning(game.ID, event.Inning, event.Half, history)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event delete: %w", err)
	}

	s.logger.Info().
		Str("game_id", game.ID).
		Str("event_id", event.ID).
		Msg("plate appearance deleted")

	return s.finishCommit(ctx, game.ID, event.Inning, *event, state, pubsub.UpdatePlateAppearance)
}

// loadUnlocked fetches an event and its game, rejecting mutation when
// the event's half-inning already has three outs.
func (s *PlateAppearanceService) loadUnlocked(ctx context.Context, eventID, scorerToken string) (*domain.AtBatEvent, *domain.Game, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	game, err := s.games.Get(ctx, event.GameID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkScorerToken(game, scorerToken); err != nil {
		return nil, nil, err
	}

	history, err := s.events.ListByHalfInning(ctx, game.ID, event.Inning, event.Half)
	if err != nil {
		return nil, nil, err
	}
	state := scoring.FoldHalfInning(game.ID, event.Inning, event.Half, history)
	if state.IsLocked {
		return nil, nil, domain.Validationf("half-inning %d %s is locked", event.Inning, event.Half)
	}
	return event, game, nil
}
