package service

import (
	"context"

	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/constants"
	"sandlot-scorebook/internal/domain"
	"sandlot-scorebook/internal/repository"
	"sandlot-scorebook/internal/scoring"
)

// HalfInningSummary is the read model for one half-inning: the derived
// line score plus the runners still on base in its inning scope.
type HalfInningSummary struct {
	State   domain.HalfInningState `json:"state"`
	Runners []domain.Runner        `json:"runners"`
}

// InningService answers read-only half-inning queries, including
// navigation back through already-played half-innings. It never mutates.
type InningService struct {
	events  *repository.AtBatEventRepository
	games   *repository.GameRepository
	runnerS *RunnerService
	logger  zerolog.Logger
}

func NewInningService(
	events *repository.AtBatEventRepository,
	games *repository.GameRepository,
	runnerS *RunnerService,
	logger zerolog.Logger,
) *InningService {
	return &InningService{events: events, games: games, runnerS: runnerS, logger: logger}
}

// GetHalfInningSummary folds the events of (game, inning, half) into
// outs, hits, runs, and the locked flag. Recomputed on every call so the
// view always agrees with the event store.
func (s *InningService) GetHalfInningSummary(ctx context.Context, gameID string, inning int, half domain.Half) (*HalfInningSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.games.Get(ctx, gameID); err != nil {
		return nil, err
	}
	if inning < 1 || !half.Valid() {
		return nil, domain.Validationf("invalid half-inning %d %s", inning, half)
	}

	events, err := s.events.ListByHalfInning(ctx, gameID, inning, half)
	if err != nil {
		return nil, err
	}
	state := scoring.FoldHalfInning(gameID, inning, half, events)

	runners, err := s.runnerS.ActiveRunners(ctx, gameID, inning)
	if err != nil {
		return nil, err
	}

	return &HalfInningSummary{State: state, Runners: runners}, nil
}

// ListEvents returns a half-inning's plate appearances in order.
func (s *InningService) ListEvents(ctx context.Context, gameID string, inning int, half domain.Half) ([]domain.AtBatEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.events.ListByHalfInning(ctx, gameID, inning, half)
}
