package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/constants"
	"sandlot-scorebook/internal/domain"
	"sandlot-scorebook/internal/pubsub"
	"sandlot-scorebook/internal/repository"
	"sandlot-scorebook/internal/scoring"
)

// RunnerService owns the active-runner set for a (game, inning) scope:
// manual base-to-base moves, stolen bases, and duplicate-row cleanup.
// Batted-ball advancement goes through PlateAppearanceService instead.
type RunnerService struct {
	db      *sql.DB
	runners *repository.RunnerRepository
	events  *repository.AtBatEventRepository
	games   *repository.GameRepository
	pub     *pubsub.Publisher
	logger  zerolog.Logger
}

func NewRunnerService(
	db *sql.DB,
	runners *repository.RunnerRepository,
	events *repository.AtBatEventRepository,
	games *repository.GameRepository,
	pub *pubsub.Publisher,
	logger zerolog.Logger,
) *RunnerService {
	return &RunnerService{db: db, runners: runners, events: events, games: games, pub: pub, logger: logger}
}

// checkScorerToken enforces the single-writer lock: a game with a token
// only accepts mutations that present it.
func checkScorerToken(g *domain.Game, token string) error {
	if g.ScorerToken != "" && g.ScorerToken != token {
		return domain.Conflictf("scorer token mismatch for game %s", g.ID)
	}
	return nil
}

// ActiveRunners returns the deduplicated active-runner set for a scope.
// When two active rows exist for the same player, only the most recently
// updated survives; the stale rows are deleted as a side effect.
func (s *RunnerService) ActiveRunners(ctx context.Context, gameID string, inning int) ([]domain.Runner, error) {
	rows, err := s.runners.ListActive(ctx, gameID, inning)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	kept := make([]domain.Runner, 0, len(rows))
	for _, r := range rows {
		if seen[r.PlayerID] {
			s.logger.Warn().
				Str("game_id", gameID).
				Int("inning", inning).
				Str("player_id", r.PlayerID).
				Str("runner_id", r.ID).
				Msg("removing duplicate active runner row")
			if err := s.runners.Delete(ctx, r.ID); err != nil {
				return nil, fmt.Errorf("failed to remove duplicate runner: %w", err)
			}
			continue
		}
		seen[r.PlayerID] = true
		kept = append(kept, r)
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Base < kept[j].Base })
	return kept, nil
}

// AdvanceManual moves one runner forward outside a batted ball (wild
// pitch, passed ball, operator correction). Placement onto an occupied
// base is rejected rather than cascading the occupant forward.
func (s *RunnerService) AdvanceManual(ctx context.Context, runnerID string, toBase int, token string) ([]domain.Runner, error) {
	return s.advance(ctx, runnerID, toBase, token, false)
}

// StealBase advances a runner one base and flags the stolen base on the
// runner's originating at-bat event.
func (s *RunnerService) StealBase(ctx context.Context, runnerID string, token string) ([]domain.Runner, error) {
	runner, err := s.runners.Get(ctx, runnerID)
	if err != nil {
		return nil, err
	}
	return s.advance(ctx, runnerID, runner.Base+1, token, true)
}

func (s *RunnerService) advance(ctx context.Context, runnerID string, toBase int, token string, stolen bool) ([]domain.Runner, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	runner, err := s.runners.Get(ctx, runnerID)
	if err != nil {
		return nil, err
	}
	if !runner.IsActive {
		return nil, domain.Validationf("runner %s is no longer on base", runnerID)
	}

	game, err := s.games.Get(ctx, runner.GameID)
	if err != nil {
		return nil, err
	}
	if err := checkScorerToken(game, token); err != nil {
		return nil, err
	}
	if game.Status != domain.StatusInProgress {
		return nil, domain.Validationf("game %s is not in progress", game.ID)
	}

	if toBase <= runner.Base || toBase > scoring.Scored {
		return nil, domain.Validationf("runner on base %d cannot move to base %d", runner.Base, toBase)
	}

	active, err := s.ActiveRunners(ctx, runner.GameID, runner.Inning)
	if err != nil {
		return nil, err
	}
	if toBase < scoring.Scored {
		for _, other := range active {
			if other.ID != runner.ID && other.Base == toBase {
				return nil, domain.Conflictf("base %d is occupied by another runner", toBase)
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runnersTx := s.runners.WithTx(tx)
	eventsTx := s.events.WithTx(tx)
	gamesTx := s.games.WithTx(tx)

	if toBase >= scoring.Scored {
		if err := runnersTx.Deactivate(ctx, runner.ID, scoring.Scored); err != nil {
			return nil, err
		}
		if err := eventsTx.SetRunScored(ctx, runner.EventID, true); err != nil {
			return nil, err
		}
		if err := recomputeScore(ctx, eventsTx, gamesTx, game); err != nil {
			return nil, err
		}
	} else {
		if err := runnersTx.UpdateBase(ctx, runner.ID, toBase); err != nil {
			return nil, err
		}
	}

	if stolen {
		if err := eventsTx.SetStolenBase(ctx, runner.EventID, true); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit runner advance: %w", err)
	}

	s.logger.Info().
		Str("game_id", runner.GameID).
		Str("runner_id", runner.ID).
		Int("from_base", runner.Base).
		Int("to_base", toBase).
		Bool("stolen", stolen).
		Msg("runner advanced")

	s.pub.Publish(pubsub.GameUpdate{Type: pubsub.UpdateRunner, GameID: runner.GameID})

	return s.ActiveRunners(ctx, runner.GameID, runner.Inning)
}

// recomputeScore folds the full event history into the game's running
// score and writes it back. Shared by every mutation path.
func recomputeScore(ctx context.Context, events *repository.AtBatEventRepository, games *repository.GameRepository, g *domain.Game) error {
	history, err := events.ListByGame(ctx, g.ID)
	if err != nil {
		return err
	}
	team, opponent := scoring.Score(g, history)
	return games.UpdateScore(ctx, g.ID, team, opponent)
}
