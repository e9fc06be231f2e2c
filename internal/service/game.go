package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/config"
	"sandlot-scorebook/internal/constants"
	"sandlot-scorebook/internal/domain"
	"sandlot-scorebook/internal/pubsub"
	"sandlot-scorebook/internal/repository"
	"sandlot-scorebook/internal/scoring"
)

// GameService owns game lifecycle outside the per-pitch scoring loop:
// creation, lineup setup, starting, extra innings, and the combined
// game-state read model.
type GameService struct {
	cfg     *config.Config
	games   *repository.GameRepository
	players *repository.PlayerRepository
	lineups *repository.LineupRepository
	cursors *repository.CursorRepository
	events  *repository.AtBatEventRepository
	runnerS *RunnerService
	pub     *pubsub.Publisher
	logger  zerolog.Logger
}

func NewGameService(
	cfg *config.Config,
	games *repository.GameRepository,
	players *repository.PlayerRepository,
	lineups *repository.LineupRepository,
	cursors *repository.CursorRepository,
	events *repository.AtBatEventRepository,
	runnerS *RunnerService,
	pub *pubsub.Publisher,
	logger zerolog.Logger,
) *GameService {
	return &GameService{
		cfg:     cfg,
		games:   games,
		players: players,
		lineups: lineups,
		cursors: cursors,
		events:  events,
		runnerS: runnerS,
		pub:     pub,
		logger:  logger,
	}
}

type CreateGameInput struct {
	OpponentName string `json:"opponent_name"`
	BatFirst     bool   `json:"bat_first"`
	ScorerToken  string `json:"scorer_token,omitempty"`
}

func (s *GameService) CreateGame(ctx context.Context, input CreateGameInput) (*domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if strings.TrimSpace(input.OpponentName) == "" {
		return nil, domain.Validationf("opponent name is required")
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}
	now := time.Now()
	game := &domain.Game{
		ID:            id,
		OpponentName:  input.OpponentName,
		Status:        domain.StatusScheduled,
		BatFirst:      input.BatFirst,
		MaxInnings:    s.cfg.RegulationInnings,
		CurrentInning: 1,
		ScorerToken:   input.ScorerToken,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	game.CurrentHalf = game.OpponentHalf()

	if err := s.games.Create(ctx, game); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("game_id", game.ID).
		Str("opponent", game.OpponentName).
		Bool("bat_first", game.BatFirst).
		Msg("game created")
	return game, nil
}

func (s *GameService) CreatePlayer(ctx context.Context, name string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if strings.TrimSpace(name) == "" {
		return nil, domain.Validationf("player name is required")
	}
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}
	now := time.Now()
	player := &domain.Player{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.players.Create(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

type LineupSlotInput struct {
	PlayerID         string `json:"player_id"`
	BattingOrder     int    `json:"batting_order"`
	FieldingPosition string `json:"fielding_position,omitempty"`
	IsActive         bool   `json:"is_active"`
}

// SetLineup replaces the tracked team's lineup for a game.
func (s *GameService) SetLineup(ctx context.Context, gameID string, token string, slots []LineupSlotInput) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return err
	}
	if err := checkScorerToken(game, token); err != nil {
		return err
	}
	if len(slots) == 0 {
		return domain.Validationf("lineup cannot be empty")
	}
	if len(slots) > constants.LineupSize {
		return domain.Validationf("lineup cannot have more than %d slots", constants.LineupSize)
	}

	seen := make(map[string]bool, len(slots))
	lineup := make([]domain.LineupSlot, 0, len(slots))
	for _, slot := range slots {
		if seen[slot.PlayerID] {
			return domain.Validationf("player %s appears twice in the lineup", slot.PlayerID)
		}
		seen[slot.PlayerID] = true
		if _, err := s.players.Get(ctx, slot.PlayerID); err != nil {
			return err
		}
		lineup = append(lineup, domain.LineupSlot{
			GameID:           gameID,
			PlayerID:         slot.PlayerID,
			BattingOrder:     slot.BattingOrder,
			FieldingPosition: slot.FieldingPosition,
			IsActive:         slot.IsActive,
		})
	}
	return s.lineups.Replace(ctx, gameID, lineup)
}

// StartGame moves a scheduled game into progress at the first
// half-inning.
func (s *GameService) StartGame(ctx context.Context, gameID string, token string) (*domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := checkScorerToken(game, token); err != nil {
		return nil, err
	}
	if game.Status != domain.StatusScheduled {
		return nil, domain.Validationf("game %s cannot start from status %s", gameID, game.Status)
	}

	if err := s.games.UpdateStatus(ctx, gameID, domain.StatusInProgress); err != nil {
		return nil, err
	}
	if err := s.games.UpdateProgress(ctx, gameID, 1, game.OpponentHalf()); err != nil {
		return nil, err
	}

	s.logger.Info().Str("game_id", gameID).Msg("game started")
	s.pub.Publish(pubsub.GameUpdate{Type: pubsub.UpdateGame, GameID: gameID})
	return s.games.Get(ctx, gameID)
}

// AddExtraInning extends an in-progress game by one inning, up to the
// configured ceiling. Must happen before the final half-inning locks.
func (s *GameService) AddExtraInning(ctx context.Context, gameID string, token string) (*domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := checkScorerToken(game, token); err != nil {
		return nil, err
	}
	if game.Status != domain.StatusInProgress {
		return nil, domain.Validationf("game %s is not in progress", gameID)
	}
	if game.MaxInnings >= s.cfg.ExtraInningCeiling {
		return nil, domain.Validationf("game %s already at the extra-inning ceiling (%d)", gameID, s.cfg.ExtraInningCeiling)
	}

	if err := s.games.UpdateMaxInnings(ctx, gameID, game.MaxInnings+1); err != nil {
		return nil, err
	}

	s.logger.Info().Str("game_id", gameID).Int("max_innings", game.MaxInnings+1).Msg("extra inning added")
	s.pub.Publish(pubsub.GameUpdate{Type: pubsub.UpdateGame, GameID: gameID})
	return s.games.Get(ctx, gameID)
}

// GameState is the combined read model for a game in progress.
type GameState struct {
	Game         domain.Game            `json:"game"`
	Phase        scoring.GamePhase      `json:"phase"`
	CurrentState domain.HalfInningState `json:"current_state"`
	Runners      []domain.Runner        `json:"runners"`
	NextBatterID string                 `json:"next_batter_id,omitempty"`
}

// GetGameState assembles game metadata, the current half-inning fold,
// active runners, and the cursor-driven next batter.
func (s *GameService) GetGameState(ctx context.Context, gameID string) (*GameState, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListByHalfInning(ctx, gameID, game.CurrentInning, game.CurrentHalf)
	if err != nil {
		return nil, err
	}
	state := scoring.FoldHalfInning(gameID, game.CurrentInning, game.CurrentHalf, events)

	runners, err := s.runnerS.ActiveRunners(ctx, gameID, game.CurrentInning)
	if err != nil {
		return nil, err
	}

	result := &GameState{
		Game:         *game,
		Phase:        scoring.Phase(game, state, len(events) > 0),
		CurrentState: state,
		Runners:      runners,
	}

	if game.CurrentHalf == game.TeamHalf() {
		nextBatter, err := s.nextBatter(ctx, game)
		if err != nil {
			return nil, err
		}
		result.NextBatterID = nextBatter
	}

	return result, nil
}

// nextBatter reads the batting cursor, never the event history.
func (s *GameService) nextBatter(ctx context.Context, game *domain.Game) (string, error) {
	lineup, err := s.lineups.GetActive(ctx, game.ID)
	if err != nil || len(lineup) == 0 {
		return "", err
	}
	slot, err := s.cursors.Get(ctx, game.ID, game.TeamHalf())
	if err != nil {
		return "", err
	}
	return lineup[slot%len(lineup)].PlayerID, nil
}
