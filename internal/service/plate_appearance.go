package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/constants"
	"sandlot-scorebook/internal/domain"
	"sandlot-scorebook/internal/pubsub"
	"sandlot-scorebook/internal/repository"
	"sandlot-scorebook/internal/scoring"
)

// RecordInput is one plate appearance as captured by the operator.
type RecordInput struct {
	GameID   string                `json:"game_id"`
	Inning   int                   `json:"inning"`
	Half     domain.Half           `json:"half"`
	BatterID string                `json:"batter_id"`
	Result   domain.ResultCategory `json:"result"`

	// BaseReached overrides the result's default base. Required range
	// 1-4 for on-base results; must be 0 (or omitted) for outs.
	BaseReached *int `json:"base_reached,omitempty"`

	// DeclaredRBI is honored only for error and sacrifice plays, where
	// runner movement is not derivable from the batted ball. Everywhere
	// else RBI is derived from the runners the play actually scores.
	DeclaredRBI int `json:"declared_rbi"`

	FieldingPosition string `json:"fielding_position,omitempty"`
	Notes            string `json:"notes,omitempty"`
	ScorerToken      string `json:"scorer_token,omitempty"`
}

// CommitResult is the full derived state returned after a successful
// commit, so the caller needs no follow-up fetch.
type CommitResult struct {
	Event       domain.AtBatEvent      `json:"event"`
	Runners     []domain.Runner        `json:"runners"`
	InningState domain.HalfInningState `json:"inning_state"`
	Game        domain.Game            `json:"game"`
}

// DisambiguationProposal suspends a ground-out commit until the operator
// says which runners, beyond the batter, were put out. Nothing is
// written while a proposal is pending; cancelling discards it entirely.
type DisambiguationProposal struct {
	ID               string          `json:"id"`
	GameID           string          `json:"game_id"`
	CandidateRunners []domain.Runner `json:"candidate_runners"`
	CreatedAt        time.Time       `json:"created_at"`

	input       RecordInput
	baseReached int
}

// PlateAppearanceService is the resolver at the center of the scoring
// engine: it validates a plate appearance, plans runner advancement,
// derives RBI and runs, and commits the whole write set in one
// transaction.
type PlateAppearanceService struct {
	db      *sql.DB
	events  *repository.AtBatEventRepository
	runners *repository.RunnerRepository
	games   *repository.GameRepository
	lineups *repository.LineupRepository
	players *repository.PlayerRepository
	cursors *repository.CursorRepository
	runnerS *RunnerService
	pub     *pubsub.Publisher
	logger  zerolog.Logger

	mu        sync.Mutex
	proposals map[string]*DisambiguationProposal
}

func NewPlateAppearanceService(
	db *sql.DB,
	events *repository.AtBatEventRepository,
	runners *repository.RunnerRepository,
	games *repository.GameRepository,
	lineups *repository.LineupRepository,
	players *repository.PlayerRepository,
	cursors *repository.CursorRepository,
	runnerS *RunnerService,
	pub *pubsub.Publisher,
	logger zerolog.Logger,
) *PlateAppearanceService {
	return &PlateAppearanceService{
		db:        db,
		events:    events,
		runners:   runners,
		games:     games,
		lineups:   lineups,
		players:   players,
		cursors:   cursors,
		runnerS:   runnerS,
		pub:       pub,
		logger:    logger,
		proposals: make(map[string]*DisambiguationProposal),
	}
}

// Record resolves and commits one plate appearance. A ground-out with
// runners on base returns a DisambiguationProposal instead of a
// CommitResult; the caller must follow up with ResolveDisambiguation or
// CancelProposal.
func (s *PlateAppearanceService) Record(ctx context.Context, input RecordInput) (*CommitResult, *DisambiguationProposal, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	game, baseReached, err := s.validate(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	active, err := s.runnerS.ActiveRunners(ctx, game.ID, input.Inning)
	if err != nil {
		return nil, nil, err
	}

	if input.Result == domain.ResultGroundOut && len(active) > 0 {
		proposal, err := s.holdProposal(input, baseReached, active)
		if err != nil {
			return nil, nil, err
		}
		s.logger.Info().
			Str("game_id", game.ID).
			Str("proposal_id", proposal.ID).
			Int("candidates", len(active)).
			Msg("ground out needs double-play disambiguation")
		return nil, proposal, nil
	}

	result, err := s.commit(ctx, game, input, baseReached, nil)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

// ResolveDisambiguation commits a held ground-out proposal with the
// selected out runners: none for a routine out, one for a double play,
// two for a triple play.
func (s *PlateAppearanceService) ResolveDisambiguation(ctx context.Context, proposalID string, outRunnerIDs []string) (*CommitResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.mu.Lock()
	proposal, ok := s.proposals[proposalID]
	if ok {
		delete(s.proposals, proposalID)
	}
	s.mu.Unlock()

	if !ok || time.Since(proposal.CreatedAt) > constants.ProposalTTL {
		return nil, domain.NotFound("disambiguation proposal", proposalID)
	}
	if len(outRunnerIDs) > 2 {
		return nil, domain.Validationf("at most 2 additional runners can be put out on one play")
	}
	candidates := make(map[string]bool, len(proposal.CandidateRunners))
	for _, r := range proposal.CandidateRunners {
		candidates[r.ID] = true
	}
	for _, id := range outRunnerIDs {
		if !candidates[id] {
			return nil, domain.Validationf("runner %s is not a candidate of proposal %s", id, proposalID)
		}
	}

	game, baseReached, err := s.validate(ctx, proposal.input)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, game, proposal.input, baseReached, outRunnerIDs)
}

// CancelProposal drops a pending proposal without any side effects.
func (s *PlateAppearanceService) CancelProposal(proposalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[proposalID]; !ok {
		return domain.NotFound("disambiguation proposal", proposalID)
	}
	delete(s.proposals, proposalID)
	return nil
}

func (s *PlateAppearanceService) holdProposal(input RecordInput, baseReached int, candidates []domain.Runner) (*DisambiguationProposal, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}
	proposal := &DisambiguationProposal{
		ID:               id,
		GameID:           input.GameID,
		CandidateRunners: candidates,
		CreatedAt:        time.Now(),
		input:            input,
		baseReached:      baseReached,
	}
	s.mu.Lock()
	s.proposals[id] = proposal
	s.mu.Unlock()
	return proposal, nil
}

// validate checks everything that can fail before any write: game
// status, scorer token, target scope, result category, base-reached
// consistency, and lineup membership.
func (s *PlateAppearanceService) validate(ctx context.Context, input RecordInput) (*domain.Game, int, error) {
	game, err := s.games.Get(ctx, input.GameID)
	if err != nil {
		return nil, 0, err
	}
	if game.Status != domain.StatusInProgress {
		return nil, 0, domain.Validationf("game %s is not in progress", game.ID)
	}
	if err := checkScorerToken(game, input.ScorerToken); err != nil {
		return nil, 0, err
	}

	if !input.Half.Valid() {
		return nil, 0, domain.Validationf("invalid half %q", input.Half)
	}
	if input.Inning != game.CurrentInning || input.Half != game.CurrentHalf {
		return nil, 0, domain.Validationf(
			"plate appearance targets inning %d %s but the game is in inning %d %s",
			input.Inning, input.Half, game.CurrentInning, game.CurrentHalf)
	}
	if !input.Result.Valid() {
		return nil, 0, domain.Validationf("unknown result category %q", input.Result)
	}

	baseReached := input.Result.DefaultBaseReached()
	if input.BaseReached != nil {
		baseReached = *input.BaseReached
	}
	if input.Result.IsOnBase() {
		if baseReached < 1 || baseReached > scoring.Scored {
			return nil, 0, domain.Validationf("result %q requires base-reached between 1 and 4", input.Result)
		}
	} else if baseReached != 0 {
		return nil, 0, domain.Validationf("result %q implies base-reached 0, got %d", input.Result, baseReached)
	}

	// A locked half-inning only accepts events through the edit path.
	history, err := s.events.ListByHalfInning(ctx, game.ID, input.Inning, input.Half)
	if err != nil {
		return nil, 0, err
	}
	state := scoring.FoldHalfInning(game.ID, input.Inning, input.Half, history)
	if state.IsLocked {
		return nil, 0, domain.Validationf("half-inning %d %s is locked", input.Inning, input.Half)
	}

	if input.Half == game.TeamHalf() {
		lineup, err := s.lineups.GetActive(ctx, game.ID)
		if err != nil {
			return nil, 0, err
		}
		found := false
		for _, slot := range lineup {
			if slot.PlayerID == input.BatterID {
				found = true
				break
			}
		}
		if !found {
			return nil, 0, domain.Validationf("batter %s is not in the active lineup", input.BatterID)
		}
	} else {
		if _, err := s.players.Get(ctx, input.BatterID); err != nil {
			return nil, 0, err
		}
	}

	return game, baseReached, nil
}

// commit writes the full play in one transaction: runner advancement,
// extra outs, the event row, the batting cursor, the score writeback,
// and any half-inning or game transition.
func (s *PlateAppearanceService) commit(ctx context.Context, game *domain.Game, input RecordInput, baseReached int, extraOutIDs []string) (*CommitResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	eventsTx := s.events.WithTx(tx)
	runnersTx := s.runners.WithTx(tx)
	gamesTx := s.games.WithTx(tx)
	cursorsTx := s.cursors.WithTx(tx)

	active, err := runnersTx.ListActive(ctx, game.ID, input.Inning)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Runner, len(active))
	for _, r := range active {
		byID[r.ID] = r
	}
	outSet := make(map[string]bool, len(extraOutIDs))
	for _, id := range extraOutIDs {
		r, ok := byID[id]
		if !ok {
			return nil, domain.Validationf("runner %s is not on base", id)
		}
		outSet[id] = true
		if err := runnersTx.Deactivate(ctx, id, r.Base); err != nil {
			return nil, err
		}
	}

	surviving := make([]domain.Runner, 0, len(active))
	for _, r := range active {
		if !outSet[r.ID] {
			surviving = append(surviving, r)
		}
	}

	moves := scoring.PlanAdvancement(surviving, baseReached)
	scored := 0
	for _, move := range moves {
		if move.Scores() {
			if err := runnersTx.Deactivate(ctx, move.RunnerID, scoring.Scored); err != nil {
				return nil, err
			}
			if err := eventsTx.SetRunScored(ctx, move.EventID, true); err != nil {
				return nil, err
			}
			scored++
		} else {
			if err := runnersTx.UpdateBase(ctx, move.RunnerID, move.ToBase); err != nil {
				return nil, err
			}
		}
	}

	eventID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}
	now := time.Now()
	event := domain.AtBatEvent{
		ID:                eventID,
		GameID:            game.ID,
		Inning:            input.Inning,
		Half:              input.Half,
		BatterID:          input.BatterID,
		Result:            input.Result,
		BaseReached:       baseReached,
		RBI:               deriveRBI(input, baseReached, scored, len(active)),
		RunScored:         baseReached >= scoring.Scored,
		ExtraOutRunnerIDs: extraOutIDs,
		FieldingPosition:  input.FieldingPosition,
		Notes:             input.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := eventsTx.Insert(ctx, &event); err != nil {
		return nil, err
	}

	if baseReached >= 1 && baseReached < scoring.Scored {
		runnerID, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate nanoid: %w", err)
		}
		if err := runnersTx.Insert(ctx, &domain.Runner{
			ID:        runnerID,
			GameID:    game.ID,
			Inning:    input.Inning,
			PlayerID:  input.BatterID,
			EventID:   event.ID,
			Base:      baseReached,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.advanceCursor(ctx, cursorsTx, game, input); err != nil {
		return nil, err
	}

	history, err := eventsTx.ListByHalfInning(ctx, game.ID, input.Inning, input.Half)
	if err != nil {
		return nil, err
	}
	state := scoring.FoldHalfInning(game.ID, input.Inning, input.Half, history)

	if err := recomputeScore(ctx, eventsTx, gamesTx, game); err != nil {
		return nil, err
	}

	if state.IsLocked {
		if err := s.applyTransition(ctx, runnersTx, gamesTx, game, input.Inning, input.Half); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit plate appearance: %w", err)
	}

	s.logger.Info().
		Str("game_id", game.ID).
		Str("event_id", event.ID).
		Str("batter_id", event.BatterID).
		Str("result", string(event.Result)).
		Int("base_reached", event.BaseReached).
		Int("rbi", event.RBI).
		Int("outs", state.Outs).
		Msg("plate appearance committed")

	return s.finishCommit(ctx, game.ID, input.Inning, event, state, pubsub.UpdatePlateAppearance)
}

// advanceCursor moves the batting-order cursor past the batter. Only the
// tracked team's half keeps a managed lineup.
func (s *PlateAppearanceService) advanceCursor(ctx context.Context, cursors *repository.CursorRepository, game *domain.Game, input RecordInput) error {
	if input.Half != game.TeamHalf() {
		return nil
	}
	lineup, err := s.lineups.GetActive(ctx, game.ID)
	if err != nil || len(lineup) == 0 {
		return err
	}
	for i, slot := range lineup {
		if slot.PlayerID == input.BatterID {
			return cursors.Set(ctx, game.ID, input.Half, (i+1)%len(lineup))
		}
	}
	return nil
}

// applyTransition flips the game to the next half-inning, next inning,
// or completion once the active half-inning locks, and clears the bases
// for the finished scope.
func (s *PlateAppearanceService) applyTransition(ctx context.Context, runners *repository.RunnerRepository, games *repository.GameRepository, game *domain.Game, inning int, half domain.Half) error {
	if err := runners.DeactivateAll(ctx, game.ID, inning); err != nil {
		return err
	}

	transition := scoring.NextAfterLock(game, inning, half)
	switch transition.Kind {
	case scoring.TransitionNextHalf, scoring.TransitionNextInning:
		if err := games.UpdateProgress(ctx, game.ID, transition.Inning, transition.Half); err != nil {
			return err
		}
	case scoring.TransitionGameComplete:
		if err := games.UpdateStatus(ctx, game.ID, domain.StatusCompleted); err != nil {
			return err
		}
	}

	s.logger.Info().
		Str("game_id", game.ID).
		Int("locked_inning", inning).
		Str("locked_half", string(half)).
		Int("transition", int(transition.Kind)).
		Msg("half-inning locked")

	return nil
}

// finishCommit reloads post-commit state for the response and fans the
// update out to other viewers.
func (s *PlateAppearanceService) finishCommit(ctx context.Context, gameID string, inning int, event domain.AtBatEvent, state domain.HalfInningState, updateType string) (*CommitResult, error) {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	runners, err := s.runnerS.ActiveRunners(ctx, gameID, inning)
	if err != nil {
		return nil, err
	}

	s.pub.Publish(pubsub.GameUpdate{Type: updateType, GameID: gameID})

	return &CommitResult{
		Event:       event,
		Runners:     runners,
		InningState: state,
		Game:        *game,
	}, nil
}

// deriveRBI resolves the play's runs batted in. For plays whose runner
// movement the engine derives, RBI is the count of runners scored plus
// the batter on a home run. Errors and sacrifices keep the operator's
// declared value, clamped to what the play could possibly have scored.
func deriveRBI(input RecordInput, baseReached, scored, runnersOn int) int {
	switch {
	case input.Result == domain.ResultError, input.Result.IsSacrifice():
		declared := input.DeclaredRBI
		if declared < 0 {
			declared = 0
		}
		limit := runnersOn
		if input.Result == domain.ResultError && baseReached >= scoring.Scored {
			limit++
		}
		if limit > constants.MaxRBI {
			limit = constants.MaxRBI
		}
		if declared > limit {
			declared = limit
		}
		return declared
	default:
		rbi := scored
		if baseReached >= scoring.Scored {
			rbi++
		}
		if rbi > constants.MaxRBI {
			rbi = constants.MaxRBI
		}
		return rbi
	}
}
