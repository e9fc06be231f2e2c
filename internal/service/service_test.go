package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/config"
	"sandlot-scorebook/internal/database"
	"sandlot-scorebook/internal/domain"
	"sandlot-scorebook/internal/pubsub"
	"sandlot-scorebook/internal/repository"
)

var dbSeq int64

// testEnv wires the full service stack against a throwaway in-memory
// database with migrations applied.
type testEnv struct {
	cfg      *config.Config
	games    *repository.GameRepository
	players  *repository.PlayerRepository
	lineups  *repository.LineupRepository
	events   *repository.AtBatEventRepository
	runners  *repository.RunnerRepository
	cursors  *repository.CursorRepository
	pitching *repository.PitchingLineRepository

	runnerSvc *RunnerService
	plateSvc  *PlateAppearanceService
	inningSvc *InningService
	gameSvc   *GameService
	statsSvc  *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	cfg := &config.Config{
		DBPath:             fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1)),
		RegulationInnings:  7,
		ExtraInningCeiling: 10,
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	pub, err := pubsub.New(cfg, logger)
	if err != nil {
		t.Fatalf("failed to create publisher: %v", err)
	}

	env := &testEnv{
		cfg:      cfg,
		games:    repository.NewGameRepository(db, logger),
		players:  repository.NewPlayerRepository(db, logger),
		lineups:  repository.NewLineupRepository(db, logger),
		events:   repository.NewAtBatEventRepository(db, logger),
		runners:  repository.NewRunnerRepository(db, logger),
		cursors:  repository.NewCursorRepository(db, logger),
		pitching: repository.NewPitchingLineRepository(db, logger),
	}
	env.runnerSvc = NewRunnerService(db, env.runners, env.events, env.games, pub, logger)
	env.plateSvc = NewPlateAppearanceService(db, env.events, env.runners, env.games, env.lineups, env.players, env.cursors, env.runnerSvc, pub, logger)
	env.inningSvc = NewInningService(env.events, env.games, env.runnerSvc, logger)
	env.gameSvc = NewGameService(cfg, env.games, env.players, env.lineups, env.cursors, env.events, env.runnerSvc, pub, logger)
	env.statsSvc = NewStatsService(env.events, env.pitching, env.games, logger)
	return env
}

// startedGame creates a game with a nine-player lineup, an opponent
// batter, and moves it into progress. The game opens in the opponent's
// half.
func (env *testEnv) startedGame(t *testing.T, batFirst bool) (*domain.Game, []string, string) {
	t.Helper()
	ctx := context.Background()

	game, err := env.gameSvc.CreateGame(ctx, CreateGameInput{OpponentName: "River Rats", BatFirst: batFirst})
	if err != nil {
		t.Fatalf("failed to create game: %v", err)
	}

	lineup := make([]string, 0, 9)
	slots := make([]LineupSlotInput, 0, 9)
	for i := 0; i < 9; i++ {
		p, err := env.gameSvc.CreatePlayer(ctx, fmt.Sprintf("Player %d", i+1))
		if err != nil {
			t.Fatalf("failed to create player: %v", err)
		}
		lineup = append(lineup, p.ID)
		slots = append(slots, LineupSlotInput{PlayerID: p.ID, BattingOrder: i + 1, IsActive: true})
	}
	if err := env.gameSvc.SetLineup(ctx, game.ID, "", slots); err != nil {
		t.Fatalf("failed to set lineup: %v", err)
	}

	opp, err := env.gameSvc.CreatePlayer(ctx, "Opposing Batter")
	if err != nil {
		t.Fatalf("failed to create opponent batter: %v", err)
	}

	game, err = env.gameSvc.StartGame(ctx, game.ID, "")
	if err != nil {
		t.Fatalf("failed to start game: %v", err)
	}
	return game, lineup, opp.ID
}

// record commits one plate appearance in the game's current scope and
// fails the test on error or a pending proposal.
func (env *testEnv) record(t *testing.T, gameID, batterID string, result domain.ResultCategory) *CommitResult {
	t.Helper()
	ctx := context.Background()

	game, err := env.games.Get(ctx, gameID)
	if err != nil {
		t.Fatalf("failed to load game: %v", err)
	}
	committed, proposal, err := env.plateSvc.Record(ctx, RecordInput{
		GameID:   gameID,
		Inning:   game.CurrentInning,
		Half:     game.CurrentHalf,
		BatterID: batterID,
		Result:   result,
	})
	if err != nil {
		t.Fatalf("failed to record %s: %v", result, err)
	}
	if proposal != nil {
		t.Fatalf("recording %s unexpectedly needs disambiguation", result)
	}
	return committed
}

// lockOpponentHalf plays three quick outs in the opponent's half so the
// game hands over to the tracked team's half.
func (env *testEnv) lockOpponentHalf(t *testing.T, gameID, oppBatterID string) *domain.Game {
	t.Helper()

	for i := 0; i < 3; i++ {
		env.record(t, gameID, oppBatterID, domain.ResultStrikeout)
	}
	game, err := env.games.Get(context.Background(), gameID)
	if err != nil {
		t.Fatalf("failed to reload game: %v", err)
	}
	return game
}
