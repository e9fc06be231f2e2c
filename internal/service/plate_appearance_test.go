package service

import (
	"context"
	"testing"

	"sandlot-scorebook/internal/domain"
)

func TestOpponentHalfHandsOverToTeamHalf(t *testing.T) {
	env := newTestEnv(t)
	game, _, opp := env.startedGame(t, false)

	if game.CurrentHalf != domain.HalfTop {
		t.Fatalf("game opened in %s, want opponent half %s", game.CurrentHalf, domain.HalfTop)
	}

	game = env.lockOpponentHalf(t, game.ID, opp)
	if game.CurrentInning != 1 || game.CurrentHalf != domain.HalfBottom {
		t.Errorf("after three outs game is at inning %d %s, want inning 1 %s",
			game.CurrentInning, game.CurrentHalf, domain.HalfBottom)
	}
}

func TestRecordSingleForcesTrailingRunners(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)

	first := env.record(t, game.ID, lineup[0], domain.ResultSingle)
	if len(first.Runners) != 1 || first.Runners[0].Base != 1 {
		t.Fatalf("after one single runners = %+v, want one runner on first", first.Runners)
	}

	second := env.record(t, game.ID, lineup[1], domain.ResultSingle)
	if len(second.Runners) != 2 {
		t.Fatalf("after two singles got %d runners, want 2", len(second.Runners))
	}
	if second.Runners[0].Base != 1 || second.Runners[1].Base != 2 {
		t.Errorf("runner bases = %d,%d, want 1,2", second.Runners[0].Base, second.Runners[1].Base)
	}
	if second.Runners[1].PlayerID != lineup[0] {
		t.Errorf("runner on second is %s, want the first batter %s", second.Runners[1].PlayerID, lineup[0])
	}
}

func TestRecordHomeRunClearsBasesAndScores(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)

	env.record(t, game.ID, lineup[0], domain.ResultSingle)
	env.record(t, game.ID, lineup[1], domain.ResultSingle)
	result := env.record(t, game.ID, lineup[2], domain.ResultHomeRun)

	if len(result.Runners) != 0 {
		t.Errorf("bases not cleared after home run: %+v", result.Runners)
	}
	if result.Event.RBI != 3 {
		t.Errorf("home run RBI = %d, want 3", result.Event.RBI)
	}
	if result.InningState.Runs != 3 || result.InningState.Hits != 3 {
		t.Errorf("inning state runs/hits = %d/%d, want 3/3", result.InningState.Runs, result.InningState.Hits)
	}
	if result.Game.TeamScore != 3 || result.Game.OpponentScore != 0 {
		t.Errorf("score = %d-%d, want 3-0", result.Game.TeamScore, result.Game.OpponentScore)
	}
}

func TestGroundOutWithRunnersNeedsDisambiguation(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)
	ctx := context.Background()

	onBase := env.record(t, game.ID, lineup[0], domain.ResultSingle)
	runnerID := onBase.Runners[0].ID

	committed, proposal, err := env.plateSvc.Record(ctx, RecordInput{
		GameID:   game.ID,
		Inning:   1,
		Half:     domain.HalfBottom,
		BatterID: lineup[1],
		Result:   domain.ResultGroundOut,
	})
	if err != nil {
		t.Fatalf("failed to record ground out: %v", err)
	}
	if committed != nil || proposal == nil {
		t.Fatal("ground out with a runner on base must suspend on a proposal")
	}
	if len(proposal.CandidateRunners) != 1 || proposal.CandidateRunners[0].ID != runnerID {
		t.Fatalf("proposal candidates = %+v, want the runner on first", proposal.CandidateRunners)
	}

	// Nothing is written while the proposal is pending.
	pending, err := env.inningSvc.GetHalfInningSummary(ctx, game.ID, 1, domain.HalfBottom)
	if err != nil {
		t.Fatalf("failed to read half-inning summary: %v", err)
	}
	if pending.State.Outs != 0 || len(pending.Runners) != 1 {
		t.Errorf("pending proposal leaked writes: outs=%d runners=%d", pending.State.Outs, len(pending.Runners))
	}

	resolved, err := env.plateSvc.ResolveDisambiguation(ctx, proposal.ID, []string{runnerID})
	if err != nil {
		t.Fatalf("failed to resolve proposal: %v", err)
	}
	if got := resolved.Event.Outs(); got != 2 {
		t.Errorf("double play recorded %d outs, want 2", got)
	}
	if resolved.InningState.Outs != 2 {
		t.Errorf("inning outs = %d, want 2", resolved.InningState.Outs)
	}
	if len(resolved.Runners) != 0 {
		t.Errorf("runner survived the double play: %+v", resolved.Runners)
	}
}

func TestResolveTriplePlayLocksHalf(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)
	ctx := context.Background()

	env.record(t, game.ID, lineup[0], domain.ResultSingle)
	second := env.record(t, game.ID, lineup[1], domain.ResultSingle)

	outIDs := []string{second.Runners[0].ID, second.Runners[1].ID}

	_, proposal, err := env.plateSvc.Record(ctx, RecordInput{
		GameID:   game.ID,
		Inning:   1,
		Half:     domain.HalfBottom,
		BatterID: lineup[2],
		Result:   domain.ResultGroundOut,
	})
	if err != nil {
		t.Fatalf("failed to record ground out: %v", err)
	}
	if proposal == nil {
		t.Fatal("expected a disambiguation proposal")
	}

	resolved, err := env.plateSvc.ResolveDisambiguation(ctx, proposal.ID, outIDs)
	if err != nil {
		t.Fatalf("failed to resolve triple play: %v", err)
	}
	if resolved.InningState.Outs != 3 || !resolved.InningState.IsLocked {
		t.Errorf("inning state = %+v, want 3 outs and locked", resolved.InningState)
	}

	// The tracked team's half closes the inning.
	if resolved.Game.CurrentInning != 2 || resolved.Game.CurrentHalf != domain.HalfTop {
		t.Errorf("game at inning %d %s, want inning 2 %s",
			resolved.Game.CurrentInning, resolved.Game.CurrentHalf, domain.HalfTop)
	}
}

func TestResolveRejectsNonCandidateRunner(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)
	ctx := context.Background()

	env.record(t, game.ID, lineup[0], domain.ResultSingle)
	_, proposal, err := env.plateSvc.Record(ctx, RecordInput{
		GameID:   game.ID,
		Inning:   1,
		Half:     domain.HalfBottom,
		BatterID: lineup[1],
		Result:   domain.ResultGroundOut,
	})
	if err != nil || proposal == nil {
		t.Fatalf("expected proposal, got err=%v", err)
	}

	_, err = env.plateSvc.ResolveDisambiguation(ctx, proposal.ID, []string{"not-a-runner"})
	if !domain.IsValidation(err) {
		t.Errorf("resolving with a non-candidate returned %v, want validation error", err)
	}
}

func TestCancelProposalDiscardsEverything(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)
	ctx := context.Background()

	env.record(t, game.ID, lineup[0], domain.ResultSingle)
	_, proposal, err := env.plateSvc.Record(ctx, RecordInput{
		GameID:   game.ID,
		Inning:   1,
		Half:     domain.HalfBottom,
		BatterID: lineup[1],
		Result:   domain.ResultGroundOut,
	})
	if err != nil || proposal == nil {
		t.Fatalf("expected proposal, got err=%v", err)
	}

	if err := env.plateSvc.CancelProposal(proposal.ID); err != nil {
		t.Fatalf("failed to cancel proposal: %v", err)
	}
	if _, err := env.plateSvc.ResolveDisambiguation(ctx, proposal.ID, nil); !domain.IsNotFound(err) {
		t.Errorf("resolving a cancelled proposal returned %v, want not-found", err)
	}

	summary, err := env.inningSvc.GetHalfInningSummary(ctx, game.ID, 1, domain.HalfBottom)
	if err != nil {
		t.Fatalf("failed to read half-inning summary: %v", err)
	}
	if summary.State.Outs != 0 || len(summary.Runners) != 1 {
		t.Errorf("cancelled proposal leaked writes: outs=%d runners=%d", summary.State.Outs, len(summary.Runners))
	}
}

func TestRecordRejectsWrongScope(t *testing.T) {
	env := newTestEnv(t)
	game, _, opp := env.startedGame(t, false)
	ctx := context.Background()

	_, _, err := env.plateSvc.Record(ctx, RecordInput{
		GameID:   game.ID,
		Inning:   2,
		Half:     domain.HalfTop,
		BatterID: opp,
		Result:   domain.ResultStrikeout,
	})
	if !domain.IsValidation(err) {
		t.Errorf("recording into a future inning returned %v, want validation error", err)
	}
}

func TestRecordRejectsBatterOutsideLineup(t *testing.T) {
	env := newTestEnv(t)
	game, _, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)
	ctx := context.Background()

	// The opponent's batter is not in the tracked team's lineup.
	_, _, err := env.plateSvc.Record(ctx, RecordInput{
		GameID:   game.ID,
		Inning:   1,
		Half:     domain.HalfBottom,
		BatterID: opp,
		Result:   domain.ResultSingle,
	})
	if !domain.IsValidation(err) {
		t.Errorf("recording a non-lineup batter returned %v, want validation error", err)
	}
}

func TestScorerTokenGatesMutations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	game, err := env.gameSvc.CreateGame(ctx, CreateGameInput{OpponentName: "River Rats", ScorerToken: "secret"})
	if err != nil {
		t.Fatalf("failed to create game: %v", err)
	}
	opp, err := env.gameSvc.CreatePlayer(ctx, "Opposing Batter")
	if err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	if _, err := env.gameSvc.StartGame(ctx, game.ID, "wrong"); !domain.IsConflict(err) {
		t.Errorf("starting with the wrong token returned %v, want conflict", err)
	}
	if _, err := env.gameSvc.StartGame(ctx, game.ID, "secret"); err != nil {
		t.Fatalf("failed to start game with token: %v", err)
	}

	_, _, err = env.plateSvc.Record(ctx, RecordInput{
		GameID:   game.ID,
		Inning:   1,
		Half:     domain.HalfTop,
		BatterID: opp.ID,
		Result:   domain.ResultStrikeout,
	})
	if !domain.IsConflict(err) {
		t.Errorf("recording without the token returned %v, want conflict", err)
	}
}

func TestBattingCursorFollowsLineup(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)
	ctx := context.Background()

	state, err := env.gameSvc.GetGameState(ctx, game.ID)
	if err != nil {
		t.Fatalf("failed to read game state: %v", err)
	}
	if state.NextBatterID != lineup[0] {
		t.Errorf("next batter = %s, want leadoff %s", state.NextBatterID, lineup[0])
	}

	env.record(t, game.ID, lineup[0], domain.ResultSingle)
	state, err = env.gameSvc.GetGameState(ctx, game.ID)
	if err != nil {
		t.Fatalf("failed to read game state: %v", err)
	}
	if state.NextBatterID != lineup[1] {
		t.Errorf("next batter after leadoff = %s, want %s", state.NextBatterID, lineup[1])
	}
}

func TestGameCompletesAfterFinalTeamHalf(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	ctx := context.Background()

	// Shrink the game to one inning to reach completion quickly.
	if err := env.games.UpdateMaxInnings(ctx, game.ID, 1); err != nil {
		t.Fatalf("failed to shrink game: %v", err)
	}

	env.lockOpponentHalf(t, game.ID, opp)
	for i := 0; i < 3; i++ {
		env.record(t, game.ID, lineup[i], domain.ResultStrikeout)
	}

	final, err := env.games.Get(ctx, game.ID)
	if err != nil {
		t.Fatalf("failed to reload game: %v", err)
	}
	if final.Status != domain.StatusCompleted {
		t.Errorf("game status = %s, want %s", final.Status, domain.StatusCompleted)
	}
}
