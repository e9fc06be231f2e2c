package service

import (
	"context"
	"testing"

	"sandlot-scorebook/internal/domain"
)

func TestEditResultRecomputesDerivedState(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)
	ctx := context.Background()

	recorded := env.record(t, game.ID, lineup[0], domain.ResultStrikeout)
	if recorded.InningState.Outs != 1 {
		t.Fatalf("outs after strikeout = %d, want 1", recorded.InningState.Outs)
	}

	single := domain.ResultSingle
	edited, err := env.plateSvc.Edit(ctx, recorded.Event.ID, EventPatch{Result: &single})
	if err != nil {
		t.Fatalf("failed to edit event: %v", err)
	}
	if edited.Event.Result != domain.ResultSingle || edited.Event.BaseReached != 1 {
		t.Errorf("edited event = %s base %d, want single base 1", edited.Event.Result, edited.Event.BaseReached)
	}
	if edited.InningState.Outs != 0 || edited.InningState.Hits != 1 {
		t.Errorf("inning outs/hits after edit = %d/%d, want 0/1", edited.InningState.Outs, edited.InningState.Hits)
	}
}

func TestEditRejectsInvalidBaseForOut(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)
	ctx := context.Background()

	recorded := env.record(t, game.ID, lineup[0], domain.ResultStrikeout)

	two := 2
	_, err := env.plateSvc.Edit(ctx, recorded.Event.ID, EventPatch{BaseReached: &two})
	if !domain.IsValidation(err) {
		t.Errorf("setting base-reached on an out returned %v, want validation error", err)
	}
}

func TestEditRejectsLockedHalfInning(t *testing.T) {
	env := newTestEnv(t)
	game, _, opp := env.startedGame(t, false)
	ctx := context.Background()

	env.lockOpponentHalf(t, game.ID, opp)

	events, err := env.inningSvc.ListEvents(ctx, game.ID, 1, domain.HalfTop)
	if err != nil || len(events) == 0 {
		t.Fatalf("failed to list locked-half events: %v", err)
	}

	walk := domain.ResultWalk
	_, err = env.plateSvc.Edit(ctx, events[0].ID, EventPatch{Result: &walk})
	if !domain.IsValidation(err) {
		t.Errorf("editing a locked half-inning returned %v, want validation error", err)
	}
}

func TestDeleteRemovesEventAndRunner(t *testing.T) {
	env := newTestEnv(t)
	game, lineup, opp := env.startedGame(t, false)
	env.lockOpponentHalf(t, game.ID, opp)
	ctx := context.Background()

	recorded := env.record(t, game.ID, lineup[0], domain.ResultSingle)
	if len(recorded.Runners) != 1 {
		t.Fatalf("expected one runner after the single, got %d", len(recorded.Runners))
	}

	deleted, err := env.plateSvc.Delete(ctx, recorded.Event.ID, "")
	if err != nil {
		t.Fatalf("failed to delete event: %v", err)
	}
	if deleted.InningState.Hits != 0 {
		t.Errorf("hits after delete = %d, want 0", deleted.InningState.Hits)
	}
	if len(deleted.Runners) != 0 {
		t.Errorf("runner survived event deletion: %+v", deleted.Runners)
	}

	if _, err := env.events.Get(ctx, recorded.Event.ID); !domain.IsNotFound(err) {
		t.Errorf("deleted event lookup returned %v, want not-found", err)
	}
}
