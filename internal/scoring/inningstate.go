package scoring

import (
	"sandlot-scorebook/internal/constants"
	"sandlot-scorebook/internal/domain"
)

// FoldHalfInning derives the out count and line-score totals for one
// (game, inning, half) scope from its events. It is a pure fold with no
// state of its own; callers recompute rather than cache so edits and
// deletes of past events can never drift the derived view.
func FoldHalfInning(gameID string, inning int, half domain.Half, events []domain.AtBatEvent) domain.HalfInningState {
	state := domain.HalfInningState{
		GameID: gameID,
		Inning: inning,
		Half:   half,
	}
	for i := range events {
		e := &events[i]
		state.Outs += e.Outs()
		if e.Result.IsHit() {
			state.Hits++
		}
		if e.Result == domain.ResultError {
			state.Errors++
		}
		if e.RunScored {
			state.Runs++
		}
	}
	state.IsLocked = state.Outs >= constants.OutsPerHalfInning
	return state
}

// Score folds a game's full event history into (team, opponent) run
// totals, attributing each run via the bat-first flag.
func Score(g *domain.Game, events []domain.AtBatEvent) (team, opponent int) {
	teamHalf := g.TeamHalf()
	for i := range events {
		if !events[i].RunScored {
			continue
		}
		if events[i].Half == teamHalf {
			team++
		} else {
			opponent++
		}
	}
	return team, opponent
}
