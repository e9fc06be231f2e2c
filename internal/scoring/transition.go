package scoring

import (
	"sandlot-scorebook/internal/domain"
)

// GamePhase is the coarse state of the scoring state machine.
type GamePhase string

const (
	PhaseAwaitingFirstPitch GamePhase = "awaiting_first_pitch"
	PhaseHalfInningActive   GamePhase = "half_inning_active"
	PhaseHalfInningLocked   GamePhase = "half_inning_locked"
	PhaseGameComplete       GamePhase = "game_complete"
)

type TransitionKind int

const (
	// TransitionNone: the half-inning is still active.
	TransitionNone TransitionKind = iota
	// TransitionNextHalf: same inning, other side bats.
	TransitionNextHalf
	// TransitionNextInning: first half of the next inning.
	TransitionNextInning
	// TransitionGameComplete: the game is over.
	TransitionGameComplete
)

type Transition struct {
	Kind   TransitionKind
	Inning int
	Half   domain.Half
}

// NextAfterLock decides where the game goes once (inning, half) reaches
// three outs. The opponent's half of an inning completes first and hands
// over to the tracked team's half; completing the tracked team's half
// closes the inning, and closes the game when the inning has reached the
// game's maximum.
func NextAfterLock(g *domain.Game, inning int, half domain.Half) Transition {
	if half != g.TeamHalf() {
		return Transition{Kind: TransitionNextHalf, Inning: inning, Half: g.TeamHalf()}
	}
	if inning >= g.MaxInnings {
		return Transition{Kind: TransitionGameComplete}
	}
	return Transition{Kind: TransitionNextInning, Inning: inning + 1, Half: g.OpponentHalf()}
}

// Phase reports the coarse machine state for a game given the derived
// state of its current half-inning.
func Phase(g *domain.Game, current domain.HalfInningState, hasEvents bool) GamePhase {
	switch g.Status {
	case domain.StatusCompleted:
		return PhaseGameComplete
	case domain.StatusInProgress:
		if !hasEvents {
			return PhaseAwaitingFirstPitch
		}
		if current.IsLocked {
			return PhaseHalfInningLocked
		}
		return PhaseHalfInningActive
	default:
		return PhaseAwaitingFirstPitch
	}
}
