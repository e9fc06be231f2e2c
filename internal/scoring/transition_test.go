package scoring

import (
	"testing"

	"sandlot-scorebook/internal/domain"
)

func TestNextAfterLock(t *testing.T) {
	tests := []struct {
		name       string
		batFirst   bool
		maxInnings int
		inning     int
		half       domain.Half
		want       Transition
	}{
		{
			name:       "opponent half hands over to team half",
			batFirst:   false,
			maxInnings: 7,
			inning:     1,
			half:       domain.HalfTop,
			want:       Transition{Kind: TransitionNextHalf, Inning: 1, Half: domain.HalfBottom},
		},
		{
			name:       "team half closes the inning",
			batFirst:   false,
			maxInnings: 7,
			inning:     1,
			half:       domain.HalfBottom,
			want:       Transition{Kind: TransitionNextInning, Inning: 2, Half: domain.HalfTop},
		},
		{
			name:       "team batting first: top hands over to bottom",
			batFirst:   true,
			maxInnings: 7,
			inning:     4,
			half:       domain.HalfBottom,
			want:       Transition{Kind: TransitionNextHalf, Inning: 4, Half: domain.HalfTop},
		},
		{
			name:       "team batting first: its half still closes the inning",
			batFirst:   true,
			maxInnings: 7,
			inning:     4,
			half:       domain.HalfTop,
			want:       Transition{Kind: TransitionNextInning, Inning: 5, Half: domain.HalfBottom},
		},
		{
			name:       "team half of the final inning completes the game",
			batFirst:   false,
			maxInnings: 7,
			inning:     7,
			half:       domain.HalfBottom,
			want:       Transition{Kind: TransitionGameComplete},
		},
		{
			name:       "opponent half of the final inning does not complete the game",
			batFirst:   false,
			maxInnings: 7,
			inning:     7,
			half:       domain.HalfTop,
			want:       Transition{Kind: TransitionNextHalf, Inning: 7, Half: domain.HalfBottom},
		},
		{
			name:       "extra inning extends completion",
			batFirst:   false,
			maxInnings: 8,
			inning:     7,
			half:       domain.HalfBottom,
			want:       Transition{Kind: TransitionNextInning, Inning: 8, Half: domain.HalfTop},
		},
		{
			name:       "game completes at the extended maximum",
			batFirst:   false,
			maxInnings: 8,
			inning:     8,
			half:       domain.HalfBottom,
			want:       Transition{Kind: TransitionGameComplete},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &domain.Game{ID: "g1", BatFirst: tt.batFirst, MaxInnings: tt.maxInnings}
			got := NextAfterLock(g, tt.inning, tt.half)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPhase(t *testing.T) {
	tests := []struct {
		name      string
		status    domain.GameStatus
		locked    bool
		hasEvents bool
		want      GamePhase
	}{
		{name: "scheduled game", status: domain.StatusScheduled, want: PhaseAwaitingFirstPitch},
		{name: "in progress without events", status: domain.StatusInProgress, want: PhaseAwaitingFirstPitch},
		{name: "in progress with events", status: domain.StatusInProgress, hasEvents: true, want: PhaseHalfInningActive},
		{name: "locked half", status: domain.StatusInProgress, hasEvents: true, locked: true, want: PhaseHalfInningLocked},
		{name: "completed game", status: domain.StatusCompleted, hasEvents: true, want: PhaseGameComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &domain.Game{ID: "g1", Status: tt.status}
			state := domain.HalfInningState{IsLocked: tt.locked}
			if got := Phase(g, state, tt.hasEvents); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
