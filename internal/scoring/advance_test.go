package scoring

import (
	"testing"

	"sandlot-scorebook/internal/domain"
)

func runnerOn(id string, base int) domain.Runner {
	return domain.Runner{
		ID:       id,
		GameID:   "g1",
		Inning:   1,
		PlayerID: "p-" + id,
		EventID:  "e-" + id,
		Base:     base,
		IsActive: true,
	}
}

func movesByRunner(moves []Movement) map[string]int {
	out := make(map[string]int, len(moves))
	for _, m := range moves {
		out[m.RunnerID] = m.ToBase
	}
	return out
}

func TestPlanAdvancementForcedOnly(t *testing.T) {
	tests := []struct {
		name    string
		runners []domain.Runner
		want    map[string]int
	}{
		{
			name:    "bases empty moves nobody",
			runners: nil,
			want:    map[string]int{},
		},
		{
			name:    "runner on first is forced to second",
			runners: []domain.Runner{runnerOn("r1", 1)},
			want:    map[string]int{"r1": 2},
		},
		{
			name:    "runner on second stays with first open",
			runners: []domain.Runner{runnerOn("r2", 2)},
			want:    map[string]int{},
		},
		{
			name:    "runner on third stays with first and second open",
			runners: []domain.Runner{runnerOn("r3", 3)},
			want:    map[string]int{},
		},
		{
			name:    "first and second both forced",
			runners: []domain.Runner{runnerOn("r1", 1), runnerOn("r2", 2)},
			want:    map[string]int{"r1": 2, "r2": 3},
		},
		{
			name:    "first and third: third is not forced",
			runners: []domain.Runner{runnerOn("r1", 1), runnerOn("r3", 3)},
			want:    map[string]int{"r1": 2},
		},
		{
			name:    "bases loaded forces in a run",
			runners: []domain.Runner{runnerOn("r1", 1), runnerOn("r2", 2), runnerOn("r3", 3)},
			want:    map[string]int{"r1": 2, "r2": 3, "r3": Scored},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := movesByRunner(PlanAdvancement(tt.runners, 1))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d moves %v, want %d moves %v", len(got), got, len(tt.want), tt.want)
			}
			for id, base := range tt.want {
				if got[id] != base {
					t.Errorf("runner %s moved to base %d, want %d", id, got[id], base)
				}
			}
		})
	}
}

func TestPlanAdvancementDouble(t *testing.T) {
	runners := []domain.Runner{runnerOn("r1", 1), runnerOn("r2", 2), runnerOn("r3", 3)}
	got := movesByRunner(PlanAdvancement(runners, 2))

	want := map[string]int{"r1": 3, "r2": Scored, "r3": Scored}
	for id, base := range want {
		if got[id] != base {
			t.Errorf("runner %s moved to base %d, want %d", id, got[id], base)
		}
	}
}

func TestPlanAdvancementClearsBases(t *testing.T) {
	runners := []domain.Runner{runnerOn("r1", 1), runnerOn("r3", 3)}

	for _, baseReached := range []int{3, Scored} {
		moves := PlanAdvancement(runners, baseReached)
		if len(moves) != 2 {
			t.Fatalf("baseReached=%d: got %d moves, want 2", baseReached, len(moves))
		}
		for _, m := range moves {
			if !m.Scores() {
				t.Errorf("baseReached=%d: runner %s reached base %d, want %d", baseReached, m.RunnerID, m.ToBase, Scored)
			}
		}
	}
}

func TestPlanAdvancementOutMovesNobody(t *testing.T) {
	runners := []domain.Runner{runnerOn("r1", 1), runnerOn("r2", 2)}
	if moves := PlanAdvancement(runners, 0); len(moves) != 0 {
		t.Fatalf("got %d moves on a base-reached of 0, want none", len(moves))
	}
}

func TestPlanAdvancementUsesPreMoveSnapshot(t *testing.T) {
	// With first and second occupied, the runner on third must not become
	// forced just because second base vacates during the same play.
	runners := []domain.Runner{runnerOn("r1", 1), runnerOn("r2", 2), runnerOn("r3", 3)}
	got := movesByRunner(PlanAdvancement(runners[:2], 1))
	if _, ok := got["r3"]; ok {
		t.Error("runner on third moved despite not being forced at pitch time")
	}

	got = movesByRunner(PlanAdvancement(runners, 1))
	if got["r3"] != Scored {
		t.Errorf("bases-loaded runner on third moved to %d, want %d", got["r3"], Scored)
	}
}

func TestPlanAdvancementSkipsInactiveRunners(t *testing.T) {
	out := runnerOn("r2", 2)
	out.IsActive = false
	runners := []domain.Runner{runnerOn("r1", 1), out}

	got := movesByRunner(PlanAdvancement(runners, 2))
	if _, ok := got["r2"]; ok {
		t.Error("inactive runner was advanced")
	}
	if got["r1"] != 3 {
		t.Errorf("runner on first moved to %d, want 3", got["r1"])
	}
}
