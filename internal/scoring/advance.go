package scoring

import (
	"sort"

	"sandlot-scorebook/internal/domain"
)

// Scored is the pseudo-base a runner reaches when crossing home.
const Scored = 4

// Movement is one runner's planned advance on a batted ball.
type Movement struct {
	RunnerID string
	PlayerID string
	EventID  string
	FromBase int
	ToBase   int
}

func (m Movement) Scores() bool {
	return m.ToBase >= Scored
}

// PlanAdvancement computes how every active runner moves when the batter
// reaches baseReached. Runners are processed from third base down so a
// runner vacating a base never unblocks a trailing runner's forced
// evaluation: the occupancy snapshot is taken before anyone moves.
//
// baseReached 1 applies the forced-advance rule: a runner advances one
// base only when every base behind them is occupied. baseReached 2 moves
// everyone two bases, capped at home. baseReached 3 or 4 clears the
// bases. baseReached 0 moves no one.
func PlanAdvancement(runners []domain.Runner, baseReached int) []Movement {
	if baseReached < 1 {
		return nil
	}

	occupied := make(map[int]bool, len(runners))
	for _, r := range runners {
		if r.IsActive {
			occupied[r.Base] = true
		}
	}

	ordered := make([]domain.Runner, 0, len(runners))
	for _, r := range runners {
		if r.IsActive {
			ordered = append(ordered, r)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Base > ordered[j].Base })

	var moves []Movement
	for _, r := range ordered {
		to := r.Base
		switch {
		case baseReached >= 3:
			to = Scored
		case baseReached == 2:
			to = r.Base + 2
			if to > Scored {
				to = Scored
			}
		default:
			if forced(r.Base, occupied) {
				to = r.Base + 1
			}
		}
		if to == r.Base {
			continue
		}
		moves = append(moves, Movement{
			RunnerID: r.ID,
			PlayerID: r.PlayerID,
			EventID:  r.EventID,
			FromBase: r.Base,
			ToBase:   to,
		})
	}
	return moves
}

// forced reports whether the runner on base must vacate for the batter's
// single-base advance: every base between home and the runner is occupied.
func forced(base int, occupied map[int]bool) bool {
	for b := 1; b < base; b++ {
		if !occupied[b] {
			return false
		}
	}
	return true
}
