package domain

import (
	"time"
)

type GameStatus string

const (
	StatusScheduled  GameStatus = "scheduled"
	StatusInProgress GameStatus = "in_progress"
	StatusCompleted  GameStatus = "completed"
	StatusCancelled  GameStatus = "cancelled"
)

// Half identifies one side of an inning. Within an inning the opponent's
// half is played first and the tracked team's half second; BatFirst on the
// game decides which physical label the tracked team bats under.
type Half string

const (
	HalfTop    Half = "top"
	HalfBottom Half = "bottom"
)

func (h Half) Valid() bool {
	return h == HalfTop || h == HalfBottom
}

func (h Half) Other() Half {
	if h == HalfTop {
		return HalfBottom
	}
	return HalfTop
}

type Game struct {
	ID            string
	OpponentName  string
	Status        GameStatus
	TeamScore     int
	OpponentScore int
	BatFirst      bool
	MaxInnings    int
	CurrentInning int
	CurrentHalf   Half
	ScorerToken   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TeamHalf is the half in which the tracked team bats.
func (g *Game) TeamHalf() Half {
	if g.BatFirst {
		return HalfTop
	}
	return HalfBottom
}

func (g *Game) OpponentHalf() Half {
	return g.TeamHalf().Other()
}

type Player struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineupSlot is one entry of the tracked team's ordered batting lineup.
type LineupSlot struct {
	GameID           string
	PlayerID         string
	BattingOrder     int
	FieldingPosition string
	IsActive         bool
}

// AtBatEvent is one completed plate appearance. It is the unit of the
// event store; every derived view (outs, runs, scores, stats) folds over
// these rows.
type AtBatEvent struct {
	ID          string
	GameID      string
	Inning      int
	Half        Half
	BatterID    string
	Result      ResultCategory
	BaseReached int
	RBI         int
	RunScored   bool
	StolenBase  bool

	// ExtraOutRunnerIDs carries double/triple-play disambiguation as a
	// typed field: the runners put out in addition to the batter.
	ExtraOutRunnerIDs []string

	FieldingPosition string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Outs is the number of outs this event contributed to its half-inning.
func (e *AtBatEvent) Outs() int {
	if !e.Result.IsOut() {
		return 0
	}
	return 1 + len(e.ExtraOutRunnerIDs)
}

// Runner is a baserunner currently occupying a base. Runners are scoped
// per (game, inning); at most one side has runners on base at a time.
type Runner struct {
	ID        string
	GameID    string
	Inning    int
	PlayerID  string
	EventID   string
	Base      int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HalfInningState is the derived view over the events of one
// (game, inning, half) scope.
type HalfInningState struct {
	GameID   string `json:"game_id"`
	Inning   int    `json:"inning"`
	Half     Half   `json:"half"`
	Outs     int    `json:"outs"`
	Hits     int    `json:"hits"`
	Runs     int    `json:"runs"`
	Errors   int    `json:"errors"`
	IsLocked bool   `json:"is_locked"`
}

type PitchingLine struct {
	ID           string
	GameID       string
	PlayerID     string
	OutsRecorded int
	HitsAllowed  int
	WalksAllowed int
	RunsAllowed  int
	EarnedRuns   int
	Strikeouts   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
