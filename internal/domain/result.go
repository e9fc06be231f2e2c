package domain

// ResultCategory enumerates the outcome of a plate appearance.
type ResultCategory string

const (
	ResultSingle             ResultCategory = "single"
	ResultDouble             ResultCategory = "double"
	ResultTriple             ResultCategory = "triple"
	ResultHomeRun            ResultCategory = "home_run"
	ResultWalk               ResultCategory = "walk"
	ResultHitByPitch         ResultCategory = "hit_by_pitch"
	ResultStrikeout          ResultCategory = "strikeout"
	ResultGroundOut          ResultCategory = "ground_out"
	ResultFlyOut             ResultCategory = "fly_out"
	ResultLineOut            ResultCategory = "line_out"
	ResultSacrificeBunt      ResultCategory = "sacrifice_bunt"
	ResultSacrificeFly       ResultCategory = "sacrifice_fly"
	ResultFieldersChoiceOut  ResultCategory = "fielders_choice_out"
	ResultError              ResultCategory = "error"
	ResultFieldersChoiceSafe ResultCategory = "fielders_choice_safe"
)

var resultCategories = map[ResultCategory]struct{}{
	ResultSingle:             {},
	ResultDouble:             {},
	ResultTriple:             {},
	ResultHomeRun:            {},
	ResultWalk:               {},
	ResultHitByPitch:         {},
	ResultStrikeout:          {},
	ResultGroundOut:          {},
	ResultFlyOut:             {},
	ResultLineOut:            {},
	ResultSacrificeBunt:      {},
	ResultSacrificeFly:       {},
	ResultFieldersChoiceOut:  {},
	ResultError:              {},
	ResultFieldersChoiceSafe: {},
}

func (r ResultCategory) Valid() bool {
	_, ok := resultCategories[r]
	return ok
}

// IsHit reports whether the result counts as a hit.
func (r ResultCategory) IsHit() bool {
	switch r {
	case ResultSingle, ResultDouble, ResultTriple, ResultHomeRun:
		return true
	}
	return false
}

// IsOnBase reports whether the batter ends up on base (or scores) and a
// base-reached value is required.
func (r ResultCategory) IsOnBase() bool {
	switch r {
	case ResultSingle, ResultDouble, ResultTriple, ResultHomeRun,
		ResultWalk, ResultHitByPitch, ResultError, ResultFieldersChoiceSafe:
		return true
	}
	return false
}

// IsOut reports whether the batter is out on the play.
func (r ResultCategory) IsOut() bool {
	switch r {
	case ResultStrikeout, ResultGroundOut, ResultFlyOut, ResultLineOut,
		ResultSacrificeBunt, ResultSacrificeFly, ResultFieldersChoiceOut:
		return true
	}
	return false
}

// IsSacrifice reports whether the out advances or scores a runner by
// design and is excluded from at-bats.
func (r ResultCategory) IsSacrifice() bool {
	return r == ResultSacrificeBunt || r == ResultSacrificeFly
}

// CountsAsAtBat reports whether the plate appearance counts as an
// official at-bat for batting rate stats.
func (r ResultCategory) CountsAsAtBat() bool {
	switch r {
	case ResultWalk, ResultHitByPitch, ResultSacrificeBunt, ResultSacrificeFly:
		return false
	}
	return true
}

// DefaultBaseReached is the base the batter reaches when the caller does
// not say otherwise.
func (r ResultCategory) DefaultBaseReached() int {
	switch r {
	case ResultSingle, ResultWalk, ResultHitByPitch, ResultError, ResultFieldersChoiceSafe:
		return 1
	case ResultDouble:
		return 2
	case ResultTriple:
		return 3
	case ResultHomeRun:
		return 4
	}
	return 0
}

// TotalBases is the slugging contribution of the result.
func (r ResultCategory) TotalBases() int {
	switch r {
	case ResultSingle:
		return 1
	case ResultDouble:
		return 2
	case ResultTriple:
		return 3
	case ResultHomeRun:
		return 4
	}
	return 0
}
