package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"sandlot-scorebook/internal/domain"
)

// BattingTotals are the counting stats one player accumulates over a set
// of plate appearances.
type BattingTotals struct {
	PlayerID         string `json:"player_id"`
	PlateAppearances int    `json:"plate_appearances"`
	AtBats           int    `json:"at_bats"`
	Hits             int    `json:"hits"`
	TotalBases       int    `json:"total_bases"`
	Walks            int    `json:"walks"`
	Sacrifices       int    `json:"sacrifices"`
	HomeRuns         int    `json:"home_runs"`
	RBI              int    `json:"rbi"`
	Runs             int    `json:"runs"`
	StolenBases      int    `json:"stolen_bases"`
}

// AccumulateBatting folds events into per-player batting totals. Walks
// and hit-by-pitch count together as free passes; sacrifices and free
// passes are excluded from at-bats.
func AccumulateBatting(events []domain.AtBatEvent) map[string]*BattingTotals {
	totals := make(map[string]*BattingTotals)
	for i := range events {
		e := &events[i]
		t, ok := totals[e.BatterID]
		if !ok {
			t = &BattingTotals{PlayerID: e.BatterID}
			totals[e.BatterID] = t
		}
		t.PlateAppearances++
		if e.Result.CountsAsAtBat() {
			t.AtBats++
		}
		if e.Result.IsHit() {
			t.Hits++
		}
		t.TotalBases += e.Result.TotalBases()
		if e.Result == domain.ResultWalk || e.Result == domain.ResultHitByPitch {
			t.Walks++
		}
		if e.Result.IsSacrifice() {
			t.Sacrifices++
		}
		if e.Result == domain.ResultHomeRun {
			t.HomeRuns++
		}
		t.RBI += e.RBI
		if e.RunScored {
			t.Runs++
		}
		if e.StolenBase {
			t.StolenBases++
		}
	}
	return totals
}

// Average is hits per at-bat, "0.000" when there are no at-bats.
func (t *BattingTotals) Average() string {
	return ratio3(t.Hits, t.AtBats)
}

// OnBase is (hits + walks) / (at-bats + walks).
func (t *BattingTotals) OnBase() string {
	return ratio3(t.Hits+t.Walks, t.AtBats+t.Walks)
}

// Slugging is total bases per at-bat.
func (t *BattingTotals) Slugging() string {
	return ratio3(t.TotalBases, t.AtBats)
}

// OPS is on-base plus slugging.
func (t *BattingTotals) OPS() string {
	obp := safeDiv(t.Hits+t.Walks, t.AtBats+t.Walks)
	slg := safeDiv(t.TotalBases, t.AtBats)
	return fmt.Sprintf("%.3f", obp+slg)
}

// PitchingRates derives 7-inning-scaled rate stats from a pitching line.
type PitchingRates struct {
	line domain.PitchingLine
}

func NewPitchingRates(line domain.PitchingLine) PitchingRates {
	return PitchingRates{line: line}
}

// InningsPitched renders total outs in the conventional thirds notation:
// 20 outs is "6.2".
func (p PitchingRates) InningsPitched() string {
	return FormatInningsPitched(p.line.OutsRecorded)
}

// ERA is earned runs scaled to a 7-inning regulation game.
func (p PitchingRates) ERA() string {
	return rate7(float64(p.line.EarnedRuns), p.line.OutsRecorded)
}

// WHIP is walks plus hits allowed per inning pitched.
func (p PitchingRates) WHIP() string {
	ip := float64(p.line.OutsRecorded) / 3.0
	if ip == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(p.line.WalksAllowed+p.line.HitsAllowed)/ip)
}

// KPer7 is strikeouts per 7 innings.
func (p PitchingRates) KPer7() string {
	return rate7(float64(p.line.Strikeouts), p.line.OutsRecorded)
}

// BBPer7 is walks per 7 innings.
func (p PitchingRates) BBPer7() string {
	return rate7(float64(p.line.WalksAllowed), p.line.OutsRecorded)
}

// FormatInningsPitched converts an out count to the displayed
// whole-and-thirds notation.
func FormatInningsPitched(outs int) string {
	if outs < 0 {
		outs = 0
	}
	return fmt.Sprintf("%d.%d", outs/3, outs%3)
}

// ParseInningsPitched converts the displayed ".1"/".2" notation back to
// total outs. "6.2" means 6 innings and 2 outs, i.e. 20 outs.
func ParseInningsPitched(s string) (int, error) {
	whole, frac, found := strings.Cut(strings.TrimSpace(s), ".")
	if whole == "" {
		whole = "0"
	}
	innings, err := strconv.Atoi(whole)
	if err != nil || innings < 0 {
		return 0, fmt.Errorf("invalid innings pitched %q", s)
	}
	outs := innings * 3
	if found && frac != "" {
		part, err := strconv.Atoi(frac)
		if err != nil || part < 0 || part > 2 {
			return 0, fmt.Errorf("invalid innings pitched fraction %q", s)
		}
		outs += part
	}
	return outs, nil
}

func rate7(n float64, outs int) string {
	ip := float64(outs) / 3.0
	if ip == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", n*7.0/ip)
}

func ratio3(num, den int) string {
	return fmt.Sprintf("%.3f", safeDiv(num, den))
}

func safeDiv(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
