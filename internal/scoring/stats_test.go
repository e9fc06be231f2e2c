package scoring

import (
	"testing"

	"sandlot-scorebook/internal/domain"
)

func TestAccumulateBatting(t *testing.T) {
	events := []domain.AtBatEvent{
		{BatterID: "p1", Result: domain.ResultSingle},
		{BatterID: "p1", Result: domain.ResultHomeRun, RBI: 2, RunScored: true},
		{BatterID: "p1", Result: domain.ResultStrikeout},
		{BatterID: "p1", Result: domain.ResultWalk, StolenBase: true},
		{BatterID: "p2", Result: domain.ResultSacrificeFly, RBI: 1},
	}

	totals := AccumulateBatting(events)

	p1 := totals["p1"]
	if p1 == nil {
		t.Fatal("no totals for p1")
	}
	if p1.PlateAppearances != 4 || p1.AtBats != 3 {
		t.Errorf("p1 PA/AB = %d/%d, want 4/3", p1.PlateAppearances, p1.AtBats)
	}
	if p1.Hits != 2 || p1.TotalBases != 5 || p1.Walks != 1 {
		t.Errorf("p1 H/TB/BB = %d/%d/%d, want 2/5/1", p1.Hits, p1.TotalBases, p1.Walks)
	}
	if p1.HomeRuns != 1 || p1.RBI != 2 || p1.Runs != 1 || p1.StolenBases != 1 {
		t.Errorf("p1 HR/RBI/R/SB = %d/%d/%d/%d, want 1/2/1/1", p1.HomeRuns, p1.RBI, p1.Runs, p1.StolenBases)
	}

	p2 := totals["p2"]
	if p2 == nil {
		t.Fatal("no totals for p2")
	}
	if p2.AtBats != 0 || p2.Sacrifices != 1 || p2.RBI != 1 {
		t.Errorf("p2 AB/SAC/RBI = %d/%d/%d, want 0/1/1", p2.AtBats, p2.Sacrifices, p2.RBI)
	}
}

func TestBattingRates(t *testing.T) {
	totals := &BattingTotals{
		PlayerID:   "p1",
		AtBats:     3,
		Hits:       2,
		TotalBases: 5,
		Walks:      1,
	}

	if got := totals.Average(); got != "0.667" {
		t.Errorf("Average() = %q, want %q", got, "0.667")
	}
	if got := totals.OnBase(); got != "0.750" {
		t.Errorf("OnBase() = %q, want %q", got, "0.750")
	}
	if got := totals.Slugging(); got != "1.667" {
		t.Errorf("Slugging() = %q, want %q", got, "1.667")
	}
	if got := totals.OPS(); got != "2.417" {
		t.Errorf("OPS() = %q, want %q", got, "2.417")
	}
}

func TestBattingRatesZeroDenominators(t *testing.T) {
	totals := &BattingTotals{PlayerID: "p1"}
	for name, got := range map[string]string{
		"Average":  totals.Average(),
		"OnBase":   totals.OnBase(),
		"Slugging": totals.Slugging(),
		"OPS":      totals.OPS(),
	} {
		if got != "0.000" {
			t.Errorf("%s with no plate appearances = %q, want %q", name, got, "0.000")
		}
	}
}

func TestPitchingRates(t *testing.T) {
	rates := NewPitchingRates(domain.PitchingLine{
		PlayerID:     "p1",
		OutsRecorded: 20,
		HitsAllowed:  6,
		WalksAllowed: 2,
		RunsAllowed:  4,
		EarnedRuns:   3,
		Strikeouts:   7,
	})

	if got := rates.InningsPitched(); got != "6.2" {
		t.Errorf("InningsPitched() = %q, want %q", got, "6.2")
	}
	if got := rates.ERA(); got != "3.15" {
		t.Errorf("ERA() = %q, want %q", got, "3.15")
	}
	if got := rates.WHIP(); got != "1.20" {
		t.Errorf("WHIP() = %q, want %q", got, "1.20")
	}
	if got := rates.KPer7(); got != "7.35" {
		t.Errorf("KPer7() = %q, want %q", got, "7.35")
	}
	if got := rates.BBPer7(); got != "2.10" {
		t.Errorf("BBPer7() = %q, want %q", got, "2.10")
	}
}

func TestPitchingRatesZeroOuts(t *testing.T) {
	rates := NewPitchingRates(domain.PitchingLine{PlayerID: "p1"})
	for name, got := range map[string]string{
		"ERA":    rates.ERA(),
		"WHIP":   rates.WHIP(),
		"KPer7":  rates.KPer7(),
		"BBPer7": rates.BBPer7(),
	} {
		if got != "0.00" {
			t.Errorf("%s with no outs recorded = %q, want %q", name, got, "0.00")
		}
	}
}

func TestFormatInningsPitched(t *testing.T) {
	tests := []struct {
		outs int
		want string
	}{
		{0, "0.0"},
		{1, "0.1"},
		{2, "0.2"},
		{3, "1.0"},
		{20, "6.2"},
		{21, "7.0"},
		{-5, "0.0"},
	}
	for _, tt := range tests {
		if got := FormatInningsPitched(tt.outs); got != tt.want {
			t.Errorf("FormatInningsPitched(%d) = %q, want %q", tt.outs, got, tt.want)
		}
	}
}

func TestParseInningsPitched(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "6.2", want: 20},
		{in: "7.0", want: 21},
		{in: "7", want: 21},
		{in: "0.1", want: 1},
		{in: " 3.2 ", want: 11},
		{in: "6.3", wantErr: true},
		{in: "-1.0", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseInningsPitched(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseInningsPitched(%q) succeeded with %d, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseInningsPitched(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseInningsPitched(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
