package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sandlot-scorebook/internal/constants"
	"sandlot-scorebook/internal/domain"
	"sandlot-scorebook/internal/repository"
	"sandlot-scorebook/internal/scoring"
)

// BattingStatLine is one player's rate stats rendered for display.
type BattingStatLine struct {
	PlayerID         string `json:"player_id"`
	PlateAppearances int    `json:"plate_appearances"`
	AtBats           int    `json:"at_bats"`
	Hits             int    `json:"hits"`
	HomeRuns         int    `json:"home_runs"`
	RBI              int    `json:"rbi"`
	Runs             int    `json:"runs"`
	StolenBases      int    `json:"stolen_bases"`
	Average          string `json:"average"`
	OnBase           string `json:"on_base"`
	Slugging         string `json:"slugging"`
	OPS              string `json:"ops"`
}

// PitchingStatLine is one pitcher's 7-inning-scaled rate stats.
type PitchingStatLine struct {
	PlayerID       string `json:"player_id"`
	InningsPitched string `json:"innings_pitched"`
	HitsAllowed    int    `json:"hits_allowed"`
	WalksAllowed   int    `json:"walks_allowed"`
	RunsAllowed    int    `json:"runs_allowed"`
	EarnedRuns     int    `json:"earned_runs"`
	Strikeouts     int    `json:"strikeouts"`
	ERA            string `json:"era"`
	WHIP           string `json:"whip"`
	KPer7          string `json:"k_per_7"`
	BBPer7         string `json:"bb_per_7"`
}

type GameStats struct {
	Batting  []BattingStatLine  `json:"batting"`
	Pitching []PitchingStatLine `json:"pitching"`
}

// StatsService recomputes display statistics from persisted history.
// Nothing here is cached; folding twice yields the same answer.
type StatsService struct {
	events   *repository.AtBatEventRepository
	pitching *repository.PitchingLineRepository
	games    *repository.GameRepository
	logger   zerolog.Logger
}

func NewStatsService(
	events *repository.AtBatEventRepository,
	pitching *repository.PitchingLineRepository,
	games *repository.GameRepository,
	logger zerolog.Logger,
) *StatsService {
	return &StatsService{events: events, pitching: pitching, games: games, logger: logger}
}

// GameStats folds batting and pitching stats for one game in parallel.
func (s *StatsService) GameStats(ctx context.Context, gameID string) (*GameStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if _, err := s.games.Get(ctx, gameID); err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	var events []domain.AtBatEvent
	var lines []domain.PitchingLine

	g.Go(func() error {
		var err error
		events, err = s.events.ListByGame(gCtx, gameID)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = s.pitching.ListByGame(gCtx, gameID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &GameStats{
		Batting:  make([]BattingStatLine, 0),
		Pitching: make([]PitchingStatLine, 0, len(lines)),
	}

	totals := scoring.AccumulateBatting(events)
	for _, t := range totals {
		stats.Batting = append(stats.Batting, BattingStatLine{
			PlayerID:         t.PlayerID,
			PlateAppearances: t.PlateAppearances,
			AtBats:           t.AtBats,
			Hits:             t.Hits,
			HomeRuns:         t.HomeRuns,
			RBI:              t.RBI,
			Runs:             t.Runs,
			StolenBases:      t.StolenBases,
			Average:          t.Average(),
			OnBase:           t.OnBase(),
			Slugging:         t.Slugging(),
			OPS:              t.OPS(),
		})
	}
	sort.Slice(stats.Batting, func(i, j int) bool {
		return stats.Batting[i].PlayerID < stats.Batting[j].PlayerID
	})

	for _, line := range lines {
		rates := scoring.NewPitchingRates(line)
		stats.Pitching = append(stats.Pitching, PitchingStatLine{
			PlayerID:       line.PlayerID,
			InningsPitched: rates.InningsPitched(),
			HitsAllowed:    line.HitsAllowed,
			WalksAllowed:   line.WalksAllowed,
			RunsAllowed:    line.RunsAllowed,
			EarnedRuns:     line.EarnedRuns,
			Strikeouts:     line.Strikeouts,
			ERA:            rates.ERA(),
			WHIP:           rates.WHIP(),
			KPer7:          rates.KPer7(),
			BBPer7:         rates.BBPer7(),
		})
	}

	return stats, nil
}

type PitchingLineInput struct {
	PlayerID string `json:"player_id"`

	// InningsPitched uses the displayed thirds notation, e.g. "6.2".
	InningsPitched string `json:"innings_pitched"`

	HitsAllowed  int    `json:"hits_allowed"`
	WalksAllowed int    `json:"walks_allowed"`
	RunsAllowed  int    `json:"runs_allowed"`
	EarnedRuns   int    `json:"earned_runs"`
	Strikeouts   int    `json:"strikeouts"`
	ScorerToken  string `json:"scorer_token,omitempty"`
}

// UpsertPitchingLine records or replaces one pitcher's line for a game.
func (s *StatsService) UpsertPitchingLine(ctx context.Context, gameID string, input PitchingLineInput) (*PitchingStatLine, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := checkScorerToken(game, input.ScorerToken); err != nil {
		return nil, err
	}

	outs, err := scoring.ParseInningsPitched(input.InningsPitched)
	if err != nil {
		return nil, domain.Validationf("invalid innings pitched %q", input.InningsPitched)
	}
	if input.EarnedRuns > input.RunsAllowed {
		return nil, domain.Validationf("earned runs cannot exceed runs allowed")
	}

	now := time.Now()
	line := &domain.PitchingLine{
		GameID:       gameID,
		PlayerID:     input.PlayerID,
		OutsRecorded: outs,
		HitsAllowed:  input.HitsAllowed,
		WalksAllowed: input.WalksAllowed,
		RunsAllowed:  input.RunsAllowed,
		EarnedRuns:   input.EarnedRuns,
		Strikeouts:   input.Strikeouts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.pitching.Upsert(ctx, line); err != nil {
		return nil, err
	}

	rates := scoring.NewPitchingRates(*line)
	return &PitchingStatLine{
		PlayerID:       line.PlayerID,
		InningsPitched: rates.InningsPitched(),
		HitsAllowed:    line.HitsAllowed,
		WalksAllowed:   line.WalksAllowed,
		RunsAllowed:    line.RunsAllowed,
		EarnedRuns:     line.EarnedRuns,
		Strikeouts:     line.Strikeouts,
		ERA:            rates.ERA(),
		WHIP:           rates.WHIP(),
		KPer7:          rates.KPer7(),
		BBPer7:         rates.BBPer7(),
	}, nil
}
