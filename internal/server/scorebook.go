package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"sandlot-scorebook/internal/domain"
	"sandlot-scorebook/internal/pubsub"
	"sandlot-scorebook/internal/service"
)

// ScorebookServer exposes the scoring engine's operations as JSON over
// HTTP. Every mutation responds with the full derived state so the UI
// never needs a follow-up fetch.
type ScorebookServer struct {
	plateSvc  *service.PlateAppearanceService
	runnerSvc *service.RunnerService
	inningSvc *service.InningService
	gameSvc   *service.GameService
	statsSvc  *service.StatsService
	pub       *pubsub.Publisher
	logger    zerolog.Logger
}

func NewScorebookServer(
	plateSvc *service.PlateAppearanceService,
	runnerSvc *service.RunnerService,
	inningSvc *service.InningService,
	gameSvc *service.GameService,
	statsSvc *service.StatsService,
	pub *pubsub.Publisher,
	logger zerolog.Logger,
) *ScorebookServer {
	return &ScorebookServer{
		plateSvc:  plateSvc,
		runnerSvc: runnerSvc,
		inningSvc: inningSvc,
		gameSvc:   gameSvc,
		statsSvc:  statsSvc,
		pub:       pub,
		logger:    logger,
	}
}

func (s *ScorebookServer) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/players", s.CreatePlayer)
		r.Post("/games", s.CreateGame)
		r.Get("/games/{gameID}", s.GetGame)
		r.Post("/games/{gameID}/start", s.StartGame)
		r.Post("/games/{gameID}/lineup", s.SetLineup)
		r.Post("/games/{gameID}/extra-inning", s.AddExtraInning)
		r.Post("/games/{gameID}/plate-appearances", s.RecordPlateAppearance)
		r.Post("/games/{gameID}/plate-appearances/resolve", s.ResolveDisambiguation)
		r.Delete("/games/{gameID}/plate-appearances/proposals/{proposalID}", s.CancelProposal)
		r.Patch("/plate-appearances/{eventID}", s.EditPlateAppearance)
		r.Delete("/plate-appearances/{eventID}", s.DeletePlateAppearance)
		r.Get("/games/{gameID}/innings/{inning}/{half}", s.GetHalfInningSummary)
		r.Post("/runners/{runnerID}/advance", s.AdvanceRunner)
		r.Post("/runners/{runnerID}/steal", s.StealBase)
		r.Get("/games/{gameID}/stats", s.GetGameStats)
		r.Post("/games/{gameID}/pitching-lines", s.UpsertPitchingLine)
		r.Get("/games/{gameID}/updates", s.StreamUpdates)
	})

	return r
}

func (s *ScorebookServer) Health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *ScorebookServer) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	player, err := s.gameSvc.CreatePlayer(r.Context(), body.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, player)
}

func (s *ScorebookServer) CreateGame(w http.ResponseWriter, r *http.Request) {
	var input service.CreateGameInput
	if !s.decode(w, r, &input) {
		return
	}
	game, err := s.gameSvc.CreateGame(r.Context(), input)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, game)
}

func (s *ScorebookServer) GetGame(w http.ResponseWriter, r *http.Request) {
	state, err := s.gameSvc.GetGameState(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

func (s *ScorebookServer) StartGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScorerToken string `json:"scorer_token,omitempty"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	game, err := s.gameSvc.StartGame(r.Context(), chi.URLParam(r, "gameID"), body.ScorerToken)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, game)
}

func (s *ScorebookServer) SetLineup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScorerToken string                    `json:"scorer_token,omitempty"`
		Slots       []service.LineupSlotInput `json:"slots"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.gameSvc.SetLineup(r.Context(), chi.URLParam(r, "gameID"), body.ScorerToken, body.Slots); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *ScorebookServer) AddExtraInning(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScorerToken string `json:"scorer_token,omitempty"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	game, err := s.gameSvc.AddExtraInning(r.Context(), chi.URLParam(r, "gameID"), body.ScorerToken)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, game)
}

// RecordPlateAppearance commits a plate appearance, or answers 202 with
// a disambiguation proposal when a ground out needs the operator to say
// which runners were put out.
func (s *ScorebookServer) RecordPlateAppearance(w http.ResponseWriter, r *http.Request) {
	var input service.RecordInput
	if !s.decode(w, r, &input) {
		return
	}
	input.GameID = chi.URLParam(r, "gameID")

	result, proposal, err := s.plateSvc.Record(r.Context(), input)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if proposal != nil {
		s.respondJSON(w, http.StatusAccepted, map[string]any{
			"disambiguation_required": true,
			"proposal":                proposal,
		})
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *ScorebookServer) ResolveDisambiguation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProposalID   string   `json:"proposal_id"`
		OutRunnerIDs []string `json:"out_runner_ids"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	result, err := s.plateSvc.ResolveDisambiguation(r.Context(), body.ProposalID, body.OutRunnerIDs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *ScorebookServer) CancelProposal(w http.ResponseWriter, r *http.Request) {
	if err := s.plateSvc.CancelProposal(chi.URLParam(r, "proposalID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *ScorebookServer) EditPlateAppearance(w http.ResponseWriter, r *http.Request) {
	var patch service.EventPatch
	if !s.decode(w, r, &patch) {
		return
	}
	result, err := s.plateSvc.Edit(r.Context(), chi.URLParam(r, "eventID"), patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *ScorebookServer) DeletePlateAppearance(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("scorer_token")
	result, err := s.plateSvc.Delete(r.Context(), chi.URLParam(r, "eventID"), token)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *ScorebookServer) GetHalfInningSummary(w http.ResponseWriter, r *http.Request) {
	inning, err := strconv.Atoi(chi.URLParam(r, "inning"))
	if err != nil {
		s.respondError(w, r, domain.Validationf("invalid inning %q", chi.URLParam(r, "inning")))
		return
	}
	half := domain.Half(chi.URLParam(r, "half"))

	summary, err := s.inningSvc.GetHalfInningSummary(r.Context(), chi.URLParam(r, "gameID"), inning, half)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *ScorebookServer) AdvanceRunner(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ToBase      int    `json:"to_base"`
		ScorerToken string `json:"scorer_token,omitempty"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	runners, err := s.runnerSvc.AdvanceManual(r.Context(), chi.URLParam(r, "runnerID"), body.ToBase, body.ScorerToken)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"runners": runners})
}

func (s *ScorebookServer) StealBase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScorerToken string `json:"scorer_token,omitempty"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	runners, err := s.runnerSvc.StealBase(r.Context(), chi.URLParam(r, "runnerID"), body.ScorerToken)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"runners": runners})
}

func (s *ScorebookServer) GetGameStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsSvc.GameStats(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *ScorebookServer) UpsertPitchingLine(w http.ResponseWriter, r *http.Request) {
	var input service.PitchingLineInput
	if !s.decode(w, r, &input) {
		return
	}
	line, err := s.statsSvc.UpsertPitchingLine(r.Context(), chi.URLParam(r, "gameID"), input)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, line)
}

// StreamUpdates pushes game updates to the client as server-sent events
// until the client disconnects.
func (s *ScorebookServer) StreamUpdates(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, r, fmt.Errorf("streaming unsupported by connection"))
		return
	}
	gameID := chi.URLParam(r, "gameID")

	ch := s.pub.Subscribe()
	defer s.pub.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case update, open := <-ch:
			if !open {
				return
			}
			if update.GameID != gameID {
				continue
			}
			data, err := json.Marshal(update)
			if err != nil {
				s.logger.Error().Err(err).Msg("failed to encode game update")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *ScorebookServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, r, domain.Validationf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *ScorebookServer) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *ScorebookServer) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case domain.IsConflict(err):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}

	s.respondJSON(w, status, map[string]string{"error": err.Error()})
}
