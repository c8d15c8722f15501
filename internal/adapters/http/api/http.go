// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fieldline/standee/internal/adapters/source"
	"github.com/fieldline/standee/internal/app"
	"github.com/fieldline/standee/internal/domain/model"
	"github.com/fieldline/standee/internal/domain/standings"
	"github.com/fieldline/standee/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StandingsDependencies
	SummaryDependencies
	RankDependencies
	BatchDependencies
}

// Standing mirrors the read shape returned by standings queries.
type Standing = types.PlayerStanding

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	standingsHandler *StandingsHandler
	summaryHandler   *SummaryHandler
	rankHandler      *RankHandler
	batchHandler     *BatchHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		standingsHandler: NewStandingsHandler(deps, maxLimit),
		summaryHandler:   NewSummaryHandler(deps),
		rankHandler:      NewRankHandler(deps),
		batchHandler:     NewBatchHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", RequestIDMiddleware(MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")))
	mux.HandleFunc("/dashboard", RequestIDMiddleware(s.dashboardHandler.HandleDashboard))
	mux.HandleFunc("/stats", RequestIDMiddleware(MetricsMiddleware(s.statsHandler.HandleStats, "stats")))
	mux.HandleFunc("/standings/summary", RequestIDMiddleware(MetricsMiddleware(s.summaryHandler.HandleGetSummary, "standings_summary")))
	mux.HandleFunc("/standings/rank", RequestIDMiddleware(MetricsMiddleware(s.rankHandler.HandleGetRank, "standings_rank")))
	mux.HandleFunc("/standings/batch", RequestIDMiddleware(MetricsMiddleware(s.batchHandler.HandlePostBatch, "standings_batch")))
	mux.HandleFunc("/standings", RequestIDMiddleware(MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings")))
}

// viewPayload mirrors the OpenAPI schema for a standings view key.
type viewPayload struct {
	GameID string `json:"game_id"`
	Season int    `json:"season"`
	Week   int    `json:"week,omitempty"`
}

func (v viewPayload) validate() error {
	switch {
	case strings.TrimSpace(v.GameID) == "":
		return errors.New("missing game_id")
	case v.Season < 1:
		return errors.New("missing season")
	case v.Week < 0:
		return errors.New("invalid week")
	}
	return nil
}

func (v viewPayload) key() types.ViewKey {
	return types.ViewKey{GameID: strings.TrimSpace(v.GameID), Season: v.Season, Week: v.Week}
}

func viewFromKey(k types.ViewKey) viewPayload {
	return viewPayload{GameID: k.GameID, Season: k.Season, Week: k.Week}
}

// batchRequest mirrors the OpenAPI schema for POST /standings/batch.
type batchRequest struct {
	Views []viewPayload `json:"views"`
}

func (b batchRequest) validate() error {
	if len(b.Views) == 0 {
		return errors.New("missing views")
	}
	for i, v := range b.Views {
		if err := v.validate(); err != nil {
			return fmt.Errorf("views[%d]: %w", i, err)
		}
	}
	return nil
}

type batchItemResponse struct {
	View      viewPayload             `json:"view"`
	Standings []Standing              `json:"standings,omitempty"`
	Summary   *types.CohortStatistics `json:"summary,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchItemResponse `json:"results"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// parseViewKey reads the game_id, season, and week query parameters.
func parseViewKey(r *http.Request) (types.ViewKey, error) {
	q := r.URL.Query()

	gameID := strings.TrimSpace(q.Get("game_id"))
	if gameID == "" {
		return types.ViewKey{}, errors.New("missing game_id")
	}

	season, err := strconv.Atoi(q.Get("season"))
	if err != nil || season < 1 {
		return types.ViewKey{}, errors.New("invalid season")
	}

	week := 0
	if raw := q.Get("week"); raw != "" {
		week, err = strconv.Atoi(raw)
		if err != nil || week < 0 {
			return types.ViewKey{}, errors.New("invalid week")
		}
	}

	return types.ViewKey{GameID: gameID, Season: season, Week: week}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor translates service errors into an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, source.ErrInvalidKey),
		errors.Is(err, app.ErrBatchTooLarge):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, standings.ErrUserNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrInvariant):
		return http.StatusUnprocessableEntity, "invariant_violation"
	case errors.Is(err, model.ErrMalformed),
		errors.Is(err, source.ErrFetch),
		errors.Is(err, source.ErrDecode):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, app.ErrQueueFull):
		return http.StatusServiceUnavailable, "busy"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
