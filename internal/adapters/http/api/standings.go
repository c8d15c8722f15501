// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fieldline/standee/internal/domain/types"
)

// StandingsDependencies defines the interface for standings queries.
type StandingsDependencies interface {
	Standings(ctx context.Context, key types.ViewKey) ([]Standing, error)
}

// StandingsHandler handles standings requests.
type StandingsHandler struct {
	deps     StandingsDependencies
	maxLimit int
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps StandingsDependencies, maxLimit int) *StandingsHandler {
	return &StandingsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetStandings handles GET /standings?game_id=&season=&week=&limit=N requests.
func (h *StandingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_standings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	key, err := parseViewKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Truncation happens after ranking, so rank and tie markers always
	// reflect the full cohort.
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if limit > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
	}

	ranked, err := h.deps.Standings(r.Context(), key)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	writeJSON(w, http.StatusOK, ranked)
}
