package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// LeaderboardHandler handles standings requests
type LeaderboardHandler struct {
	deps Dependencies
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps Dependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetStandings handles GET /pools/{poolID}/standings?round=K requests
func (h *LeaderboardHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_standings"
	round, err := parseRound(r.URL.Query().Get("round"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	lb, err := h.deps.Standings(r.Context(), chi.URLParam(r, "poolID"), round)
	if err != nil {
		writeLookupError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

// parseRound reads the round query parameter. An empty value or "current"
// selects current standings and yields nil.
func parseRound(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "current") {
		return nil, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("round must be an integer or \"current\"")
	}
	if k < 0 {
		return nil, errors.New("round must be non-negative")
	}
	return &k, nil
}
