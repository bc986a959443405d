package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/calcutta/internal/domain/model"
)

// EventsHandler handles event requests
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest is the body of POST /events. Wins and byes are the team's
// absolute totals, not increments.
type eventRequest struct {
	EventID    string `json:"event_id"`
	PoolID     string `json:"pool_id"`
	TeamID     string `json:"team_id"`
	Wins       int    `json:"wins"`
	Byes       int    `json:"byes"`
	Eliminated bool   `json:"eliminated"`
	TS         string `json:"ts"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(e.PoolID) == "":
		return errors.New("missing pool_id")
	case strings.TrimSpace(e.TeamID) == "":
		return errors.New("missing team_id")
	case e.Wins < 0:
		return errors.New("wins must be non-negative")
	case e.Byes < 0:
		return errors.New("byes must be non-negative")
	case strings.TrimSpace(e.TS) == "":
		return errors.New("missing ts")
	}
	if _, err := time.Parse(time.RFC3339, e.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

func (e eventRequest) event() model.ProgressEvent {
	ts, _ := time.Parse(time.RFC3339, e.TS)
	return model.ProgressEvent{
		EventID:    e.EventID,
		PoolID:     e.PoolID,
		TeamID:     e.TeamID,
		Wins:       e.Wins,
		Byes:       e.Byes,
		Eliminated: e.Eliminated,
		TS:         ts,
	}
}

// HandlePostEvent handles POST /events requests
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), req.event()); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.EventID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
