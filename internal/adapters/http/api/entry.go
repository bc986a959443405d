package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// EntryHandler handles entry detail requests.
type EntryHandler struct {
	deps Dependencies
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(deps Dependencies) *EntryHandler {
	return &EntryHandler{deps: deps}
}

// HandleGetEntry handles GET /pools/{poolID}/entries/{entryID}?round=K requests.
func (h *EntryHandler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_entry"
	round, err := parseRound(r.URL.Query().Get("round"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	detail, err := h.deps.EntryDetail(r.Context(), chi.URLParam(r, "poolID"), chi.URLParam(r, "entryID"), round)
	if err != nil {
		writeLookupError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
