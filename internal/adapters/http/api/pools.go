package api

import "net/http"

// PoolsHandler lists loaded pools.
type PoolsHandler struct {
	deps Dependencies
}

// NewPoolsHandler creates a new pools handler.
func NewPoolsHandler(deps Dependencies) *PoolsHandler {
	return &PoolsHandler{deps: deps}
}

// HandleListPools handles GET /pools requests.
func (h *PoolsHandler) HandleListPools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Pools(r.Context()))
}
