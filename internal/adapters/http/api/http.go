// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/okian/calcutta/internal/adapters/repository"
	"github.com/okian/calcutta/internal/domain/dedupe"
	"github.com/okian/calcutta/internal/domain/model"
	"github.com/okian/calcutta/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a progress event for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.ProgressEvent) bool

	// Read operations expose pool standings.
	Pools(ctx context.Context) []types.PoolSummary
	Standings(ctx context.Context, poolID string, round *int) (types.Leaderboard, error)
	EntryDetail(ctx context.Context, poolID, entryID string, round *int) (types.EntryDetail, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	eventsHandler      *EventsHandler
	poolsHandler       *PoolsHandler
	leaderboardHandler *LeaderboardHandler
	entryHandler       *EntryHandler

	eventsLimiter  *rate.Limiter
	allowedOrigins []string
	extraRoutes    []func(chi.Router)
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		eventsHandler:      NewEventsHandler(deps),
		poolsHandler:       NewPoolsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		entryHandler:       NewEntryHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/pools", MetricsMiddleware(s.poolsHandler.HandleListPools, "pools"))
	r.Get("/pools/{poolID}/standings", MetricsMiddleware(s.leaderboardHandler.HandleGetStandings, "standings"))
	r.Get("/pools/{poolID}/entries/{entryID}", MetricsMiddleware(s.entryHandler.HandleGetEntry, "entry"))

	events := http.Handler(http.HandlerFunc(s.eventsHandler.HandlePostEvent))
	if s.eventsLimiter != nil {
		events = RateLimitMiddleware(s.eventsLimiter)(events)
	}
	r.Post("/events", MetricsMiddleware(events.ServeHTTP, "events"))
}

// Handler returns the routed API wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	s.Register(r)
	for _, register := range s.extraRoutes {
		register(r)
	}

	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

// writeLookupError maps upstream errors from read operations to a response.
func writeLookupError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrPoolNotFound), errors.Is(err, repository.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
