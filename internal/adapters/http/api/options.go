package api

import (
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithEventsRateLimit limits POST /events to perSecond requests with the
// given burst. A non-positive rate disables the limit.
func WithEventsRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.eventsLimiter = nil
			return
		}
		s.eventsLimiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithAllowedOrigins sets the CORS allowed origins. Defaults to any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithRoutes registers additional routes, such as API docs, on the router.
func WithRoutes(register func(chi.Router)) Option {
	return func(s *Server) {
		if register != nil {
			s.extraRoutes = append(s.extraRoutes, register)
		}
	}
}
