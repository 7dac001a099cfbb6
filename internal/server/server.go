// Package server exposes the pairing store and proximity matcher over
// HTTP. It is a thin layer: validation happens at the model boundary and
// matching stays in the pure match package.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/twinmaps/twinmap/internal/config"
	"github.com/twinmaps/twinmap/internal/match"
	"github.com/twinmaps/twinmap/internal/store"
	"github.com/twinmaps/twinmap/internal/watch"
)

// Options configures a Server.
type Options struct {
	Store   store.Store
	Hub     *watch.Hub // optional; match requests fall back to the store when nil
	Palette match.Palette
	Cities  []config.CityConfig

	MaxDistance float64 // default radius when the request omits max_distance

	CORSOrigins []string
	RateLimit   float64 // requests per second across the API group
	RateBurst   int
}

// Server handles the twinmap HTTP API.
type Server struct {
	opts Options
}

// New creates a Server. Zero-value rate limit fields disable limiting.
func New(opts Options) *Server {
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = match.DefaultMaxDistance
	}
	return &Server{opts: opts}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(rateLimit(s.opts.RateLimit, s.opts.RateBurst))
		}
		r.Get("/cities", s.handleCities)
		r.Get("/pairings", s.handleListPairings)
		r.Post("/pairings", s.handleCreatePairing)
		r.Delete("/pairings/{id}", s.handleDeletePairing)
		r.Get("/match", s.handleMatch)
	})

	return r
}
