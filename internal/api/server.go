// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the movie pipeline over HTTP. Every response is JSON.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/pdiddy/cinedex/internal/metrics"
	"github.com/pdiddy/cinedex/internal/query"
	"github.com/pdiddy/cinedex/pkg/types"
)

// Movies is the query pipeline as seen by the handlers.
type Movies interface {
	List(ctx context.Context, p query.PageRequest) query.Page
	Search(ctx context.Context, text string, p *query.PageRequest) (query.Page, error)
	ByGenre(ctx context.Context, genre string, p query.PageRequest) (query.Page, error)
	ByTitles(ctx context.Context, titles []string) (query.Page, error)
	Genres() []types.GenreCount
	Count() int
}

// Recommender produces titles similar to a seed title.
type Recommender interface {
	Recommend(ctx context.Context, seed string) ([]string, error)
}

// LatestSource returns the newest catalog movie.
type LatestSource interface {
	Latest(ctx context.Context) (*types.EnrichedMovie, error)
}

// Deps are the collaborators the server delegates to. Metrics may be nil.
type Deps struct {
	Movies      Movies
	Recommender Recommender
	Latest      LatestSource
	Metrics     *metrics.Metrics
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	deps   Deps
	pages  types.PageConfig
	cfg    types.ServerConfig
	router *chi.Mux
	log    zerolog.Logger
}

// NewServer creates a server with all routes configured.
func NewServer(deps Deps, cfg types.ServerConfig, pages types.PageConfig, log zerolog.Logger) *Server {
	s := &Server{
		deps:   deps,
		pages:  pages,
		cfg:    cfg,
		router: chi.NewRouter(),
		log:    log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(accessLog(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.StripSlashes)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{headerTotalCount, headerTotalPages, headerResult},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", s.deps.Metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		if s.cfg.RequestTimeout > 0 {
			r.Use(requestDeadline(s.cfg.RequestTimeout))
		}
		r.Get("/movies", s.handleMovies)
		r.Get("/search", s.handleSearch)
		r.Get("/genres", s.handleGenre)
		r.Get("/genres/list", s.handleGenreList)
		r.Get("/recommend", s.handleRecommend)
		r.Get("/recmovies", s.handleRecMovies)
		r.Post("/recmovies", s.handleRecMovies)
		r.Get("/latest", s.handleLatest)
	})
}

// requestDeadline bounds the request context. The server's write timeout
// only closes the connection; this deadline is what stops pending catalog
// lookups so the handler can answer with whatever was enriched.
func requestDeadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessLog writes one zerolog line per request.
func accessLog(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			ev := log.Info()
			if status >= 500 {
				ev = log.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
