// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/pdiddy/cinedex/internal/query"
	"github.com/pdiddy/cinedex/internal/recommend"
)

const (
	msgQueryRequired  = `Query parameter "q" is required`
	msgGenreRequired  = `Query parameter "q" (genre) is required`
	msgMovieRequired  = "Movie name is required"
	msgNoTitles       = "No movie titles provided"
	msgRecommendation = "Error while generating recommendations"
	msgLatest         = "Failed to fetch latest movie"
	msgInternal       = "Internal server error"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 64 << 10

var validate = validator.New(validator.WithRequiredStructEnabled())

// titlesRequest is the POST body of /api/recmovies.
type titlesRequest struct {
	Titles []string `json:"titles" validate:"required,min=1,dive,required"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.log, http.StatusOK, healthBody{Status: "ok", Movies: s.deps.Movies.Count()})
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := query.ParsePage(q.Get("page"), q.Get("limit"), s.pages.DefaultLimit, s.pages.MaxLimit)
	page := s.deps.Movies.List(r.Context(), p)
	respondJSON(w, s.log, http.StatusOK, movieListBody{
		Movies:     page.Movies,
		TotalPages: page.TotalPages,
		TotalCount: page.TotalCount,
		Page:       page.Page,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := strings.TrimSpace(q.Get("q"))
	if text == "" {
		respondError(w, s.log, http.StatusBadRequest, msgQueryRequired, "")
		return
	}
	// Without paging the first max_limit matches are returned; the totals
	// headers still describe every match.
	p := query.PageRequest{Page: 1, Limit: s.pages.MaxLimit}
	if q.Has("page") || q.Has("limit") {
		p = query.ParsePage(q.Get("page"), q.Get("limit"), s.pages.DefaultLimit, s.pages.MaxLimit)
	}
	page, err := s.deps.Movies.Search(r.Context(), text, &p)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	respondMovies(w, s.log, page)
}

func (s *Server) handleGenre(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	genre := strings.TrimSpace(q.Get("q"))
	if genre == "" {
		respondError(w, s.log, http.StatusBadRequest, msgGenreRequired, "")
		return
	}
	p := query.ParsePage(q.Get("page"), q.Get("limit"), s.pages.GenreLimit, s.pages.MaxLimit)
	page, err := s.deps.Movies.ByGenre(r.Context(), genre, p)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	respondMovies(w, s.log, page)
}

func (s *Server) handleGenreList(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.log, http.StatusOK, s.deps.Movies.Genres())
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	seed := strings.TrimSpace(r.URL.Query().Get("movie"))
	if seed == "" {
		respondError(w, s.log, http.StatusBadRequest, msgMovieRequired, "")
		return
	}
	titles, err := s.deps.Recommender.Recommend(r.Context(), seed)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	if titles == nil {
		titles = []string{}
	}
	respondJSON(w, s.log, http.StatusOK, recommendBody{Recommendations: titles})
}

func (s *Server) handleRecMovies(w http.ResponseWriter, r *http.Request) {
	titles, ok := s.readTitles(w, r)
	if !ok {
		return
	}
	page, err := s.deps.Movies.ByTitles(r.Context(), titles)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}
	respondMovies(w, s.log, page)
}

// readTitles collects the title list from a JSON body (POST), repeated
// title parameters, or a list literal in q. It writes the 400 itself.
func (s *Server) readTitles(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	if r.Method == http.MethodPost {
		var req titlesRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			respondError(w, s.log, http.StatusBadRequest, "Invalid request body", err.Error())
			return nil, false
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, s.log, http.StatusBadRequest, msgNoTitles, "")
			return nil, false
		}
		return req.Titles, true
	}

	q := r.URL.Query()
	if titles := q["title"]; len(titles) > 0 {
		return titles, true
	}
	raw := strings.TrimSpace(q.Get("q"))
	if raw == "" {
		respondError(w, s.log, http.StatusBadRequest, msgNoTitles, "")
		return nil, false
	}
	titles, err := recommend.ParseTitleList(raw)
	if err != nil {
		respondError(w, s.log, http.StatusBadRequest, msgNoTitles, err.Error())
		return nil, false
	}
	return titles, true
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if s.deps.Latest == nil {
		respondError(w, s.log, http.StatusBadGateway, msgLatest, "catalog not configured")
		return
	}
	movie, err := s.deps.Latest.Latest(r.Context())
	if err != nil {
		s.log.Warn().Err(err).Msg("fetching latest movie")
		respondError(w, s.log, http.StatusBadGateway, msgLatest, "")
		return
	}
	respondJSON(w, s.log, http.StatusOK, movie)
}

// respondPipelineError maps pipeline and scorer errors onto statuses.
func (s *Server) respondPipelineError(w http.ResponseWriter, err error) {
	var serr *recommend.ScorerError
	switch {
	case errors.Is(err, query.ErrMissingTerm):
		respondError(w, s.log, http.StatusBadRequest, msgQueryRequired, "")
	case errors.Is(err, query.ErrNoTitles):
		respondError(w, s.log, http.StatusBadRequest, msgNoTitles, "")
	case errors.Is(err, recommend.ErrEmptySeed):
		respondError(w, s.log, http.StatusBadRequest, msgMovieRequired, "")
	case errors.As(err, &serr):
		respondError(w, s.log, http.StatusInternalServerError, msgRecommendation, serr.Details)
	default:
		s.log.Error().Err(err).Msg("request failed")
		respondError(w, s.log, http.StatusInternalServerError, msgInternal, "")
	}
}
