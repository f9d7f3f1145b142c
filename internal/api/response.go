// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/pdiddy/cinedex/internal/query"
	"github.com/pdiddy/cinedex/pkg/types"
)

const (
	headerTotalCount = "X-Total-Count"
	headerTotalPages = "X-Total-Pages"
	headerResult     = "X-Result"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// movieListBody is the paged envelope of the full listing.
type movieListBody struct {
	Movies     []types.EnrichedMovie `json:"movies"`
	TotalPages int                   `json:"totalPages"`
	TotalCount int                   `json:"totalCount"`
	Page       int                   `json:"page"`
}

type recommendBody struct {
	Recommendations []string `json:"recommendations"`
}

type healthBody struct {
	Status string `json:"status"`
	Movies int    `json:"movies"`
}

func respondJSON(w http.ResponseWriter, log zerolog.Logger, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshaling response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Debug().Err(err).Msg("writing response")
	}
}

func respondError(w http.ResponseWriter, log zerolog.Logger, status int, msg, details string) {
	respondJSON(w, log, status, errorBody{Error: msg, Details: details})
}

// respondMovies writes a bare array of enriched movies. Totals go in
// headers so the body stays an array; an empty filter result is marked
// with X-Result: empty.
func respondMovies(w http.ResponseWriter, log zerolog.Logger, page query.Page) {
	h := w.Header()
	h.Set(headerTotalCount, strconv.Itoa(page.TotalCount))
	h.Set(headerTotalPages, strconv.Itoa(page.TotalPages))
	if page.Empty() {
		h.Set(headerResult, "empty")
	}
	movies := page.Movies
	if movies == nil {
		movies = []types.EnrichedMovie{}
	}
	respondJSON(w, log, http.StatusOK, movies)
}
