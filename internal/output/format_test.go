// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cinedex/internal/query"
	"github.com/pdiddy/cinedex/pkg/types"
)

func TestMovieTable(t *testing.T) {
	poster := "https://img.test/a.jpg"
	page := query.Page{
		Movies: []types.EnrichedMovie{
			{MovieID: 1, Title: "Alpha", Genres: []string{"Action", "Drama"}, PosterURL: &poster},
			{MovieID: 2, Title: strings.Repeat("Long ", 20), Genres: []string{}},
		},
		Page:       1,
		Limit:      2,
		TotalCount: 5,
		TotalPages: 3,
	}

	var buf bytes.Buffer
	MovieTable(&buf, page)
	s := buf.String()

	assert.Contains(t, s, "Alpha")
	assert.Contains(t, s, "Action, Drama")
	assert.Contains(t, s, poster)
	assert.Contains(t, s, "...")
	assert.Contains(t, s, "2 of 5 movies (page 1 of 3)")
}

func TestMovieTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	MovieTable(&buf, query.Page{})
	assert.Contains(t, buf.String(), "No movies found")

	buf.Reset()
	MovieTable(&buf, query.Page{Page: 4, TotalCount: 3, TotalPages: 1})
	assert.Contains(t, buf.String(), "past the end")
}

func TestGenreTable(t *testing.T) {
	var buf bytes.Buffer
	GenreTable(&buf, []types.GenreCount{{Name: "Drama", Count: 12}, {Name: "Action", Count: 3}})
	s := buf.String()
	assert.Contains(t, s, "Drama")
	assert.Contains(t, s, "12")

	buf.Reset()
	GenreTable(&buf, nil)
	assert.Contains(t, buf.String(), "No genres")
}

func TestTitleList(t *testing.T) {
	var buf bytes.Buffer
	TitleList(&buf, []string{"Beta", "Gamma"})
	assert.Equal(t, "  1. Beta\n  2. Gamma\n", buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, []types.EnrichedMovie{{MovieID: 7, Title: "Beta", Genres: []string{}}}))
	assert.JSONEq(t, `[{"movie_id":7,"title":"Beta","genres":[],"posterUrl":null,"overview":null}]`, buf.String())
	assert.Contains(t, buf.String(), "\n  ")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Amélie ...", truncate("Amélie Poulain", 10))
}
