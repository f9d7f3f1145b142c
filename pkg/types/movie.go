// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the cinedex service:
// dataset records, catalog artwork, enriched movies, and stage configuration.
package types

import "strings"

// MovieRecord is one entry of the base dataset. Records are immutable after
// the dataset store loads them.
type MovieRecord struct {
	// MovieID is the catalog identifier and the record's stable identity.
	MovieID int64 `json:"movie_id" yaml:"movie_id"`

	// Title is the display title as stored in the dataset.
	Title string `json:"title" yaml:"title"`

	// Genres is the genre set, parsed once at load time. Names keep the
	// dataset's casing and order; duplicates (case-insensitive) are removed.
	Genres []string `json:"genres" yaml:"genres"`

	// Overview is an optional synopsis cached in the dataset.
	Overview string `json:"overview,omitempty" yaml:"overview,omitempty"`
}

// HasGenre reports whether genre is an exact, case-insensitive member of the
// record's genre set.
func (m MovieRecord) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// Artwork is the result of one catalog lookup. Either field may be nil when
// the catalog has no value for it.
type Artwork struct {
	PosterURL *string
	Overview  *string
}

// EnrichedMovie is a MovieRecord merged with catalog artwork. It is created
// per request and never persisted.
type EnrichedMovie struct {
	MovieID   int64    `json:"movie_id" yaml:"movie_id"`
	Title     string   `json:"title" yaml:"title"`
	Genres    []string `json:"genres" yaml:"genres"`
	PosterURL *string  `json:"posterUrl" yaml:"poster_url"`
	Overview  *string  `json:"overview" yaml:"overview"`
}

// Enrich merges art into m. A nil art leaves the poster null and falls back
// to the dataset's cached overview, if any.
func Enrich(m MovieRecord, art *Artwork) EnrichedMovie {
	e := EnrichedMovie{
		MovieID: m.MovieID,
		Title:   m.Title,
		Genres:  m.Genres,
	}
	if e.Genres == nil {
		e.Genres = []string{}
	}
	if art != nil {
		e.PosterURL = art.PosterURL
		e.Overview = art.Overview
	}
	if e.Overview == nil && m.Overview != "" {
		overview := m.Overview
		e.Overview = &overview
	}
	return e
}

// GenreCount is a distinct genre name and the number of records tagged with it.
type GenreCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}
