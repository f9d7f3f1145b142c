// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query implements the retrieval modes of the service. Each mode
// filters the dataset, paginates, and then enriches only the surviving
// records.
package query

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/cinedex/internal/dataset"
	"github.com/pdiddy/cinedex/internal/enrich"
	"github.com/pdiddy/cinedex/pkg/types"
)

// ErrMissingTerm is returned when a search or genre term is empty.
var ErrMissingTerm = errors.New("query term is required")

// ErrNoTitles is returned when a title-list lookup has no usable titles.
var ErrNoTitles = errors.New("no movie titles provided")

// Catalog supplies artwork for a record, by catalog id or by title search.
type Catalog interface {
	ByID(ctx context.Context, rec types.MovieRecord) *types.Artwork
	ByTitle(ctx context.Context, rec types.MovieRecord) *types.Artwork
}

// Page is one enriched result page. TotalCount and TotalPages always
// describe the filtered set the page was cut from.
type Page struct {
	Movies     []types.EnrichedMovie
	Page       int
	Limit      int
	TotalCount int
	TotalPages int
}

// Empty reports whether the filter matched nothing. A page past the end
// of a non-empty set is not Empty.
func (p Page) Empty() bool { return p.TotalCount == 0 }

// Pipeline composes the dataset store, the enrichment engine, and the catalog.
type Pipeline struct {
	store    *dataset.Store
	enricher *enrich.Engine
	catalog  Catalog
}

// NewPipeline wires a pipeline. The store is shared read-only.
func NewPipeline(store *dataset.Store, enricher *enrich.Engine, catalog Catalog) *Pipeline {
	return &Pipeline{store: store, enricher: enricher, catalog: catalog}
}

// List returns page p of the full catalog in stored order, enriched by
// catalog id.
func (q *Pipeline) List(ctx context.Context, p PageRequest) Page {
	return q.page(ctx, q.store.All(), p, q.catalog.ByID)
}

// Search matches titles containing text, ignoring case. With a nil p every
// match is enriched; otherwise only page p is.
func (q *Pipeline) Search(ctx context.Context, text string, p *PageRequest) (Page, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Page{}, ErrMissingTerm
	}
	matches := q.store.Filter(dataset.TitleContains(text))
	if p == nil {
		return q.all(ctx, matches), nil
	}
	return q.page(ctx, matches, *p, q.catalog.ByTitle), nil
}

// ByGenre returns page p of the records tagged with genre (exact match,
// ignoring case).
func (q *Pipeline) ByGenre(ctx context.Context, genre string, p PageRequest) (Page, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return Page{}, ErrMissingTerm
	}
	return q.page(ctx, q.store.Filter(dataset.HasGenre(genre)), p, q.catalog.ByTitle), nil
}

// ByTitles returns the records whose title equals one of titles, ignoring
// case, in stored order. It is how scorer output reaches the catalog.
func (q *Pipeline) ByTitles(ctx context.Context, titles []string) (Page, error) {
	var clean []string
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return Page{}, ErrNoTitles
	}
	return q.all(ctx, q.store.Filter(dataset.TitleIn(clean))), nil
}

// Genres lists the dataset's genres with record counts.
func (q *Pipeline) Genres() []types.GenreCount {
	return q.store.Genres()
}

// Count is the number of records in the dataset.
func (q *Pipeline) Count() int {
	return q.store.Len()
}

func (q *Pipeline) all(ctx context.Context, matches []types.MovieRecord) Page {
	n := len(matches)
	return q.page(ctx, matches, PageRequest{Page: 1, Limit: max(n, 1)}, q.catalog.ByTitle)
}

func (q *Pipeline) page(ctx context.Context, matches []types.MovieRecord, p PageRequest, lookup enrich.LookupFunc) Page {
	slice := Paginate(matches, p)
	return Page{
		Movies:     q.enricher.Enrich(ctx, slice, lookup),
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: len(matches),
		TotalPages: TotalPages(len(matches), p.Limit),
	}
}
