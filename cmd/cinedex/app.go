// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cinedex/internal/catalog"
	"github.com/pdiddy/cinedex/internal/dataset"
	"github.com/pdiddy/cinedex/internal/enrich"
	"github.com/pdiddy/cinedex/internal/logging"
	"github.com/pdiddy/cinedex/internal/metrics"
	"github.com/pdiddy/cinedex/internal/query"
	"github.com/pdiddy/cinedex/internal/recommend"
	"github.com/pdiddy/cinedex/pkg/types"
)

// app bundles the components every command is built from.
type app struct {
	pipeline *query.Pipeline
	catalog  *catalog.Client
	scorer   *recommend.Scorer
	metrics  *metrics.Metrics
}

// offlineCatalog finds no artwork. Results keep null posters and the
// dataset's cached overviews.
type offlineCatalog struct{}

func (offlineCatalog) ByID(context.Context, types.MovieRecord) *types.Artwork    { return nil }
func (offlineCatalog) ByTitle(context.Context, types.MovieRecord) *types.Artwork { return nil }

// newApp loads the dataset and wires the pipeline. A dataset that cannot
// be loaded is fatal. With offline set, the catalog is never contacted.
func newApp(c types.Config, log zerolog.Logger, m *metrics.Metrics, offline bool) (*app, error) {
	store, err := dataset.Load(c.Dataset.Path, logging.Component(log, "dataset"))
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	a := &app{
		scorer:  recommend.NewScorer(c.Scorer, logging.Component(log, "scorer"), m),
		metrics: m,
	}

	var cat query.Catalog = offlineCatalog{}
	if !offline {
		if c.Catalog.APIKey == "" {
			log.Warn().Msg("no TMDB API key configured; catalog lookups will fail and posters will be empty")
		}
		a.catalog = catalog.NewClient(c.Catalog, logging.Component(log, "catalog"), m)
		cat = a.catalog
	}

	engine := enrich.New(c.Enrich.Workers, logging.Component(log, "enrich"), m)
	a.pipeline = query.NewPipeline(store, engine, cat)
	return a, nil
}
