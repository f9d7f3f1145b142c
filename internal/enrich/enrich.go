// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich merges catalog artwork into dataset records with a
// bounded, order-preserving fan-out.
package enrich

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/cinedex/internal/metrics"
	"github.com/pdiddy/cinedex/pkg/types"
)

// DefaultWorkers is used when an Engine is built with a non-positive size.
const DefaultWorkers = 8

// LookupFunc fetches artwork for one record. It reports every failure as
// nil; it must not block past ctx.
type LookupFunc func(ctx context.Context, rec types.MovieRecord) *types.Artwork

// Engine runs lookups for a batch of records, at most Workers at a time.
// One Engine is shared by all requests; each Enrich call gets its own
// semaphore so a large batch cannot starve other requests of slots.
type Engine struct {
	workers int64
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// New returns an Engine running at most workers lookups per batch.
func New(workers int, log zerolog.Logger, m *metrics.Metrics) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{workers: int64(workers), log: log, metrics: m}
}

// Enrich returns one EnrichedMovie per record, in input order. A failed or
// panicking lookup leaves that movie's poster null; it never cancels its
// siblings and never fails the batch. When ctx ends, lookups not yet
// started are skipped and their records are returned unenriched.
func (e *Engine) Enrich(ctx context.Context, records []types.MovieRecord, lookup LookupFunc) []types.EnrichedMovie {
	e.metrics.ObserveBatch(len(records))

	arts := make([]*types.Artwork, len(records))
	sem := semaphore.NewWeighted(e.workers)
	var wg sync.WaitGroup

	for i := range records {
		if err := sem.Acquire(ctx, 1); err != nil {
			e.log.Debug().Int("skipped", len(records)-i).Msg("enrichment cancelled")
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			arts[i] = e.safeLookup(ctx, records[i], lookup)
		}(i)
	}
	wg.Wait()

	out := make([]types.EnrichedMovie, len(records))
	for i, rec := range records {
		out[i] = types.Enrich(rec, arts[i])
	}
	return out
}

// safeLookup turns a panic inside lookup into a nil result.
func (e *Engine) safeLookup(ctx context.Context, rec types.MovieRecord, lookup LookupFunc) (art *types.Artwork) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Int64("movie_id", rec.MovieID).Msg("lookup panicked")
			art = nil
		}
	}()
	return lookup(ctx, rec)
}
