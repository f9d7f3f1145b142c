// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog looks up poster artwork and synopses in the TMDB catalog.
// Lookups never fail loudly: every problem (transport, status, payload,
// zero results, open breaker, cancelled request) is logged and reported
// to the caller as a nil *types.Artwork.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/pdiddy/cinedex/internal/httputil"
	"github.com/pdiddy/cinedex/internal/metrics"
	"github.com/pdiddy/cinedex/pkg/types"
)

// Lookup modes, used as the metrics "mode" label.
const (
	ModeID    = "id"
	ModeTitle = "title"
)

// maxBody caps how much of a catalog response is read.
const maxBody = 1 << 20

// errNoResults marks a well-formed search response with zero hits.
var errNoResults = errors.New("no results")

// errRateLimited marks a lookup that gave up waiting for a limiter token.
var errRateLimited = errors.New("rate limit")

// StatusError is a non-2xx catalog response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog returned HTTP %d", e.Code)
}

// Client calls the catalog API. It is safe for concurrent use; the rate
// limiter and circuit breaker are shared by all requests.
type Client struct {
	cfg     types.CatalogConfig
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewClient builds a client from cfg. m may be nil.
func NewClient(cfg types.CatalogConfig, log zerolog.Logger, m *metrics.Metrics) *Client {
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
		metrics: m,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 10
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: upstreamHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("catalog circuit breaker state changed")
		},
	})
	return c
}

// upstreamHealthy decides which errors count against the breaker. Client
// errors such as 404 say nothing about upstream health; neither does a
// caller giving up or our own limiter.
func upstreamHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, errRateLimited) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code < 500 && se.Code != http.StatusTooManyRequests
	}
	return false
}

// ByTitle searches the catalog for rec's title and returns the artwork of
// the first result.
func (c *Client) ByTitle(ctx context.Context, rec types.MovieRecord) *types.Artwork {
	params := url.Values{
		"query":         {rec.Title},
		"include_adult": {"false"},
	}
	return c.lookup(ctx, ModeTitle, rec, "/search/movie", params, func(body []byte) (*types.Artwork, error) {
		var sr searchResponse
		if err := json.Unmarshal(body, &sr); err != nil {
			return nil, fmt.Errorf("parsing search response: %w", err)
		}
		if len(sr.Results) == 0 {
			return nil, errNoResults
		}
		return c.artwork(sr.Results[0].PosterPath, sr.Results[0].Overview), nil
	})
}

// ByID fetches rec's catalog detail page by movie id.
func (c *Client) ByID(ctx context.Context, rec types.MovieRecord) *types.Artwork {
	path := "/movie/" + strconv.FormatInt(rec.MovieID, 10)
	return c.lookup(ctx, ModeID, rec, path, nil, func(body []byte) (*types.Artwork, error) {
		var d movieDetail
		if err := json.Unmarshal(body, &d); err != nil {
			return nil, fmt.Errorf("parsing movie detail: %w", err)
		}
		return c.artwork(d.PosterPath, d.Overview), nil
	})
}

// Latest returns the most recently added catalog movie. Unlike the
// per-record lookups it reports failures, since there is no record to
// fall back to.
func (c *Client) Latest(ctx context.Context) (*types.EnrichedMovie, error) {
	body, err := c.get(ctx, "/movie/latest", nil)
	if err != nil {
		return nil, err
	}
	var d movieDetail
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("parsing movie detail: %w", err)
	}

	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		if g.Name != "" {
			genres = append(genres, g.Name)
		}
	}
	art := c.artwork(d.PosterPath, d.Overview)
	return &types.EnrichedMovie{
		MovieID:   d.ID,
		Title:     d.Title,
		Genres:    genres,
		PosterURL: art.PosterURL,
		Overview:  art.Overview,
	}, nil
}

// lookup runs one request and converts every failure into nil.
func (c *Client) lookup(ctx context.Context, mode string, rec types.MovieRecord, path string, params url.Values, parse func([]byte) (*types.Artwork, error)) *types.Artwork {
	start := time.Now()
	body, err := c.get(ctx, path, params)
	var art *types.Artwork
	if err == nil {
		art, err = parse(body)
	}
	took := time.Since(start)

	switch {
	case err == nil:
		c.metrics.ObserveLookup(mode, metrics.OutcomeHit, took)
		c.log.Debug().Str("mode", mode).Int64("movie_id", rec.MovieID).Dur("took", took).Msg("catalog lookup")
		return art
	case errors.Is(err, errNoResults):
		c.metrics.ObserveLookup(mode, metrics.OutcomeNotFound, took)
		c.log.Debug().Str("mode", mode).Str("title", rec.Title).Msg("catalog has no match")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.ObserveLookup(mode, metrics.OutcomeRejected, took)
		c.log.Debug().Str("mode", mode).Int64("movie_id", rec.MovieID).Msg("catalog lookup skipped, breaker open")
	case errors.Is(err, context.Canceled):
		c.metrics.ObserveLookup(mode, metrics.OutcomeRejected, took)
		c.log.Debug().Str("mode", mode).Int64("movie_id", rec.MovieID).Msg("catalog lookup cancelled")
	default:
		c.metrics.ObserveLookup(mode, metrics.OutcomeError, took)
		c.log.Warn().Err(err).Str("mode", mode).Int64("movie_id", rec.MovieID).Str("title", rec.Title).
			Msg("catalog lookup failed")
	}
	return nil
}

// wait takes one limiter token. Every attempt, retries included, pays one.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", errRateLimited, err)
	}
	return nil
}

// get performs a rate-limited, retried, breaker-guarded GET and returns the body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := c.newRequest(ctx, path, params)
		if err != nil {
			return nil, err
		}
		policy := httputil.RetryPolicy{
			MaxRetries:    c.cfg.MaxRetries,
			BaseDelay:     c.cfg.RetryBaseDelay,
			BeforeAttempt: c.wait,
		}
		resp, err := httputil.DoWithRetry(ctx, c.http, req, policy)
		if err != nil {
			return nil, fmt.Errorf("catalog request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
			return nil, &StatusError{Code: resp.StatusCode}
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("reading catalog response: %w", err)
		}
		return body, nil
	})
}

// newRequest builds the request URL and attaches credentials. A TMDB v4
// read token (a JWT) goes in the Authorization header; a v3 key is a
// query parameter.
func (c *Client) newRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	if params == nil {
		params = url.Values{}
	}
	key := c.cfg.APIKey
	bearer := strings.HasPrefix(key, "eyJ")
	if key != "" && !bearer {
		params.Set("api_key", key)
	}

	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if bearer {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	return req, nil
}

// artwork builds an Artwork, mapping empty catalog fields to nil.
func (c *Client) artwork(posterPath, overview string) *types.Artwork {
	art := &types.Artwork{}
	if posterPath != "" {
		u := strings.TrimRight(c.cfg.ImageBaseURL, "/") + "/" + strings.TrimLeft(posterPath, "/")
		art.PosterURL = &u
	}
	if overview = strings.TrimSpace(overview); overview != "" {
		art.Overview = &overview
	}
	return art
}

// TMDB JSON structures.
type searchResponse struct {
	Page         int           `json:"page"`
	TotalResults int           `json:"total_results"`
	Results      []movieResult `json:"results"`
}

type movieResult struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
	Overview   string `json:"overview"`
}

type movieDetail struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	PosterPath string      `json:"poster_path"`
	Overview   string      `json:"overview"`
	Genres     []genreJSON `json:"genres"`
}

type genreJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
