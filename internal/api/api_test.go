// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cinedex/internal/dataset"
	"github.com/pdiddy/cinedex/internal/enrich"
	"github.com/pdiddy/cinedex/internal/metrics"
	"github.com/pdiddy/cinedex/internal/query"
	"github.com/pdiddy/cinedex/internal/recommend"
	"github.com/pdiddy/cinedex/pkg/types"
)

// stubCatalog returns a poster derived from the title for every record
// except those listed in missing.
type stubCatalog struct {
	missing map[string]bool
}

func (c stubCatalog) art(rec types.MovieRecord) *types.Artwork {
	if c.missing[rec.Title] {
		return nil
	}
	poster := "https://img.test/" + strings.ToLower(rec.Title) + ".jpg"
	overview := rec.Title + " overview"
	return &types.Artwork{PosterURL: &poster, Overview: &overview}
}

func (c stubCatalog) ByID(_ context.Context, rec types.MovieRecord) *types.Artwork {
	return c.art(rec)
}

func (c stubCatalog) ByTitle(_ context.Context, rec types.MovieRecord) *types.Artwork {
	return c.art(rec)
}

type stubRecommender struct {
	titles []string
	err    error
	gotArg string
}

func (s *stubRecommender) Recommend(_ context.Context, seed string) ([]string, error) {
	s.gotArg = seed
	return s.titles, s.err
}

type stubLatest struct {
	movie *types.EnrichedMovie
	err   error
}

func (s stubLatest) Latest(context.Context) (*types.EnrichedMovie, error) {
	return s.movie, s.err
}

func testRecords() []types.MovieRecord {
	return []types.MovieRecord{
		{MovieID: 1, Title: "Alpha", Genres: []string{"Action"}},
		{MovieID: 2, Title: "Beta", Genres: []string{"Comedy"}},
		{MovieID: 3, Title: "Gamma", Genres: []string{"Action", "Drama"}},
	}
}

func newTestServer(t *testing.T, rec Recommender, latest LatestSource, missing ...string) *Server {
	t.Helper()
	miss := map[string]bool{}
	for _, m := range missing {
		miss[m] = true
	}
	if rec == nil {
		rec = &stubRecommender{}
	}
	d := types.DefaultConfig()
	return newServerWith(t, stubCatalog{missing: miss}, rec, latest, d.Server, d.Pages)
}

func newServerWith(t *testing.T, cat query.Catalog, rec Recommender, latest LatestSource, srv types.ServerConfig, pages types.PageConfig) *Server {
	t.Helper()
	pipe := query.NewPipeline(dataset.New(testRecords()), enrich.New(4, zerolog.Nop(), nil), cat)
	return NewServer(Deps{
		Movies:      pipe,
		Recommender: rec,
		Latest:      latest,
		Metrics:     metrics.New(),
	}, srv, pages, zerolog.Nop())
}

// blockingCatalog never answers; lookups end only when the request
// context does.
type blockingCatalog struct{}

func (blockingCatalog) ByID(ctx context.Context, _ types.MovieRecord) *types.Artwork {
	<-ctx.Done()
	return nil
}

func (blockingCatalog) ByTitle(ctx context.Context, _ types.MovieRecord) *types.Artwork {
	<-ctx.Done()
	return nil
}

func get(t *testing.T, s http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeMovies(t *testing.T, rec *httptest.ResponseRecorder) []types.EnrichedMovie {
	t.Helper()
	var movies []types.EnrichedMovie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movies))
	return movies
}

func titles(movies []types.EnrichedMovie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Title)
	}
	return out
}

func TestGenre_FiltersAndEnriches(t *testing.T) {
	s := newTestServer(t, nil, nil, "Gamma")

	rec := get(t, s, "/api/genres?q=action")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get(headerTotalCount))
	assert.Equal(t, "1", rec.Header().Get(headerTotalPages))
	assert.Empty(t, rec.Header().Get(headerResult))

	movies := decodeMovies(t, rec)
	require.Equal(t, []string{"Alpha", "Gamma"}, titles(movies))
	require.NotNil(t, movies[0].PosterURL)
	assert.Equal(t, "https://img.test/alpha.jpg", *movies[0].PosterURL)
	assert.Nil(t, movies[1].PosterURL)
}

func TestGenre_PartialWordDoesNotMatch(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/api/genres?q=act")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "empty", rec.Header().Get(headerResult))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGenre_Paging(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/api/genres?q=Action&page=2&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Gamma"}, titles(decodeMovies(t, rec)))
	assert.Equal(t, "2", rec.Header().Get(headerTotalPages))

	rec = get(t, s, "/api/genres?q=Action&page=9&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Empty(t, rec.Header().Get(headerResult))
}

func TestGenre_MissingTerm(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/api/genres")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name   string
		target string
		code   int
		want   []string
		empty  bool
	}{
		{name: "missing q", target: "/api/search", code: http.StatusBadRequest},
		{name: "blank q", target: "/api/search?q=%20%20", code: http.StatusBadRequest},
		{name: "case insensitive", target: "/api/search?q=ALP", code: http.StatusOK, want: []string{"Alpha"}},
		{name: "unpaged returns all", target: "/api/search?q=a", code: http.StatusOK, want: []string{"Alpha", "Beta", "Gamma"}},
		{name: "paged", target: "/api/search?q=a&limit=2&page=2", code: http.StatusOK, want: []string{"Gamma"}},
		{name: "no match", target: "/api/search?q=zzz", code: http.StatusOK, want: []string{}, empty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"error"`)
				return
			}
			assert.Equal(t, tt.want, titles(decodeMovies(t, rec)))
			if tt.empty {
				assert.Equal(t, "empty", rec.Header().Get(headerResult))
			}
		})
	}
}

func TestMovies_Envelope(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/api/movies?page=2&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body movieListBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 2, body.TotalPages)
	assert.Equal(t, 3, body.TotalCount)
	assert.Equal(t, []string{"Gamma"}, titles(body.Movies))
}

func TestMovies_BadPagingFallsBack(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/api/movies?page=abc&limit=-3")
	require.Equal(t, http.StatusOK, rec.Code)

	var body movieListBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 1, body.TotalPages)
	assert.Len(t, body.Movies, 3)
}

func TestRecommend(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := &stubRecommender{titles: []string{"Beta", "Gamma"}}
		s := newTestServer(t, r, nil)

		rec := get(t, s, "/api/recommend?movie="+url.QueryEscape("Alpha"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"recommendations":["Beta","Gamma"]}`, rec.Body.String())
		assert.Equal(t, "Alpha", r.gotArg)
	})

	t.Run("no recommendations", func(t *testing.T) {
		s := newTestServer(t, &stubRecommender{}, nil)
		rec := get(t, s, "/api/recommend?movie=Alpha")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"recommendations":[]}`, rec.Body.String())
	})

	t.Run("missing movie", func(t *testing.T) {
		s := newTestServer(t, nil, nil)
		rec := get(t, s, "/api/recommend")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), msgMovieRequired)
	})

	t.Run("scorer failure", func(t *testing.T) {
		r := &stubRecommender{err: &recommend.ScorerError{Details: "model error", Err: errors.New("exit status 1")}}
		s := newTestServer(t, r, nil)

		rec := get(t, s, "/api/recommend?movie=Alpha")
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var body errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, msgRecommendation, body.Error)
		assert.Equal(t, "model error", body.Details)
	})

	t.Run("unexpected error", func(t *testing.T) {
		r := &stubRecommender{err: errors.New("boom")}
		s := newTestServer(t, r, nil)

		rec := get(t, s, "/api/recommend?movie=Alpha")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "boom")
	})
}

func TestRecMovies(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name   string
		target string
		code   int
		want   []string
	}{
		{name: "list literal", target: "/api/recmovies?q=" + url.QueryEscape(`['Gamma', 'Alpha']`), code: http.StatusOK, want: []string{"Alpha", "Gamma"}},
		{name: "trailing slash", target: "/api/recmovies/?q=" + url.QueryEscape(`["beta"]`), code: http.StatusOK, want: []string{"Beta"}},
		{name: "repeated title", target: "/api/recmovies?title=Gamma&title=Beta", code: http.StatusOK, want: []string{"Beta", "Gamma"}},
		{name: "unknown titles", target: "/api/recmovies?title=Nope", code: http.StatusOK, want: []string{}},
		{name: "missing", target: "/api/recmovies", code: http.StatusBadRequest},
		{name: "malformed literal", target: "/api/recmovies?q=" + url.QueryEscape(`['Gamma'`), code: http.StatusBadRequest},
		{name: "only blanks", target: "/api/recmovies?q=" + url.QueryEscape(`['  ']`), code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.code == http.StatusOK {
				assert.Equal(t, tt.want, titles(decodeMovies(t, rec)))
			}
		})
	}
}

func TestRecMovies_Post(t *testing.T) {
	s := newTestServer(t, nil, nil)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/recmovies", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"titles":["Gamma","Alpha"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Alpha", "Gamma"}, titles(decodeMovies(t, rec)))

	assert.Equal(t, http.StatusBadRequest, post(`{"titles":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"titles":[""]}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`not json`).Code)
}

func TestGenreList(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/api/genres/list")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []types.GenreCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got, types.GenreCount{Name: "Action", Count: 2})
	assert.Len(t, got, 3)
}

func TestLatest(t *testing.T) {
	poster := "https://img.test/new.jpg"

	t.Run("success", func(t *testing.T) {
		s := newTestServer(t, nil, stubLatest{movie: &types.EnrichedMovie{MovieID: 99, Title: "New", Genres: []string{}, PosterURL: &poster}})
		rec := get(t, s, "/api/latest")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"posterUrl":"https://img.test/new.jpg"`)
	})

	t.Run("upstream failure", func(t *testing.T) {
		s := newTestServer(t, nil, stubLatest{err: errors.New("unavailable")})
		rec := get(t, s, "/api/latest")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t, nil, nil)
		rec := get(t, s, "/api/latest")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","movies":3}`, rec.Body.String())

	get(t, s, "/api/genres?q=Action")
	rec = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cinedex_enrich_batch_size")
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/genres/list", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecommend_ScorerProcessFailure(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	scorer := recommend.NewScorer(types.ScorerConfig{
		Command: "sh",
		Args:    []string{"-c", `echo "model error" >&2; exit 1`, "scorer"},
		Timeout: 5 * time.Second,
	}, zerolog.Nop(), nil)
	s := newTestServer(t, scorer, nil)

	rec := get(t, s, "/api/recommend?movie=Alpha")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "model error", body.Details)
}

func TestSearch_UnpagedCappedAtMaxLimit(t *testing.T) {
	d := types.DefaultConfig()
	pages := d.Pages
	pages.DefaultLimit, pages.GenreLimit, pages.MaxLimit = 1, 1, 2
	s := newServerWith(t, stubCatalog{}, &stubRecommender{}, nil, d.Server, pages)

	rec := get(t, s, "/api/search?q=a")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Alpha", "Beta"}, titles(decodeMovies(t, rec)))
	assert.Equal(t, "3", rec.Header().Get(headerTotalCount))
	assert.Equal(t, "2", rec.Header().Get(headerTotalPages))
}

func TestRequestDeadline_StopsEnrichment(t *testing.T) {
	d := types.DefaultConfig()
	srv := d.Server
	srv.RequestTimeout = 50 * time.Millisecond
	s := newServerWith(t, blockingCatalog{}, &stubRecommender{}, nil, srv, d.Pages)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- get(t, s, "/api/genres?q=Action") }()

	select {
	case rec := <-done:
		require.Equal(t, http.StatusOK, rec.Code)
		movies := decodeMovies(t, rec)
		assert.Equal(t, []string{"Alpha", "Gamma"}, titles(movies))
		for _, m := range movies {
			assert.Nil(t, m.PosterURL)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("request outlived its deadline")
	}
}
