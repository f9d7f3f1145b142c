// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset loads the base movie dataset once at startup and serves
// read-only, order-preserving filters over it.
package dataset

import (
	"sort"
	"strings"

	"github.com/pdiddy/cinedex/pkg/types"
)

// Predicate selects records.
type Predicate func(types.MovieRecord) bool

// Store holds the loaded records. It is never mutated after construction,
// so concurrent readers need no locking.
type Store struct {
	records []types.MovieRecord
}

// New wraps already-parsed records. The slice is owned by the store afterwards.
func New(records []types.MovieRecord) *Store {
	return &Store{records: records}
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// All returns every record in stored order. Callers must not modify it.
func (s *Store) All() []types.MovieRecord { return s.records }

// Filter returns the records matching pred in stored order. A nil pred
// matches everything.
func (s *Store) Filter(pred Predicate) []types.MovieRecord {
	if pred == nil {
		return s.records
	}
	var out []types.MovieRecord
	for _, r := range s.records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Genres lists each distinct genre with the number of records tagged with
// it, sorted by name. The first casing seen in the dataset is reported.
func (s *Store) Genres() []types.GenreCount {
	index := make(map[string]int)
	var counts []types.GenreCount
	for _, r := range s.records {
		for _, g := range r.Genres {
			key := strings.ToLower(g)
			if i, ok := index[key]; ok {
				counts[i].Count++
				continue
			}
			index[key] = len(counts)
			counts = append(counts, types.GenreCount{Name: g, Count: 1})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		return strings.ToLower(counts[i].Name) < strings.ToLower(counts[j].Name)
	})
	return counts
}

// TitleContains matches titles containing text, ignoring case.
func TitleContains(text string) Predicate {
	needle := strings.ToLower(text)
	return func(r types.MovieRecord) bool {
		return strings.Contains(strings.ToLower(r.Title), needle)
	}
}

// HasGenre matches records whose genre set contains genre exactly, ignoring case.
func HasGenre(genre string) Predicate {
	return func(r types.MovieRecord) bool {
		return r.HasGenre(genre)
	}
}

// TitleIn matches records whose title equals one of titles, ignoring case
// and surrounding whitespace.
func TitleIn(titles []string) Predicate {
	want := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		want[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return func(r types.MovieRecord) bool {
		_, ok := want[strings.ToLower(strings.TrimSpace(r.Title))]
		return ok
	}
}
