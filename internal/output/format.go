// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output renders query results for the command line, either as a
// fixed-width table or as indented JSON.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pdiddy/cinedex/internal/query"
	"github.com/pdiddy/cinedex/pkg/types"
)

// MovieTable writes one row per movie followed by a page summary.
func MovieTable(w io.Writer, page query.Page) {
	if len(page.Movies) == 0 {
		if page.Empty() {
			fmt.Fprintln(w, "No movies found.")
		} else {
			fmt.Fprintf(w, "Page %d is past the end (%d pages).\n", page.Page, page.TotalPages)
		}
		return
	}

	fmt.Fprintf(w, "%-8s  %-45s  %-30s  %s\n", "ID", "Title", "Genres", "Poster")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, m := range page.Movies {
		poster := "-"
		if m.PosterURL != nil {
			poster = *m.PosterURL
		}
		fmt.Fprintf(w, "%-8d  %-45s  %-30s  %s\n",
			m.MovieID, truncate(m.Title, 45), truncate(strings.Join(m.Genres, ", "), 30), poster)
	}

	fmt.Fprintf(w, "\n%d of %d movies", len(page.Movies), page.TotalCount)
	if page.TotalPages > 1 {
		fmt.Fprintf(w, " (page %d of %d)", page.Page, page.TotalPages)
	}
	fmt.Fprintln(w)
}

// GenreTable writes genre names with their record counts.
func GenreTable(w io.Writer, genres []types.GenreCount) {
	if len(genres) == 0 {
		fmt.Fprintln(w, "No genres found.")
		return
	}
	fmt.Fprintf(w, "%-30s  %s\n", "Genre", "Movies")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, g := range genres {
		fmt.Fprintf(w, "%-30s  %d\n", truncate(g.Name, 30), g.Count)
	}
}

// TitleList writes one numbered title per line.
func TitleList(w io.Writer, titles []string) {
	if len(titles) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return
	}
	for i, t := range titles {
		fmt.Fprintf(w, "%3d. %s\n", i+1, t)
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
