// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"fmt"
	"strings"

	"github.com/pdiddy/cinedex/internal/listlit"
)

// ParseTitleList reads the list literal older clients send to
// /api/recmovies, e.g. ['Avatar', "Schindler's List"]. JSON and
// single-quoted strings are both accepted; anything else is an error.
func ParseTitleList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty title list")
	}
	titles, err := listlit.Strings(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid title list: %w", err)
	}
	return titles, nil
}
