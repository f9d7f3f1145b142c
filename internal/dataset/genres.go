// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/cinedex/internal/listlit"
)

// noGenres is the MovieLens placeholder for an untagged movie.
const noGenres = "(no genres listed)"

// ParseGenres converts a serialized genre field into a genre set. Accepted
// forms are a JSON (or single-quoted) list of {"id","name"} objects, a list
// of plain names, or a "|"-separated string of bare names. An empty field
// is an empty set.
func ParseGenres(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "[") {
		// Structured-looking text that is not a list is malformed, not a name.
		if strings.ContainsAny(raw, `{}[]"`) || strings.HasPrefix(raw, "'") {
			return nil, fmt.Errorf("malformed genre field %q", raw)
		}
		return normalizeGenres(strings.Split(raw, "|")), nil
	}

	var elems []json.RawMessage
	if err := listlit.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(elems))
	for i, e := range elems {
		name, err := genreName(e)
		if err != nil {
			return nil, fmt.Errorf("genre %d: %w", i, err)
		}
		names = append(names, name)
	}
	return normalizeGenres(names), nil
}

// genreName reads one list element: either a bare string or an object with a name.
func genreName(e json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(e, &s); err == nil {
		return s, nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(e, &obj); err != nil {
		return "", fmt.Errorf("expected string or object, got %s", string(e))
	}
	if obj.Name == "" {
		return "", fmt.Errorf("object has no name: %s", string(e))
	}
	return obj.Name, nil
}

// genresFromValue handles genre fields that were decoded into generic
// values (YAML), where the list may already be structured.
func genresFromValue(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return ParseGenres(t)
	case []any:
		names := make([]string, 0, len(t))
		for i, e := range t {
			switch g := e.(type) {
			case string:
				names = append(names, g)
			case map[string]any:
				name, ok := g["name"].(string)
				if !ok || name == "" {
					return nil, fmt.Errorf("genre %d: object has no name", i)
				}
				names = append(names, name)
			default:
				return nil, fmt.Errorf("genre %d: unsupported value %v", i, e)
			}
		}
		return normalizeGenres(names), nil
	default:
		return nil, fmt.Errorf("unsupported genre value of type %T", v)
	}
}

// normalizeGenres trims names, drops empties and placeholders, and removes
// case-insensitive duplicates while keeping first-seen order and casing.
func normalizeGenres(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || strings.EqualFold(n, noGenres) {
			continue
		}
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
