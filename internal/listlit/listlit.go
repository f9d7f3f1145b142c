// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package listlit reads list literals written either as JSON or in the
// single-quoted style Python's repr() produces, e.g.
//
//	['Avatar', "Schindler's List"]
//	[{'id': 18, 'name': 'Drama'}]
//
// Both the dataset's serialized genre column and the recommendation
// title list arrive in this shape.
package listlit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToJSON rewrites single-quoted string literals in s as JSON strings and
// leaves everything else untouched. Double-quoted strings are copied
// verbatim, so apostrophes inside them survive.
func ToJSON(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s) + 8)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			end, err := scanQuoted(s, i, '"')
			if err != nil {
				return "", err
			}
			b.WriteString(s[i : end+1])
			i = end
		case '\'':
			end, err := scanQuoted(s, i, '\'')
			if err != nil {
				return "", err
			}
			b.WriteString(requote(s[i+1 : end]))
			i = end
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// scanQuoted returns the index of the quote closing the literal opened at start.
func scanQuoted(s string, start int, quote byte) (int, error) {
	for j := start + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j, nil
		}
	}
	return 0, fmt.Errorf("unterminated string starting at offset %d", start)
}

// requote turns the body of a single-quoted literal into a JSON string.
func requote(body string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			b.WriteByte(c)
			b.WriteByte(body[i+1])
			i++
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Unmarshal decodes a JSON or single-quoted list literal into v.
func Unmarshal(s string, v any) error {
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	converted, err := ToJSON(s)
	if err != nil {
		return fmt.Errorf("parsing list literal: %w", err)
	}
	if err := json.Unmarshal([]byte(converted), v); err != nil {
		return fmt.Errorf("parsing list literal: %w", err)
	}
	return nil
}

// Strings decodes a list literal of strings.
func Strings(s string) ([]string, error) {
	var out []string
	if err := Unmarshal(strings.TrimSpace(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
