// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"strconv"
	"strings"
)

// PageRequest selects one page of a result set. Page is 1-based.
type PageRequest struct {
	Page  int
	Limit int
}

// ParsePage coerces raw query-string values into a PageRequest. Missing,
// non-numeric, or non-positive values fall back to page 1 and defaultLimit;
// limits above maxLimit are clamped. It never fails.
func ParsePage(page, limit string, defaultLimit, maxLimit int) PageRequest {
	p := PageRequest{Page: 1, Limit: defaultLimit}
	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil && n >= 1 {
		p.Limit = n
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	return p
}

// Bounds returns the half-open slice range [start, end) the page covers
// in a set of n items. Pages past the end yield an empty range.
func (p PageRequest) Bounds(n int) (start, end int) {
	if p.Page < 1 || p.Limit < 1 {
		return 0, 0
	}
	// Compare page counts before multiplying so huge pages cannot overflow.
	if p.Page-1 >= TotalPages(n, p.Limit) {
		return n, n
	}
	start = (p.Page - 1) * p.Limit
	end = n
	if p.Limit < n-start {
		end = start + p.Limit
	}
	return start, end
}

// TotalPages returns ceil(n / limit).
func TotalPages(n, limit int) int {
	if n <= 0 || limit <= 0 {
		return 0
	}
	return (n-1)/limit + 1
}

// Paginate returns the items of page p.
func Paginate[T any](items []T, p PageRequest) []T {
	start, end := p.Bounds(len(items))
	return items[start:end]
}
