// Package filter narrows, orders and summarizes already-loaded trip and
// booking collections. Every function is pure: inputs are never mutated and
// the same inputs always produce the same output.
package filter

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/pkordes/driftboat/internal/domain"
)

// matcher reports whether any of the given fields contains the search query
// under Unicode case folding. An empty query matches everything.
type matcher struct {
	fold  cases.Caser
	query string
}

func newMatcher(search string) matcher {
	fold := cases.Fold()
	return matcher{fold: fold, query: fold.String(strings.TrimSpace(search))}
}

func (m matcher) match(fields ...string) bool {
	if m.query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(m.fold.String(f), m.query) {
			return true
		}
	}
	return false
}

// member reports whether v is in set, treating an empty set as "no constraint".
func member[T comparable](set []T, v T) bool {
	return len(set) == 0 || slices.Contains(set, v)
}

// inRange applies a day-granular date range. The range constrains only when
// both bounds are set; an unset timestamp never satisfies an active range.
func inRange(r domain.DateRange, ts domain.Timestamp) bool {
	if !r.IsSet() {
		return true
	}
	if ts.IsZero() {
		return false
	}
	t := ts.Time()
	from := domain.StartOfDay(*r.From)
	to := domain.EndOfDay(*r.To)
	return !t.Before(from) && !t.After(to)
}

// compareTime orders unset timestamps before set ones.
func compareTime(a, b domain.Timestamp) int {
	return a.Time().Compare(b.Time())
}

// sameSet reports whether a and b select the same values, ignoring order.
func sameSet[T ~string](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

// countFacets tallies values, skipping blanks, and returns them in
// alphabetical order.
func countFacets(values []string) []domain.Facet {
	counts := map[string]int{}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		counts[v]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]domain.Facet, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.Facet{Value: k, Count: counts[k]})
	}
	return out
}

// orderedFacets returns the nonzero counts for known values in their given order.
func orderedFacets[T ~string](order []T, counts map[T]int) []domain.Facet {
	out := make([]domain.Facet, 0, len(order))
	for _, v := range order {
		if n := counts[v]; n > 0 {
			out = append(out, domain.Facet{Value: string(v), Count: n})
		}
	}
	return out
}
