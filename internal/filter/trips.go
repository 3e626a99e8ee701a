package filter

import (
	"cmp"
	"math"
	"slices"

	"github.com/pkordes/driftboat/internal/domain"
)

// Trips returns the trips that satisfy every active constraint in f, in
// their original order. Price bounds are compared in major currency units.
func Trips(trips []domain.Trip, f domain.TripFilter) []domain.Trip {
	m := newMatcher(f.Search)
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if !m.match(t.Title, t.Description, t.Location) {
			continue
		}
		if !member(f.Difficulties, t.Difficulty) ||
			!member(f.Durations, t.Duration) ||
			!member(f.Locations, t.Location) ||
			!member(f.Statuses, t.StatusLabel()) {
			continue
		}
		if f.Price != nil {
			p := t.PriceMajor()
			if p < f.Price.Min || p > f.Price.Max {
				continue
			}
		}
		if !inRange(f.Created, t.CreatedAt) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortTrips returns a new slice ordered by key. Popularity and unknown keys
// leave the order unchanged; there is no popularity signal to sort by.
func SortTrips(trips []domain.Trip, key domain.TripSort) []domain.Trip {
	out := slices.Clone(trips)
	var fn func(a, b domain.Trip) int
	switch key {
	case domain.TripSortPriceAsc:
		fn = func(a, b domain.Trip) int { return cmp.Compare(a.Price, b.Price) }
	case domain.TripSortPriceDesc:
		fn = func(a, b domain.Trip) int { return cmp.Compare(b.Price, a.Price) }
	case domain.TripSortNewest:
		fn = func(a, b domain.Trip) int { return compareTime(b.CreatedAt, a.CreatedAt) }
	case domain.TripSortOldest:
		fn = func(a, b domain.Trip) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	default:
		return out
	}
	slices.SortStableFunc(out, fn)
	return out
}

// TripOptions derives the facet summary for a trip collection. The price
// range is widened outward to multiples of 10 major units and is {0, 0}
// for an empty collection.
func TripOptions(trips []domain.Trip) domain.TripFilterOptions {
	difficulties := map[domain.Difficulty]int{}
	statuses := map[string]int{}
	durations := make([]string, 0, len(trips))
	locations := make([]string, 0, len(trips))

	var lo, hi float64
	for i, t := range trips {
		difficulties[t.Difficulty]++
		statuses[t.StatusLabel()]++
		durations = append(durations, t.Duration)
		locations = append(locations, t.Location)

		p := t.PriceMajor()
		if i == 0 || p < lo {
			lo = p
		}
		if i == 0 || p > hi {
			hi = p
		}
	}

	return domain.TripFilterOptions{
		Difficulties: orderedFacets(domain.Difficulties, difficulties),
		Durations:    countFacets(durations),
		Locations:    countFacets(locations),
		Statuses:     orderedFacets([]string{domain.TripStatusActive, domain.TripStatusInactive}, statuses),
		PriceRange: domain.PriceRange{
			Min: math.Floor(lo/10) * 10,
			Max: math.Ceil(hi/10) * 10,
		},
	}
}

// CountTripFilters counts the filter dimensions in f that differ from
// defaults. The sort key is not a filter and is never counted.
func CountTripFilters(f, defaults domain.TripFilter) int {
	n := 0
	if newMatcher(f.Search).query != "" {
		n++
	}
	if !sameSet(f.Difficulties, defaults.Difficulties) {
		n++
	}
	if !sameSet(f.Durations, defaults.Durations) {
		n++
	}
	if !sameSet(f.Locations, defaults.Locations) {
		n++
	}
	if !sameSet(f.Statuses, defaults.Statuses) {
		n++
	}
	if f.Price != nil && (defaults.Price == nil || *f.Price != *defaults.Price) {
		n++
	}
	if !f.Created.Equal(defaults.Created) {
		n++
	}
	return n
}
