package filter

import (
	"cmp"
	"slices"

	"github.com/pkordes/driftboat/internal/domain"
)

// Bookings returns the bookings that satisfy every active constraint in f,
// in their original order. Search matches guest name or email.
func Bookings(bookings []domain.Booking, f domain.BookingFilter) []domain.Booking {
	m := newMatcher(f.Search)
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !m.match(b.GuestName, b.Email) {
			continue
		}
		if !member(f.Statuses, b.Status) || !member(f.TripIDs, b.TripID) {
			continue
		}
		if !inRange(f.Submitted, b.SubmittedAt) || !inRange(f.Preferred, b.PreferredTime()) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// SortBookings returns a new slice ordered by key. An unknown or empty key
// leaves the order unchanged.
func SortBookings(bookings []domain.Booking, key domain.BookingSort) []domain.Booking {
	out := slices.Clone(bookings)
	var fn func(a, b domain.Booking) int
	switch key {
	case domain.BookingSortSubmittedDesc:
		fn = func(a, b domain.Booking) int { return compareTime(b.SubmittedAt, a.SubmittedAt) }
	case domain.BookingSortSubmittedAsc:
		fn = func(a, b domain.Booking) int { return compareTime(a.SubmittedAt, b.SubmittedAt) }
	case domain.BookingSortPreferredAsc:
		fn = func(a, b domain.Booking) int { return compareTime(a.PreferredTime(), b.PreferredTime()) }
	case domain.BookingSortPreferredDesc:
		fn = func(a, b domain.Booking) int { return compareTime(b.PreferredTime(), a.PreferredTime()) }
	case domain.BookingSortGuestsAsc:
		fn = func(a, b domain.Booking) int { return cmp.Compare(a.GuestCount, b.GuestCount) }
	case domain.BookingSortGuestsDesc:
		fn = func(a, b domain.Booking) int { return cmp.Compare(b.GuestCount, a.GuestCount) }
	default:
		return out
	}
	slices.SortStableFunc(out, fn)
	return out
}

// BookingOptions derives status counts and, for every known trip, how many
// bookings reference it. Trips with no bookings are listed with a zero count
// so the trip facet stays stable as filters change.
func BookingOptions(bookings []domain.Booking, trips []domain.Trip) domain.BookingFilterOptions {
	statuses := map[domain.BookingStatus]int{}
	perTrip := map[string]int{}
	for _, b := range bookings {
		statuses[b.Status]++
		perTrip[b.TripID]++
	}

	tripFacets := make([]domain.TripFacet, 0, len(trips))
	for _, t := range trips {
		tripFacets = append(tripFacets, domain.TripFacet{TripID: t.ID, Title: t.Title, Count: perTrip[t.ID]})
	}

	return domain.BookingFilterOptions{
		Statuses: orderedFacets(domain.BookingStatuses, statuses),
		Trips:    tripFacets,
	}
}

// CountBookingFilters counts the filter dimensions in f that differ from defaults.
func CountBookingFilters(f, defaults domain.BookingFilter) int {
	n := 0
	if newMatcher(f.Search).query != "" {
		n++
	}
	if !sameSet(f.Statuses, defaults.Statuses) {
		n++
	}
	if !sameSet(f.TripIDs, defaults.TripIDs) {
		n++
	}
	if !f.Submitted.Equal(defaults.Submitted) {
		n++
	}
	if !f.Preferred.Equal(defaults.Preferred) {
		n++
	}
	return n
}
