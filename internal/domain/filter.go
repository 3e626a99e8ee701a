package domain

import "time"

// PriceRange is an inclusive price bound in major currency units.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DateRange is an inclusive calendar-day range. It constrains only when both bounds are set.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsSet reports whether both bounds are present.
func (r DateRange) IsSet() bool {
	return r.From != nil && r.To != nil
}

// Equal reports whether r and o cover the same calendar days.
func (r DateRange) Equal(o DateRange) bool {
	return sameDay(r.From, o.From) && sameDay(r.To, o.To)
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return CivilDate(*a).Equal(CivilDate(*b))
}

// TripSort selects the ordering of a trip listing.
type TripSort string

const (
	TripSortPriceAsc   TripSort = "price-asc"
	TripSortPriceDesc  TripSort = "price-desc"
	TripSortNewest     TripSort = "newest"
	TripSortOldest     TripSort = "oldest"
	TripSortPopularity TripSort = "popularity" // no popularity signal exists yet; order is left as-is
)

// TripFilter is the trip listing filter state. Zero values impose no constraint.
// Statuses and Created are honored only on admin listings.
type TripFilter struct {
	Search       string
	Difficulties []Difficulty
	Durations    []string
	Locations    []string
	Price        *PriceRange
	Statuses     []string // "active" / "inactive"
	Created      DateRange
	Sort         TripSort
}

// BookingSort selects the ordering of a booking listing.
type BookingSort string

const (
	BookingSortSubmittedDesc BookingSort = "submitted-desc"
	BookingSortSubmittedAsc  BookingSort = "submitted-asc"
	BookingSortPreferredAsc  BookingSort = "preferred-asc"
	BookingSortPreferredDesc BookingSort = "preferred-desc"
	BookingSortGuestsAsc     BookingSort = "guests-asc"
	BookingSortGuestsDesc    BookingSort = "guests-desc"
)

// BookingFilter is the admin booking listing filter state. Zero values impose no constraint.
type BookingFilter struct {
	Search    string
	Statuses  []BookingStatus
	TripIDs   []string
	Submitted DateRange
	Preferred DateRange
	Sort      BookingSort
}

// Facet is one distinct value of a filterable dimension and how often it occurs.
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TripFilterOptions summarizes the facets available in a trip collection.
type TripFilterOptions struct {
	Difficulties []Facet    `json:"difficulties"`
	Durations    []Facet    `json:"durations"`
	Locations    []Facet    `json:"locations"`
	Statuses     []Facet    `json:"statuses"`
	PriceRange   PriceRange `json:"priceRange"`
}

// TripFacet counts the bookings that reference one known trip.
type TripFacet struct {
	TripID string `json:"tripId"`
	Title  string `json:"title"`
	Count  int    `json:"count"`
}

// BookingFilterOptions summarizes the facets available in a booking collection.
type BookingFilterOptions struct {
	Statuses []Facet     `json:"statuses"`
	Trips    []TripFacet `json:"trips"`
}
