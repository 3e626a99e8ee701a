package domain

import "time"

// BookingExportRow is a single row in the booking export.
// It is a flat, denormalized view: one row per booking, with the referenced
// trip's fields repeated on every booking for that trip. Bookings whose trip
// no longer exists keep their TripTitle snapshot and leave the other trip
// fields empty.
type BookingExportRow struct {
	// Booking fields.
	BookingID       string
	Status          BookingStatus
	SubmittedAt     *time.Time // nil when the stored timestamp is unset
	PreferredDate   string     // "2006-01-02"
	GuestName       string
	Email           string
	Phone           string
	GuestCount      int
	SpecialRequests string

	// Trip fields, looked up by TripID.
	TripID       string
	TripTitle    string
	TripLocation string
	TripDuration string
	TripPrice    int64 // minor units; 0 when the trip is gone
}
