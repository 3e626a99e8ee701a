package domain

// BookingStatus is the lifecycle state of a booking request.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingStatuses lists every valid BookingStatus in display order.
var BookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an administrator may move a booking from s to next.
// Allowed moves: pending→confirmed, pending→cancelled, cancelled→pending.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingCancelled:
		return next == BookingPending
	}
	return false
}

// Booking is a visitor's request to join a trip.
// TripTitle is a snapshot of the trip title at submission time.
// Tracking holds opaque client metadata; the core never interprets it.
type Booking struct {
	ID              string         `json:"id"`
	TripID          string         `json:"tripId"`
	TripTitle       string         `json:"tripTitle"`
	GuestName       string         `json:"guestName"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	PreferredDate   string         `json:"preferredDate"` // "2006-01-02"
	GuestCount      int            `json:"guestCount"`
	SpecialRequests string         `json:"specialRequests,omitempty"`
	Status          BookingStatus  `json:"status"`
	SubmittedAt     Timestamp      `json:"submittedAt"`
	Tracking        map[string]any `json:"tracking,omitempty"`
}

// PreferredTime returns the preferred date as a Timestamp at UTC midnight.
// An unset Timestamp is returned when the stored value cannot be parsed.
func (b Booking) PreferredTime() Timestamp {
	ts, err := ParseTimestamp(b.PreferredDate)
	if err != nil {
		return Timestamp{}
	}
	return ts
}
