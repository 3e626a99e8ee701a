package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/filter"
	"github.com/pkordes/driftboat/internal/repo"
	"github.com/pkordes/driftboat/internal/sanitize"
	"github.com/pkordes/driftboat/internal/validate"
)

// BookingListing is one filtered, ordered view of the booking inbox.
type BookingListing struct {
	Bookings      []domain.Booking
	Options       domain.BookingFilterOptions
	ActiveFilters int
}

// BookingService implements business logic for booking requests.
// It holds the trips repo because a booking is validated against its trip's
// capacity and stores a snapshot of the trip title.
type BookingService struct {
	bookings repo.BookingRepo
	trips    repo.TripRepo
	log      *slog.Logger
	now      func() time.Time
}

// NewBookingService constructs a BookingService backed by the provided repos.
func NewBookingService(bookings repo.BookingRepo, trips repo.TripRepo, log *slog.Logger) *BookingService {
	return &BookingService{bookings: bookings, trips: trips, log: log, now: time.Now}
}

// WithClock returns a copy of s using now as its time source.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	c := *s
	c.now = now
	return &c
}

// Submit validates a public booking request, logs suspicious input, and
// stores the sanitized booking as pending. Tracking metadata is sanitized
// but otherwise stored as-is.
// Returns a domain.FieldErrors (matching domain.ErrValidation) for invalid
// input; nothing is stored in that case.
func (s *BookingService) Submit(ctx context.Context, f validate.BookingForm, tracking map[string]any) (domain.Booking, error) {
	now := s.now()

	var (
		trip    domain.Trip
		tripErr string
	)
	if f.TripID != "" {
		t, err := s.trips.Get(ctx, f.TripID)
		switch {
		case errors.Is(err, domain.ErrNotFound), err == nil && !t.IsActive:
			tripErr = "Selected trip is not available"
		case err != nil:
			return domain.Booking{}, fmt.Errorf("service.BookingService.Submit: %w", err)
		default:
			trip = t
		}
	}

	errs := validate.Booking(f, trip.MaxGuests, now)
	errs.Set("tripId", tripErr)
	if err := errs.Err(); err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Submit: %w", err)
	}

	for field, value := range map[string]string{
		"guestName":       f.GuestName,
		"email":           f.Email,
		"phone":           f.Phone,
		"specialRequests": f.SpecialRequests,
	} {
		sanitize.Advise(ctx, s.log, field, value)
	}

	preferred, _ := domain.ParseTimestamp(f.PreferredDate)
	b := domain.Booking{
		TripID:          trip.ID,
		TripTitle:       trip.Title,
		GuestName:       sanitize.Text(f.GuestName),
		Email:           sanitize.Email(f.Email),
		Phone:           sanitize.Phone(f.Phone),
		PreferredDate:   preferred.Time().Format(time.DateOnly),
		GuestCount:      int(f.GuestCount),
		SpecialRequests: sanitize.Text(f.SpecialRequests),
		Status:          domain.BookingPending,
		SubmittedAt:     domain.At(now),
		Tracking:        sanitize.Map(tracking, sanitize.Options{}),
	}

	result, err := s.bookings.Create(ctx, b)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Submit: %w", err)
	}
	return result, nil
}

// GetByID returns a single booking by ID.
func (s *BookingService) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	result, err := s.bookings.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByID: %w", err)
	}
	return result, nil
}

// Confirm moves a pending booking to confirmed.
func (s *BookingService) Confirm(ctx context.Context, id string) (domain.Booking, error) {
	return s.Transition(ctx, id, domain.BookingConfirmed)
}

// Cancel moves a pending booking to cancelled.
func (s *BookingService) Cancel(ctx context.Context, id string) (domain.Booking, error) {
	return s.Transition(ctx, id, domain.BookingCancelled)
}

// Restore moves a cancelled booking back to pending.
func (s *BookingService) Restore(ctx context.Context, id string) (domain.Booking, error) {
	return s.Transition(ctx, id, domain.BookingPending)
}

// Transition changes a booking's status. Only the status field is written.
// Returns domain.ErrInvalidTransition when the move is not allowed.
func (s *BookingService) Transition(ctx context.Context, id string, next domain.BookingStatus) (domain.Booking, error) {
	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Transition: %w", err)
	}
	if !b.Status.CanTransitionTo(next) {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Transition: %s to %s: %w", b.Status, next, domain.ErrInvalidTransition)
	}
	if err := s.bookings.Patch(ctx, id, map[string]any{"status": next}); err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Transition: %w", err)
	}
	b.Status = next
	return b, nil
}

// List loads every booking and every trip, derives the facets, and applies f.
// An empty sort key lists the newest submissions first.
func (s *BookingService) List(ctx context.Context, f domain.BookingFilter) (BookingListing, error) {
	bookings, trips, err := s.load(ctx)
	if err != nil {
		return BookingListing{}, fmt.Errorf("service.BookingService.List: %w", err)
	}
	if f.Sort == "" {
		f.Sort = domain.BookingSortSubmittedDesc
	}
	return BookingListing{
		Bookings:      filter.SortBookings(filter.Bookings(bookings, f), f.Sort),
		Options:       filter.BookingOptions(bookings, trips),
		ActiveFilters: filter.CountBookingFilters(f, domain.BookingFilter{}),
	}, nil
}

func (s *BookingService) load(ctx context.Context) ([]domain.Booking, []domain.Trip, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return bookings, trips, nil
}
