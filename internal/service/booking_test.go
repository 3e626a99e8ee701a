package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/repo"
	"github.com/pkordes/driftboat/internal/service"
	"github.com/pkordes/driftboat/internal/validate"
	"github.com/pkordes/driftboat/testutil"
)

var today = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func validBookingForm(tripID string) validate.BookingForm {
	return validate.BookingForm{
		TripID:        tripID,
		GuestName:     "Norman Maclean",
		Email:         "Norman@Example.com",
		Phone:         "(406) 555-0199",
		PreferredDate: "2026-06-15",
		GuestCount:    2,
	}
}

func newBookingService(bookings repo.BookingRepo, trips repo.TripRepo, buf *bytes.Buffer) *service.BookingService {
	return service.NewBookingService(bookings, trips, discardLogger(buf)).
		WithClock(func() time.Time { return today })
}

func tripsRepo(trips ...domain.Trip) *mockRepo[domain.Trip] {
	return &mockRepo[domain.Trip]{
		get: func(_ context.Context, id string) (domain.Trip, error) {
			for _, t := range trips {
				if t.ID == id {
					return t, nil
				}
			}
			return domain.Trip{}, domain.ErrNotFound
		},
		list: listing(trips...),
	}
}

// ---- Submit tests ----------------------------------------------------------

func TestBookingService_Submit_StoresPendingSnapshot(t *testing.T) {
	var buf bytes.Buffer
	svc := newBookingService(echoRepo[domain.Booking](), tripsRepo(trip("t1", 45000, true)), &buf)

	got, err := svc.Submit(context.Background(), validBookingForm("t1"), map[string]any{"utm_source": "<b>news</b>"})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.Equal(t, "Trip t1", got.TripTitle)
	assert.Equal(t, "norman@example.com", got.Email)
	assert.Equal(t, "2026-06-15", got.PreferredDate)
	assert.Equal(t, today, got.SubmittedAt.Time())
	assert.Equal(t, map[string]any{"utm_source": "news"}, got.Tracking)
}

func TestBookingService_Submit_GuestCountAgainstCapacity(t *testing.T) {
	var buf bytes.Buffer
	svc := newBookingService(echoRepo[domain.Booking](), tripsRepo(trip("t1", 45000, true)), &buf)

	f := validBookingForm("t1")
	f.GuestCount = 5 // trip allows 4

	_, err := svc.Submit(context.Background(), f, nil)

	var fields domain.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "guestCount")
}

func TestBookingService_Submit_UnavailableTrip(t *testing.T) {
	cases := map[string]string{
		"missing":  "nope",
		"inactive": "hidden",
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			svc := newBookingService(echoRepo[domain.Booking](), tripsRepo(trip("hidden", 100, false)), &buf)

			_, err := svc.Submit(context.Background(), validBookingForm(id), nil)

			var fields domain.FieldErrors
			require.ErrorAs(t, err, &fields)
			assert.Equal(t, "Selected trip is not available", fields["tripId"])
		})
	}
}

func TestBookingService_Submit_TripLookupError(t *testing.T) {
	boom := errors.New("db exploded")
	trips := &mockRepo[domain.Trip]{
		get: func(context.Context, string) (domain.Trip, error) { return domain.Trip{}, boom },
	}
	var buf bytes.Buffer
	svc := newBookingService(echoRepo[domain.Booking](), trips, &buf)

	_, err := svc.Submit(context.Background(), validBookingForm("t1"), nil)

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestBookingService_Submit_AdvisesOnSuspiciousInput(t *testing.T) {
	var buf bytes.Buffer
	svc := newBookingService(echoRepo[domain.Booking](), tripsRepo(trip("t1", 45000, true)), &buf)

	f := validBookingForm("t1")
	f.SpecialRequests = "'; DROP TABLE bookings; --"

	got, err := svc.Submit(context.Background(), f, nil)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"field":"specialRequests"`)
	// Advisories never block a submission.
	assert.Equal(t, domain.BookingPending, got.Status)
}

// TestBookingService_Submit_EndToEnd runs the public booking flow against a
// real embedded store: an invalid request stores nothing, a valid one is
// stored exactly once.
func TestBookingService_Submit_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := repo.NewSQLiteStore(testutil.NewSQLite(t))
	trips := repo.NewTripRepo(store)
	bookings := repo.NewBookingRepo(store)

	tr, err := trips.Create(ctx, domain.Trip{
		Title: "Full Day Float", Price: 65000, MaxGuests: 4,
		Difficulty: domain.DifficultyIntermediate, IsActive: true,
		Photos: []string{}, Equipment: []string{},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	svc := newBookingService(bookings, trips, &buf)

	f := validBookingForm(tr.ID)
	f.GuestCount = 0
	_, err = svc.Submit(ctx, f, nil)
	require.ErrorIs(t, err, domain.ErrValidation)

	stored, err := bookings.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	f.GuestCount = 1
	got, err := svc.Submit(ctx, f, nil)
	require.NoError(t, err)

	stored, err = bookings.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, got.ID, stored[0].ID)
	assert.Equal(t, domain.BookingPending, stored[0].Status)
	assert.Equal(t, "Full Day Float", stored[0].TripTitle)
	assert.True(t, stored[0].SubmittedAt.Time().Equal(today))
}

// ---- Transition tests ------------------------------------------------------

func TestBookingService_Transitions(t *testing.T) {
	cases := []struct {
		from   domain.BookingStatus
		action func(*service.BookingService, context.Context, string) (domain.Booking, error)
		want   domain.BookingStatus
		ok     bool
	}{
		{domain.BookingPending, (*service.BookingService).Confirm, domain.BookingConfirmed, true},
		{domain.BookingPending, (*service.BookingService).Cancel, domain.BookingCancelled, true},
		{domain.BookingCancelled, (*service.BookingService).Restore, domain.BookingPending, true},
		{domain.BookingConfirmed, (*service.BookingService).Cancel, "", false},
		{domain.BookingConfirmed, (*service.BookingService).Restore, "", false},
		{domain.BookingCancelled, (*service.BookingService).Confirm, "", false},
		{domain.BookingPending, (*service.BookingService).Restore, "", false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.want), func(t *testing.T) {
			patched := false
			bookings := &mockRepo[domain.Booking]{
				get: func(_ context.Context, id string) (domain.Booking, error) {
					return domain.Booking{ID: id, Status: tc.from}, nil
				},
				patch: func(_ context.Context, _ string, fields map[string]any) error {
					patched = true
					assert.Len(t, fields, 1)
					return nil
				},
			}
			var buf bytes.Buffer
			svc := newBookingService(bookings, tripsRepo(), &buf)

			got, err := tc.action(svc, context.Background(), "b1")

			if !tc.ok {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				assert.False(t, patched)
				return
			}
			require.NoError(t, err)
			assert.True(t, patched)
			assert.Equal(t, tc.want, got.Status)
		})
	}
}

// ---- List tests ------------------------------------------------------------

func TestBookingService_List_DefaultsToNewestFirst(t *testing.T) {
	older := domain.Booking{ID: "old", Status: domain.BookingPending, TripID: "t1",
		SubmittedAt: domain.At(today.Add(-time.Hour))}
	newer := domain.Booking{ID: "new", Status: domain.BookingConfirmed, TripID: "t1",
		SubmittedAt: domain.At(today)}
	bookings := &mockRepo[domain.Booking]{list: listing(older, newer)}
	var buf bytes.Buffer
	svc := newBookingService(bookings, tripsRepo(trip("t1", 100, true), trip("t2", 100, true)), &buf)

	got, err := svc.List(context.Background(), domain.BookingFilter{})

	require.NoError(t, err)
	require.Len(t, got.Bookings, 2)
	assert.Equal(t, "new", got.Bookings[0].ID)
	assert.Equal(t, 0, got.ActiveFilters)
	require.Len(t, got.Options.Trips, 2)
	assert.Equal(t, 2, got.Options.Trips[0].Count)
	assert.Equal(t, 0, got.Options.Trips[1].Count)
}

func TestBookingService_List_Filters(t *testing.T) {
	bookings := &mockRepo[domain.Booking]{list: listing(
		domain.Booking{ID: "a", Status: domain.BookingPending, GuestName: "Ada"},
		domain.Booking{ID: "b", Status: domain.BookingCancelled, GuestName: "Bea"},
	)}
	var buf bytes.Buffer
	svc := newBookingService(bookings, tripsRepo(), &buf)

	got, err := svc.List(context.Background(), domain.BookingFilter{
		Statuses: []domain.BookingStatus{domain.BookingCancelled},
	})

	require.NoError(t, err)
	require.Len(t, got.Bookings, 1)
	assert.Equal(t, "b", got.Bookings[0].ID)
	assert.Equal(t, 1, got.ActiveFilters)
}
