package service

import (
	"context"
	"fmt"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/filter"
	"github.com/pkordes/driftboat/internal/repo"
)

// ExportService assembles a flat export of the booking inbox.
type ExportService struct {
	bookings repo.BookingRepo
	trips    repo.TripRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(bookings repo.BookingRepo, trips repo.TripRepo) *ExportService {
	return &ExportService{bookings: bookings, trips: trips}
}

// Export returns one BookingExportRow per booking matching f, in the order
// the admin listing would show them. Trip fields come from the current trip;
// a deleted trip leaves only the booking's title snapshot.
func (s *ExportService) Export(ctx context.Context, f domain.BookingFilter) ([]domain.BookingExportRow, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	byID := make(map[string]domain.Trip, len(trips))
	for _, t := range trips {
		byID[t.ID] = t
	}

	if f.Sort == "" {
		f.Sort = domain.BookingSortSubmittedDesc
	}
	selected := filter.SortBookings(filter.Bookings(bookings, f), f.Sort)

	rows := make([]domain.BookingExportRow, 0, len(selected))
	for _, b := range selected {
		rows = append(rows, exportRow(b, byID))
	}
	return rows, nil
}

func exportRow(b domain.Booking, trips map[string]domain.Trip) domain.BookingExportRow {
	row := domain.BookingExportRow{
		BookingID:       b.ID,
		Status:          b.Status,
		PreferredDate:   b.PreferredDate,
		GuestName:       b.GuestName,
		Email:           b.Email,
		Phone:           b.Phone,
		GuestCount:      b.GuestCount,
		SpecialRequests: b.SpecialRequests,
		TripID:          b.TripID,
		TripTitle:       b.TripTitle,
	}
	if !b.SubmittedAt.IsZero() {
		t := b.SubmittedAt.Time()
		row.SubmittedAt = &t
	}
	if t, ok := trips[b.TripID]; ok {
		row.TripTitle = t.Title
		row.TripLocation = t.Location
		row.TripDuration = t.Duration
		row.TripPrice = t.Price
	}
	return row
}
