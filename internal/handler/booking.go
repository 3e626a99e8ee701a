package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/validate"
)

// BookingRequest is the body of POST /bookings.
type BookingRequest struct {
	validate.BookingForm
	// Tracking is opaque client metadata (referrer, campaign) stored with the booking.
	Tracking map[string]any `json:"tracking,omitempty"`
}

// BookingListResponse is one page of the booking inbox with its facets.
type BookingListResponse struct {
	ListResponse[domain.Booking]
	Options       domain.BookingFilterOptions `json:"options"`
	ActiveFilters int                         `json:"activeFilters"`
}

// bookingQuery holds the query parameters of the booking listing and export.
type bookingQuery struct {
	pageQuery
	Search        *string
	Status        *[]string
	TripID        *[]string
	SubmittedFrom *openapi_types.Date
	SubmittedTo   *openapi_types.Date
	PreferredFrom *openapi_types.Date
	PreferredTo   *openapi_types.Date
	Sort          *string
	Format        *string
}

func bindBookingQuery(q url.Values) (bookingQuery, error) {
	var p bookingQuery
	bindings := p.bindings()
	for name, dest := range map[string]any{
		"search":        &p.Search,
		"status":        &p.Status,
		"tripId":        &p.TripID,
		"submittedFrom": &p.SubmittedFrom,
		"submittedTo":   &p.SubmittedTo,
		"preferredFrom": &p.PreferredFrom,
		"preferredTo":   &p.PreferredTo,
		"sort":          &p.Sort,
		"format":        &p.Format,
	} {
		bindings[name] = dest
	}
	if err := bindAll(q, bindings); err != nil {
		return bookingQuery{}, err
	}
	return p, nil
}

func (p bookingQuery) filter() domain.BookingFilter {
	f := domain.BookingFilter{
		Search:    deref(p.Search),
		TripIDs:   deref(p.TripID),
		Submitted: dateRange(p.SubmittedFrom, p.SubmittedTo),
		Preferred: dateRange(p.PreferredFrom, p.PreferredTo),
		Sort:      domain.BookingSort(deref(p.Sort)),
	}
	for _, st := range deref(p.Status) {
		f.Statuses = append(f.Statuses, domain.BookingStatus(st))
	}
	return f
}

// SubmitBooking handles POST /bookings.
func (s *Server) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	created, err := s.Bookings.Submit(r.Context(), req.BookingForm, req.Tracking)
	if err != nil {
		s.fail(w, r, err, "booking")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListBookings handles GET /admin/bookings.
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	q, err := bindBookingQuery(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}

	listing, err := s.Bookings.List(r.Context(), q.filter())
	if err != nil {
		s.fail(w, r, err, "booking")
		return
	}

	writeJSON(w, http.StatusOK, BookingListResponse{
		ListResponse:  paginate(listing.Bookings, q.pageQuery),
		Options:       listing.Options,
		ActiveFilters: listing.ActiveFilters,
	})
}

// GetBooking handles GET /admin/bookings/{id}.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.Bookings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "booking")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ConfirmBooking handles POST /admin/bookings/{id}/confirm.
func (s *Server) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.Bookings.Confirm)
}

// CancelBooking handles POST /admin/bookings/{id}/cancel.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.Bookings.Cancel)
}

// RestoreBooking handles POST /admin/bookings/{id}/restore.
func (s *Server) RestoreBooking(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.Bookings.Restore)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, move func(context.Context, string) (domain.Booking, error)) {
	b, err := move(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "booking")
		return
	}
	writeJSON(w, http.StatusOK, b)
}
