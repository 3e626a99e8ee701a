package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/driftboat/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"booking_id", "status", "submitted_at", "preferred_date",
	"guest_name", "email", "phone", "guest_count", "special_requests",
	"trip_id", "trip_title", "trip_location", "trip_duration", "trip_price",
}

// ExportRow is the JSON shape of one exported booking.
type ExportRow struct {
	BookingID       string               `json:"bookingId"`
	Status          domain.BookingStatus `json:"status"`
	SubmittedAt     *time.Time           `json:"submittedAt,omitempty"`
	PreferredDate   string               `json:"preferredDate"`
	GuestName       string               `json:"guestName"`
	Email           string               `json:"email"`
	Phone           string               `json:"phone"`
	GuestCount      int                  `json:"guestCount"`
	SpecialRequests *string              `json:"specialRequests,omitempty"`
	TripID          string               `json:"tripId"`
	TripTitle       string               `json:"tripTitle"`
	TripLocation    *string              `json:"tripLocation,omitempty"`
	TripDuration    *string              `json:"tripDuration,omitempty"`
	TripPrice       *int64               `json:"tripPrice,omitempty"`
}

// ExportBookings handles GET /admin/bookings/export.
// It accepts the booking listing filters and returns every matching booking
// (no pagination). Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportBookings(w http.ResponseWriter, r *http.Request) {
	q, err := bindBookingQuery(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}
	format := deref(q.Format)
	if format != "" && format != "csv" && format != "json" {
		writeProblem(w, http.StatusBadRequest, "bad_request", `format must be "csv" or "json"`)
		return
	}

	rows, err := s.Export.Export(r.Context(), q.filter())
	if err != nil {
		s.fail(w, r, err, "booking")
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONResponse(rows))
}

// buildJSONResponse converts domain rows to the JSON response.
func buildJSONResponse(rows []domain.BookingExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToExportRow(r))
	}
	return out
}

// writeCSV encodes domain rows as CSV and sends them as an attachment.
func writeCSV(w http.ResponseWriter, rows []domain.BookingExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	// bytes.Buffer.Write never returns an error.
	_ = cw.Write(csvHeaders)
	for _, r := range rows {
		_ = cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// domainRowToExportRow maps a domain.BookingExportRow to its JSON shape.
// Empty optional strings and a missing trip price become nil pointers.
func domainRowToExportRow(r domain.BookingExportRow) ExportRow {
	row := ExportRow{
		BookingID:     r.BookingID,
		Status:        r.Status,
		SubmittedAt:   r.SubmittedAt,
		PreferredDate: r.PreferredDate,
		GuestName:     r.GuestName,
		Email:         r.Email,
		Phone:         r.Phone,
		GuestCount:    r.GuestCount,
		TripID:        r.TripID,
		TripTitle:     r.TripTitle,
	}
	if r.SpecialRequests != "" {
		row.SpecialRequests = &r.SpecialRequests
	}
	if r.TripLocation != "" {
		row.TripLocation = &r.TripLocation
	}
	if r.TripDuration != "" {
		row.TripDuration = &r.TripDuration
	}
	if r.TripPrice != 0 {
		row.TripPrice = &r.TripPrice
	}
	return row
}

// domainRowToCSVRecord encodes a domain.BookingExportRow as a flat string slice.
// A nil submission time and a missing trip price are encoded as empty strings.
// Free-text columns go through csvCell.
func domainRowToCSVRecord(r domain.BookingExportRow) []string {
	price := ""
	if r.TripPrice != 0 {
		price = strconv.FormatFloat(float64(r.TripPrice)/100, 'f', 2, 64)
	}
	return []string{
		r.BookingID,
		string(r.Status),
		formatOptionalTime(r.SubmittedAt),
		r.PreferredDate,
		csvCell(r.GuestName),
		csvCell(r.Email),
		csvCell(r.Phone),
		strconv.Itoa(r.GuestCount),
		csvCell(r.SpecialRequests),
		r.TripID,
		csvCell(r.TripTitle),
		csvCell(r.TripLocation),
		csvCell(r.TripDuration),
		price,
	}
}

// csvCell prefixes a quote to values a spreadsheet would evaluate as a formula.
func csvCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
