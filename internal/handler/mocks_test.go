package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/driftboat/internal/auth"
	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/handler"
	"github.com/pkordes/driftboat/internal/loginlimit"
	"github.com/pkordes/driftboat/internal/service"
	"github.com/pkordes/driftboat/internal/validate"
)

// Test doubles for the handler.*Servicer interfaces.
// Set only the method fields your test needs; calling an unset one panics.

type mockTripServicer struct {
	create    func(ctx context.Context, f validate.TripForm) (domain.Trip, error)
	update    func(ctx context.Context, id string, f validate.TripForm) (domain.Trip, error)
	setActive func(ctx context.Context, id string, active bool) (domain.Trip, error)
	getByID   func(ctx context.Context, id string) (domain.Trip, error)
	getPublic func(ctx context.Context, id string) (domain.Trip, error)
	delete    func(ctx context.Context, id string) error
	browse    func(ctx context.Context, f domain.TripFilter, admin bool) (service.TripListing, error)
}

func (m *mockTripServicer) Create(ctx context.Context, f validate.TripForm) (domain.Trip, error) {
	return m.create(ctx, f)
}
func (m *mockTripServicer) Update(ctx context.Context, id string, f validate.TripForm) (domain.Trip, error) {
	return m.update(ctx, id, f)
}
func (m *mockTripServicer) SetActive(ctx context.Context, id string, active bool) (domain.Trip, error) {
	return m.setActive(ctx, id, active)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) GetPublic(ctx context.Context, id string) (domain.Trip, error) {
	return m.getPublic(ctx, id)
}
func (m *mockTripServicer) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}
func (m *mockTripServicer) Browse(ctx context.Context, f domain.TripFilter, admin bool) (service.TripListing, error) {
	return m.browse(ctx, f, admin)
}

type mockBookingServicer struct {
	submit  func(ctx context.Context, f validate.BookingForm, tracking map[string]any) (domain.Booking, error)
	getByID func(ctx context.Context, id string) (domain.Booking, error)
	confirm func(ctx context.Context, id string) (domain.Booking, error)
	cancel  func(ctx context.Context, id string) (domain.Booking, error)
	restore func(ctx context.Context, id string) (domain.Booking, error)
	list    func(ctx context.Context, f domain.BookingFilter) (service.BookingListing, error)
}

func (m *mockBookingServicer) Submit(ctx context.Context, f validate.BookingForm, tracking map[string]any) (domain.Booking, error) {
	return m.submit(ctx, f, tracking)
}
func (m *mockBookingServicer) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingServicer) Confirm(ctx context.Context, id string) (domain.Booking, error) {
	return m.confirm(ctx, id)
}
func (m *mockBookingServicer) Cancel(ctx context.Context, id string) (domain.Booking, error) {
	return m.cancel(ctx, id)
}
func (m *mockBookingServicer) Restore(ctx context.Context, id string) (domain.Booking, error) {
	return m.restore(ctx, id)
}
func (m *mockBookingServicer) List(ctx context.Context, f domain.BookingFilter) (service.BookingListing, error) {
	return m.list(ctx, f)
}

type mockExportServicer struct {
	export func(ctx context.Context, f domain.BookingFilter) ([]domain.BookingExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, f domain.BookingFilter) ([]domain.BookingExportRow, error) {
	return m.export(ctx, f)
}

type mockTestimonialServicer struct {
	submit       func(ctx context.Context, f validate.TestimonialForm) (domain.Testimonial, error)
	update       func(ctx context.Context, id string, f validate.TestimonialForm) (domain.Testimonial, error)
	setApproved  func(ctx context.Context, id string, approved bool) (domain.Testimonial, error)
	delete       func(ctx context.Context, id string) error
	listApproved func(ctx context.Context) ([]domain.Testimonial, error)
	listAll      func(ctx context.Context) ([]domain.Testimonial, error)
}

func (m *mockTestimonialServicer) Submit(ctx context.Context, f validate.TestimonialForm) (domain.Testimonial, error) {
	return m.submit(ctx, f)
}
func (m *mockTestimonialServicer) Update(ctx context.Context, id string, f validate.TestimonialForm) (domain.Testimonial, error) {
	return m.update(ctx, id, f)
}
func (m *mockTestimonialServicer) SetApproved(ctx context.Context, id string, approved bool) (domain.Testimonial, error) {
	return m.setApproved(ctx, id, approved)
}
func (m *mockTestimonialServicer) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}
func (m *mockTestimonialServicer) ListApproved(ctx context.Context) ([]domain.Testimonial, error) {
	return m.listApproved(ctx)
}
func (m *mockTestimonialServicer) ListAll(ctx context.Context) ([]domain.Testimonial, error) {
	return m.listAll(ctx)
}

type mockResourceServicer struct {
	create      func(ctx context.Context, f validate.ResourceForm) (domain.Resource, error)
	update      func(ctx context.Context, id string, f validate.ResourceForm) (domain.Resource, error)
	setVisible  func(ctx context.Context, id string, visible bool) (domain.Resource, error)
	getByID     func(ctx context.Context, id string) (domain.Resource, error)
	getVisible  func(ctx context.Context, id string) (domain.Resource, error)
	delete      func(ctx context.Context, id string) error
	listVisible func(ctx context.Context, categoryID string) ([]domain.Resource, error)
	listAll     func(ctx context.Context) ([]domain.Resource, error)
}

func (m *mockResourceServicer) Create(ctx context.Context, f validate.ResourceForm) (domain.Resource, error) {
	return m.create(ctx, f)
}
func (m *mockResourceServicer) Update(ctx context.Context, id string, f validate.ResourceForm) (domain.Resource, error) {
	return m.update(ctx, id, f)
}
func (m *mockResourceServicer) SetVisible(ctx context.Context, id string, visible bool) (domain.Resource, error) {
	return m.setVisible(ctx, id, visible)
}
func (m *mockResourceServicer) GetByID(ctx context.Context, id string) (domain.Resource, error) {
	return m.getByID(ctx, id)
}
func (m *mockResourceServicer) GetVisible(ctx context.Context, id string) (domain.Resource, error) {
	return m.getVisible(ctx, id)
}
func (m *mockResourceServicer) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}
func (m *mockResourceServicer) ListVisible(ctx context.Context, categoryID string) ([]domain.Resource, error) {
	return m.listVisible(ctx, categoryID)
}
func (m *mockResourceServicer) ListAll(ctx context.Context) ([]domain.Resource, error) {
	return m.listAll(ctx)
}

type mockCategoryServicer struct {
	create  func(ctx context.Context, f validate.CategoryForm) (domain.Category, error)
	update  func(ctx context.Context, id string, f validate.CategoryForm) (domain.Category, error)
	delete  func(ctx context.Context, id string) error
	getByID func(ctx context.Context, id string) (domain.Category, error)
	list    func(ctx context.Context) ([]domain.Category, error)
}

func (m *mockCategoryServicer) Create(ctx context.Context, f validate.CategoryForm) (domain.Category, error) {
	return m.create(ctx, f)
}
func (m *mockCategoryServicer) Update(ctx context.Context, id string, f validate.CategoryForm) (domain.Category, error) {
	return m.update(ctx, id, f)
}
func (m *mockCategoryServicer) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}
func (m *mockCategoryServicer) GetByID(ctx context.Context, id string) (domain.Category, error) {
	return m.getByID(ctx, id)
}
func (m *mockCategoryServicer) List(ctx context.Context) ([]domain.Category, error) {
	return m.list(ctx)
}

// mockAuthServicer accepts adminToken unless authenticate is set.
type mockAuthServicer struct {
	login        func(ctx context.Context, client, email, password string) (service.Session, error)
	lockout      func(ctx context.Context, client string) (loginlimit.Status, error)
	watchLockout func(ctx context.Context, client string) (<-chan loginlimit.Status, error)
	authenticate func(token string) (auth.Claims, error)
}

func (m *mockAuthServicer) Login(ctx context.Context, client, email, password string) (service.Session, error) {
	return m.login(ctx, client, email, password)
}
func (m *mockAuthServicer) Lockout(ctx context.Context, client string) (loginlimit.Status, error) {
	return m.lockout(ctx, client)
}
func (m *mockAuthServicer) WatchLockout(ctx context.Context, client string) (<-chan loginlimit.Status, error) {
	return m.watchLockout(ctx, client)
}
func (m *mockAuthServicer) Authenticate(token string) (auth.Claims, error) {
	if m.authenticate != nil {
		return m.authenticate(token)
	}
	if token != adminToken {
		return auth.Claims{}, domain.ErrUnauthorized
	}
	return auth.Claims{Subject: "admin@example.com", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// compile-time checks: every mock must satisfy its handler interface.
var (
	_ handler.TripServicer        = (*mockTripServicer)(nil)
	_ handler.BookingServicer     = (*mockBookingServicer)(nil)
	_ handler.ExportServicer      = (*mockExportServicer)(nil)
	_ handler.TestimonialServicer = (*mockTestimonialServicer)(nil)
	_ handler.ResourceServicer    = (*mockResourceServicer)(nil)
	_ handler.CategoryServicer    = (*mockCategoryServicer)(nil)
	_ handler.AuthServicer        = (*mockAuthServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

const adminToken = "admin-token"

// newHTTPHandler wires a Server with the given services into the router.
// An Auth service is always present so the admin routes are mounted.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svcs handler.Services) http.Handler {
	return newLoggedHTTPHandler(svcs, io.Discard)
}

// newLoggedHTTPHandler is newHTTPHandler with JSON logs written to w.
func newLoggedHTTPHandler(svcs handler.Services, w io.Writer) http.Handler {
	if svcs.Auth == nil {
		svcs.Auth = &mockAuthServicer{}
	}
	log := slog.New(slog.NewJSONHandler(w, nil))
	return handler.NewServer(svcs, log).Routes()
}

// do sends a request through h. A non-nil body is JSON encoded. Paths under
// /admin carry the admin bearer token.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	token := ""
	if strings.HasPrefix(path, "/admin") {
		token = adminToken
	}
	return doAs(t, h, token, method, path, body)
}

// doAs is do with an explicit bearer token; an empty token sends none.
func doAs(t *testing.T, h http.Handler, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
