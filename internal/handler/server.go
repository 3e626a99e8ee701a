// Package handler implements the HTTP handlers for the Driftboat API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, booking.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/driftboat/internal/auth"
	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/loginlimit"
	"github.com/pkordes/driftboat/internal/middleware"
	"github.com/pkordes/driftboat/internal/service"
	"github.com/pkordes/driftboat/internal/validate"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, f validate.TripForm) (domain.Trip, error)
	Update(ctx context.Context, id string, f validate.TripForm) (domain.Trip, error)
	SetActive(ctx context.Context, id string, active bool) (domain.Trip, error)
	GetByID(ctx context.Context, id string) (domain.Trip, error)
	GetPublic(ctx context.Context, id string) (domain.Trip, error)
	Delete(ctx context.Context, id string) error
	Browse(ctx context.Context, f domain.TripFilter, admin bool) (service.TripListing, error)
}

// BookingServicer defines the booking operations.
type BookingServicer interface {
	Submit(ctx context.Context, f validate.BookingForm, tracking map[string]any) (domain.Booking, error)
	GetByID(ctx context.Context, id string) (domain.Booking, error)
	Confirm(ctx context.Context, id string) (domain.Booking, error)
	Cancel(ctx context.Context, id string) (domain.Booking, error)
	Restore(ctx context.Context, id string) (domain.Booking, error)
	List(ctx context.Context, f domain.BookingFilter) (service.BookingListing, error)
}

// ExportServicer defines the booking export operation.
type ExportServicer interface {
	Export(ctx context.Context, f domain.BookingFilter) ([]domain.BookingExportRow, error)
}

// TestimonialServicer defines the testimonial operations.
type TestimonialServicer interface {
	Submit(ctx context.Context, f validate.TestimonialForm) (domain.Testimonial, error)
	Update(ctx context.Context, id string, f validate.TestimonialForm) (domain.Testimonial, error)
	SetApproved(ctx context.Context, id string, approved bool) (domain.Testimonial, error)
	Delete(ctx context.Context, id string) error
	ListApproved(ctx context.Context) ([]domain.Testimonial, error)
	ListAll(ctx context.Context) ([]domain.Testimonial, error)
}

// ResourceServicer defines the resource library operations.
type ResourceServicer interface {
	Create(ctx context.Context, f validate.ResourceForm) (domain.Resource, error)
	Update(ctx context.Context, id string, f validate.ResourceForm) (domain.Resource, error)
	SetVisible(ctx context.Context, id string, visible bool) (domain.Resource, error)
	GetByID(ctx context.Context, id string) (domain.Resource, error)
	GetVisible(ctx context.Context, id string) (domain.Resource, error)
	Delete(ctx context.Context, id string) error
	ListVisible(ctx context.Context, categoryID string) ([]domain.Resource, error)
	ListAll(ctx context.Context) ([]domain.Resource, error)
}

// CategoryServicer defines the resource category operations.
type CategoryServicer interface {
	Create(ctx context.Context, f validate.CategoryForm) (domain.Category, error)
	Update(ctx context.Context, id string, f validate.CategoryForm) (domain.Category, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

// AuthServicer defines the admin sign-in operations.
type AuthServicer interface {
	Login(ctx context.Context, client, email, password string) (service.Session, error)
	Lockout(ctx context.Context, client string) (loginlimit.Status, error)
	WatchLockout(ctx context.Context, client string) (<-chan loginlimit.Status, error)
	Authenticate(token string) (auth.Claims, error)
}

// Services bundles the dependencies of a Server. A nil service leaves its
// routes unregistered.
type Services struct {
	Trips        TripServicer
	Bookings     BookingServicer
	Export       ExportServicer
	Testimonials TestimonialServicer
	Resources    ResourceServicer
	Categories   CategoryServicer
	Auth         AuthServicer
}

// Server holds the services behind every endpoint.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	Services
	log *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svcs Services, log *slog.Logger) *Server {
	return &Server{Services: svcs, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{}, slog.Default())
}

// Routes builds the chi router for the whole API. Cross-cutting middleware
// (request IDs, logging, CORS, body limits) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	if s.Trips != nil {
		r.Get("/trips", s.ListTrips)
		r.Get("/trips/{id}", s.GetTrip)
	}
	if s.Bookings != nil {
		r.Post("/bookings", s.SubmitBooking)
	}
	if s.Testimonials != nil {
		r.Get("/testimonials", s.ListTestimonials)
		r.Post("/testimonials", s.SubmitTestimonial)
	}
	if s.Resources != nil {
		r.Get("/resources", s.ListResources)
		r.Get("/resources/{id}", s.GetResource)
	}
	if s.Categories != nil {
		r.Get("/resource-categories", s.ListCategories)
	}
	if s.Auth == nil {
		return r
	}
	r.Post("/auth/login", s.Login)
	r.Get("/auth/lockout", s.GetLockout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(s.Auth))

		if s.Trips != nil {
			r.Get("/trips", s.AdminListTrips)
			r.Post("/trips", s.CreateTrip)
			r.Get("/trips/{id}", s.AdminGetTrip)
			r.Put("/trips/{id}", s.UpdateTrip)
			r.Put("/trips/{id}/active", s.SetTripActive)
			r.Delete("/trips/{id}", s.DeleteTrip)
		}
		if s.Bookings != nil {
			r.Get("/bookings", s.ListBookings)
			r.Get("/bookings/{id}", s.GetBooking)
			r.Post("/bookings/{id}/confirm", s.ConfirmBooking)
			r.Post("/bookings/{id}/cancel", s.CancelBooking)
			r.Post("/bookings/{id}/restore", s.RestoreBooking)
		}
		if s.Export != nil {
			r.Get("/bookings/export", s.ExportBookings)
		}
		if s.Testimonials != nil {
			r.Get("/testimonials", s.AdminListTestimonials)
			r.Put("/testimonials/{id}", s.UpdateTestimonial)
			r.Post("/testimonials/{id}/approve", s.ApproveTestimonial)
			r.Post("/testimonials/{id}/unapprove", s.UnapproveTestimonial)
			r.Delete("/testimonials/{id}", s.DeleteTestimonial)
		}
		if s.Resources != nil {
			r.Get("/resources", s.AdminListResources)
			r.Post("/resources", s.CreateResource)
			r.Get("/resources/{id}", s.AdminGetResource)
			r.Put("/resources/{id}", s.UpdateResource)
			r.Put("/resources/{id}/visible", s.SetResourceVisible)
			r.Delete("/resources/{id}", s.DeleteResource)
		}
		if s.Categories != nil {
			r.Get("/resource-categories", s.ListCategories)
			r.Post("/resource-categories", s.CreateCategory)
			r.Get("/resource-categories/{id}", s.GetCategory)
			r.Put("/resource-categories/{id}", s.UpdateCategory)
			r.Delete("/resource-categories/{id}", s.DeleteCategory)
		}
	})
	return r
}
