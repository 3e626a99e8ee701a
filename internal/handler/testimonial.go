package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/validate"
)

// ListTestimonials handles GET /testimonials: approved entries, newest first.
func (s *Server) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	items, err := s.Testimonials.ListApproved(r.Context())
	if err != nil {
		s.fail(w, r, err, "testimonial")
		return
	}
	s.writeTestimonials(w, r, items)
}

// AdminListTestimonials handles GET /admin/testimonials: every entry, newest first.
func (s *Server) AdminListTestimonials(w http.ResponseWriter, r *http.Request) {
	items, err := s.Testimonials.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, err, "testimonial")
		return
	}
	s.writeTestimonials(w, r, items)
}

func (s *Server) writeTestimonials(w http.ResponseWriter, r *http.Request, items []domain.Testimonial) {
	var q pageQuery
	if err := bindAll(r.URL.Query(), q.bindings()); err != nil {
		badRequest(w, err)
		return
	}
	if items == nil {
		items = []domain.Testimonial{}
	}
	writeJSON(w, http.StatusOK, paginate(items, q))
}

// SubmitTestimonial handles POST /testimonials. New entries await approval.
func (s *Server) SubmitTestimonial(w http.ResponseWriter, r *http.Request) {
	var f validate.TestimonialForm
	if err := decodeJSON(r, &f); err != nil {
		badRequest(w, err)
		return
	}

	created, err := s.Testimonials.Submit(r.Context(), f)
	if err != nil {
		s.fail(w, r, err, "testimonial")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateTestimonial handles PUT /admin/testimonials/{id}.
func (s *Server) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	var f validate.TestimonialForm
	if err := decodeJSON(r, &f); err != nil {
		badRequest(w, err)
		return
	}

	updated, err := s.Testimonials.Update(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		s.fail(w, r, err, "testimonial")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ApproveTestimonial handles POST /admin/testimonials/{id}/approve.
func (s *Server) ApproveTestimonial(w http.ResponseWriter, r *http.Request) {
	s.setApproved(w, r, true)
}

// UnapproveTestimonial handles POST /admin/testimonials/{id}/unapprove.
func (s *Server) UnapproveTestimonial(w http.ResponseWriter, r *http.Request) {
	s.setApproved(w, r, false)
}

func (s *Server) setApproved(w http.ResponseWriter, r *http.Request, approved bool) {
	t, err := s.Testimonials.SetApproved(r.Context(), chi.URLParam(r, "id"), approved)
	if err != nil {
		s.fail(w, r, err, "testimonial")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTestimonial handles DELETE /admin/testimonials/{id}.
func (s *Server) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	if err := s.Testimonials.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, "testimonial")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
