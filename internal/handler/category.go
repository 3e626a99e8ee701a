package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/validate"
)

// ListCategories handles GET /resource-categories. Categories are few, so the
// listing is not paginated.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := s.Categories.List(r.Context())
	if err != nil {
		s.fail(w, r, err, "category")
		return
	}
	if items == nil {
		items = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

// GetCategory handles GET /admin/resource-categories/{id}.
func (s *Server) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.Categories.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "category")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCategory handles POST /admin/resource-categories.
func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var f validate.CategoryForm
	if err := decodeJSON(r, &f); err != nil {
		badRequest(w, err)
		return
	}

	created, err := s.Categories.Create(r.Context(), f)
	if err != nil {
		s.fail(w, r, err, "category")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateCategory handles PUT /admin/resource-categories/{id}.
func (s *Server) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var f validate.CategoryForm
	if err := decodeJSON(r, &f); err != nil {
		badRequest(w, err)
		return
	}

	updated, err := s.Categories.Update(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		s.fail(w, r, err, "category")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCategory handles DELETE /admin/resource-categories/{id}.
// A category that still holds resources cannot be deleted.
func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.Categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, "category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
