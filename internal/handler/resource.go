package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/validate"
)

// ListResources handles GET /resources. An optional categoryId narrows the
// listing to one category.
func (s *Server) ListResources(w http.ResponseWriter, r *http.Request) {
	var (
		q        pageQuery
		category *string
	)
	bindings := q.bindings()
	bindings["categoryId"] = &category
	if err := bindAll(r.URL.Query(), bindings); err != nil {
		badRequest(w, err)
		return
	}

	items, err := s.Resources.ListVisible(r.Context(), deref(category))
	if err != nil {
		s.fail(w, r, err, "resource")
		return
	}
	writeJSON(w, http.StatusOK, paginate(nonNil(items), q))
}

// AdminListResources handles GET /admin/resources, hidden ones included.
func (s *Server) AdminListResources(w http.ResponseWriter, r *http.Request) {
	var q pageQuery
	if err := bindAll(r.URL.Query(), q.bindings()); err != nil {
		badRequest(w, err)
		return
	}

	items, err := s.Resources.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, err, "resource")
		return
	}
	writeJSON(w, http.StatusOK, paginate(nonNil(items), q))
}

// GetResource handles GET /resources/{id}. Hidden resources are not found.
func (s *Server) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := s.Resources.GetVisible(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "resource")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AdminGetResource handles GET /admin/resources/{id}.
func (s *Server) AdminGetResource(w http.ResponseWriter, r *http.Request) {
	res, err := s.Resources.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "resource")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateResource handles POST /admin/resources.
func (s *Server) CreateResource(w http.ResponseWriter, r *http.Request) {
	var f validate.ResourceForm
	if err := decodeJSON(r, &f); err != nil {
		badRequest(w, err)
		return
	}

	created, err := s.Resources.Create(r.Context(), f)
	if err != nil {
		s.fail(w, r, err, "resource")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateResource handles PUT /admin/resources/{id}.
func (s *Server) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var f validate.ResourceForm
	if err := decodeJSON(r, &f); err != nil {
		badRequest(w, err)
		return
	}

	updated, err := s.Resources.Update(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		s.fail(w, r, err, "resource")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// SetResourceVisible handles PUT /admin/resources/{id}/visible with body {"visible": bool}.
func (s *Server) SetResourceVisible(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Visible *bool `json:"visible"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	if body.Visible == nil {
		writeProblem(w, http.StatusBadRequest, "bad_request", `"visible" is required`)
		return
	}

	res, err := s.Resources.SetVisible(r.Context(), chi.URLParam(r, "id"), *body.Visible)
	if err != nil {
		s.fail(w, r, err, "resource")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteResource handles DELETE /admin/resources/{id}.
func (s *Server) DeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := s.Resources.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, "resource")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(items []domain.Resource) []domain.Resource {
	if items == nil {
		return []domain.Resource{}
	}
	return items
}
