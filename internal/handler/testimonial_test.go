package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/handler"
	"github.com/pkordes/driftboat/internal/validate"
)

func testimonialHandler(svc *mockTestimonialServicer) http.Handler {
	return newHTTPHandler(handler.Services{Testimonials: svc})
}

func TestListTestimonials_ApprovedOnly(t *testing.T) {
	svc := &mockTestimonialServicer{
		listApproved: func(context.Context) ([]domain.Testimonial, error) {
			return []domain.Testimonial{{ID: "t1", IsApproved: true}}, nil
		},
	}

	rec := do(t, testimonialHandler(svc), http.MethodGet, "/testimonials", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.ListResponse[domain.Testimonial]](t, rec)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "t1", resp.Data[0].ID)
}

func TestAdminListTestimonials_EmptyIsArray(t *testing.T) {
	svc := &mockTestimonialServicer{
		listAll: func(context.Context) ([]domain.Testimonial, error) { return nil, nil },
	}

	rec := do(t, testimonialHandler(svc), http.MethodGet, "/admin/testimonials", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestSubmitTestimonial_201(t *testing.T) {
	svc := &mockTestimonialServicer{
		submit: func(_ context.Context, f validate.TestimonialForm) (domain.Testimonial, error) {
			return domain.Testimonial{ID: "t2", CustomerName: f.CustomerName, Rating: int(f.Rating)}, nil
		},
	}

	rec := do(t, testimonialHandler(svc), http.MethodPost, "/testimonials", map[string]any{
		"customerName":    "Sam",
		"rating":          5,
		"testimonialText": "Best day on the water all season.",
		"tripType":        "Full Day Float",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[domain.Testimonial](t, rec)
	assert.Equal(t, "Sam", resp.CustomerName)
	assert.False(t, resp.IsApproved)
}

func TestApproveAndUnapproveTestimonial(t *testing.T) {
	svc := &mockTestimonialServicer{
		setApproved: func(_ context.Context, id string, approved bool) (domain.Testimonial, error) {
			return domain.Testimonial{ID: id, IsApproved: approved}, nil
		},
	}
	h := testimonialHandler(svc)

	rec := do(t, h, http.MethodPost, "/admin/testimonials/t1/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[domain.Testimonial](t, rec).IsApproved)

	rec = do(t, h, http.MethodPost, "/admin/testimonials/t1/unapprove", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[domain.Testimonial](t, rec).IsApproved)
}

func TestDeleteTestimonial_404(t *testing.T) {
	svc := &mockTestimonialServicer{
		delete: func(context.Context, string) error { return domain.ErrNotFound },
	}

	rec := do(t, testimonialHandler(svc), http.MethodDelete, "/admin/testimonials/t9", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
