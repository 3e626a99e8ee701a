package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/repo"
	"github.com/pkordes/driftboat/internal/sanitize"
	"github.com/pkordes/driftboat/internal/validate"
)

// TestimonialService implements business logic for customer testimonials.
type TestimonialService struct {
	repo repo.TestimonialRepo
	log  *slog.Logger
}

// NewTestimonialService constructs a TestimonialService backed by the provided repo.
func NewTestimonialService(r repo.TestimonialRepo, log *slog.Logger) *TestimonialService {
	return &TestimonialService{repo: r, log: log}
}

// Submit stores a public testimonial. It stays hidden until approved.
func (s *TestimonialService) Submit(ctx context.Context, f validate.TestimonialForm) (domain.Testimonial, error) {
	if err := validate.Testimonial(f).Err(); err != nil {
		return domain.Testimonial{}, fmt.Errorf("service.TestimonialService.Submit: %w", err)
	}
	sanitize.Advise(ctx, s.log, "customerName", f.CustomerName)
	sanitize.Advise(ctx, s.log, "testimonialText", f.Text)

	t := testimonialFromForm(f)
	t.IsApproved = false
	result, err := s.repo.Create(ctx, t)
	if err != nil {
		return domain.Testimonial{}, fmt.Errorf("service.TestimonialService.Submit: %w", err)
	}
	return result, nil
}

// Update overwrites an existing testimonial's content. Approval is unchanged.
func (s *TestimonialService) Update(ctx context.Context, id string, f validate.TestimonialForm) (domain.Testimonial, error) {
	if err := validate.Testimonial(f).Err(); err != nil {
		return domain.Testimonial{}, fmt.Errorf("service.TestimonialService.Update: %w", err)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Testimonial{}, fmt.Errorf("service.TestimonialService.Update: %w", err)
	}
	t := testimonialFromForm(f)
	t.IsApproved = current.IsApproved
	result, err := s.repo.Update(ctx, id, t)
	if err != nil {
		return domain.Testimonial{}, fmt.Errorf("service.TestimonialService.Update: %w", err)
	}
	return result, nil
}

// SetApproved publishes or hides a testimonial.
func (s *TestimonialService) SetApproved(ctx context.Context, id string, approved bool) (domain.Testimonial, error) {
	if err := s.repo.Patch(ctx, id, map[string]any{"isApproved": approved}); err != nil {
		return domain.Testimonial{}, fmt.Errorf("service.TestimonialService.SetApproved: %w", err)
	}
	result, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Testimonial{}, fmt.Errorf("service.TestimonialService.SetApproved: %w", err)
	}
	return result, nil
}

// Delete removes a testimonial by ID.
func (s *TestimonialService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TestimonialService.Delete: %w", err)
	}
	return nil
}

// ListApproved returns the approved testimonials, newest first.
func (s *TestimonialService) ListApproved(ctx context.Context) ([]domain.Testimonial, error) {
	out, err := s.repo.List(ctx,
		repo.Where("isApproved", repo.OpEq, true),
		repo.OrderBy(repo.FieldCreatedAt, repo.Desc),
	)
	if err != nil {
		return nil, fmt.Errorf("service.TestimonialService.ListApproved: %w", err)
	}
	return out, nil
}

// ListAll returns every testimonial, newest first.
func (s *TestimonialService) ListAll(ctx context.Context) ([]domain.Testimonial, error) {
	out, err := s.repo.List(ctx, repo.OrderBy(repo.FieldCreatedAt, repo.Desc))
	if err != nil {
		return nil, fmt.Errorf("service.TestimonialService.ListAll: %w", err)
	}
	return out, nil
}

func testimonialFromForm(f validate.TestimonialForm) domain.Testimonial {
	return domain.Testimonial{
		CustomerName: sanitize.Text(f.CustomerName),
		Text:         sanitize.Text(f.Text),
		Rating:       int(f.Rating),
		TripType:     sanitize.Text(f.TripType),
		PhotoURL:     sanitize.URL(f.PhotoURL),
	}
}
