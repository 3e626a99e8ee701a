package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/repo"
	"github.com/pkordes/driftboat/internal/sanitize"
	"github.com/pkordes/driftboat/internal/validate"
)

// ResourceService implements business logic for the resource library.
type ResourceService struct {
	resources  repo.ResourceRepo
	categories repo.CategoryRepo
	log        *slog.Logger
}

// NewResourceService constructs a ResourceService backed by the provided repos.
func NewResourceService(resources repo.ResourceRepo, categories repo.CategoryRepo, log *slog.Logger) *ResourceService {
	return &ResourceService{resources: resources, categories: categories, log: log}
}

// Create validates, sanitizes and stores a resource.
func (s *ResourceService) Create(ctx context.Context, f validate.ResourceForm) (domain.Resource, error) {
	r, err := s.prepare(ctx, f)
	if err != nil {
		return domain.Resource{}, fmt.Errorf("service.ResourceService.Create: %w", err)
	}
	result, err := s.resources.Create(ctx, r)
	if err != nil {
		return domain.Resource{}, fmt.Errorf("service.ResourceService.Create: %w", err)
	}
	return result, nil
}

// Update overwrites an existing resource.
func (s *ResourceService) Update(ctx context.Context, id string, f validate.ResourceForm) (domain.Resource, error) {
	r, err := s.prepare(ctx, f)
	if err != nil {
		return domain.Resource{}, fmt.Errorf("service.ResourceService.Update: %w", err)
	}
	result, err := s.resources.Update(ctx, id, r)
	if err != nil {
		return domain.Resource{}, fmt.Errorf("service.ResourceService.Update: %w", err)
	}
	return result, nil
}

// SetVisible shows or hides a resource on the public site.
func (s *ResourceService) SetVisible(ctx context.Context, id string, visible bool) (domain.Resource, error) {
	if err := s.resources.Patch(ctx, id, map[string]any{"isVisible": visible}); err != nil {
		return domain.Resource{}, fmt.Errorf("service.ResourceService.SetVisible: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID returns a resource, visible or not.
func (s *ResourceService) GetByID(ctx context.Context, id string) (domain.Resource, error) {
	r, err := s.resources.Get(ctx, id)
	if err != nil {
		return domain.Resource{}, fmt.Errorf("service.ResourceService.GetByID: %w", err)
	}
	return r, nil
}

// GetVisible returns a visible resource. Hidden resources are reported as not found.
func (s *ResourceService) GetVisible(ctx context.Context, id string) (domain.Resource, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Resource{}, err
	}
	if !r.IsVisible {
		return domain.Resource{}, fmt.Errorf("service.ResourceService.GetVisible: %w", domain.ErrNotFound)
	}
	return r, nil
}

// Delete removes a resource by ID.
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	if err := s.resources.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ResourceService.Delete: %w", err)
	}
	return nil
}

// ListVisible returns visible resources, optionally limited to one category.
func (s *ResourceService) ListVisible(ctx context.Context, categoryID string) ([]domain.Resource, error) {
	constraints := []repo.Constraint{repo.Where("isVisible", repo.OpEq, true)}
	if categoryID != "" {
		constraints = append(constraints, repo.Where("categoryId", repo.OpEq, categoryID))
	}
	out, err := s.resources.List(ctx, constraints...)
	if err != nil {
		return nil, fmt.Errorf("service.ResourceService.ListVisible: %w", err)
	}
	return out, nil
}

// ListAll returns every resource, most recently updated first.
func (s *ResourceService) ListAll(ctx context.Context) ([]domain.Resource, error) {
	out, err := s.resources.List(ctx, repo.OrderBy(repo.FieldUpdatedAt, repo.Desc))
	if err != nil {
		return nil, fmt.Errorf("service.ResourceService.ListAll: %w", err)
	}
	return out, nil
}

// validate runs the form rules and checks that the category exists.
func (s *ResourceService) validate(ctx context.Context, f validate.ResourceForm) error {
	errs := validate.Resource(f)
	if _, ok := errs["categoryId"]; !ok {
		_, err := s.categories.Get(ctx, f.CategoryID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			errs.Set("categoryId", "Selected category does not exist")
		case err != nil:
			return err
		}
	}
	return errs.Err()
}

// resourceText sanitizes the resource's own fields; only the body keeps inline tags.
var resourceText = sanitize.Options{RichFields: []string{"body"}}

// prepare validates f, sanitizes it, and runs the form rules again on the
// sanitized content so blocks that held only markup are rejected.
func (s *ResourceService) prepare(ctx context.Context, f validate.ResourceForm) (domain.Resource, error) {
	if err := s.validate(ctx, f); err != nil {
		return domain.Resource{}, err
	}
	sanitize.Advise(ctx, s.log, "title", f.Title)
	sanitize.Advise(ctx, s.log, "body", f.Body)
	for i, b := range f.Blocks {
		field := fmt.Sprintf("blocks[%d]", i)
		for _, text := range blockText(b) {
			sanitize.Advise(ctx, s.log, field, text)
		}
	}

	text := sanitize.Map(map[string]any{"title": f.Title, "body": f.Body}, resourceText)
	clean := f
	clean.Title, _ = text["title"].(string)
	clean.Body, _ = text["body"].(string)
	clean.Blocks = make(domain.Blocks, 0, len(f.Blocks))
	for _, b := range f.Blocks {
		clean.Blocks = append(clean.Blocks, sanitizeBlock(b))
	}
	if err := validate.Resource(clean).Err(); err != nil {
		return domain.Resource{}, err
	}
	return domain.Resource{
		Title:      clean.Title,
		Body:       clean.Body,
		Blocks:     clean.Blocks,
		CategoryID: clean.CategoryID,
		IsVisible:  clean.IsVisible,
	}, nil
}

// blockText returns the free-text values of a block.
func blockText(b domain.ContentBlock) []string {
	switch v := b.(type) {
	case domain.HeadingBlock:
		return []string{v.Text}
	case domain.ParagraphBlock:
		return []string{v.Text}
	case domain.ListBlock:
		return v.Items
	case domain.ImageBlock:
		return []string{v.URL, v.Alt, v.Caption}
	}
	return nil
}

// sanitizeBlock cleans the text of one validated block. Paragraphs keep the
// inline tag subset; everything else is plain text.
func sanitizeBlock(b domain.ContentBlock) domain.ContentBlock {
	switch v := b.(type) {
	case domain.HeadingBlock:
		v.Text = sanitize.Text(v.Text)
		return v
	case domain.ParagraphBlock:
		v.Text = sanitize.RichText(v.Text)
		return v
	case domain.ListBlock:
		v.Items = cleanList(v.Items, sanitize.Text)
		return v
	case domain.ImageBlock:
		v.URL = sanitize.URL(v.URL)
		v.Alt = sanitize.Text(v.Alt)
		v.Caption = sanitize.Text(v.Caption)
		return v
	default:
		panic(fmt.Sprintf("sanitizeBlock: unexpected block %T", b))
	}
}
