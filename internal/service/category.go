package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/repo"
	"github.com/pkordes/driftboat/internal/sanitize"
	"github.com/pkordes/driftboat/internal/validate"
)

// CategoryService implements business logic for resource categories.
type CategoryService struct {
	categories repo.CategoryRepo
	resources  repo.ResourceRepo
}

// NewCategoryService constructs a CategoryService backed by the provided repos.
func NewCategoryService(categories repo.CategoryRepo, resources repo.ResourceRepo) *CategoryService {
	return &CategoryService{categories: categories, resources: resources}
}

// Create stores a category. An empty slug is derived from the name.
// Slugs are unique across categories.
func (s *CategoryService) Create(ctx context.Context, f validate.CategoryForm) (domain.Category, error) {
	c, err := s.prepare(ctx, "", f)
	if err != nil {
		return domain.Category{}, fmt.Errorf("service.CategoryService.Create: %w", err)
	}
	result, err := s.categories.Create(ctx, c)
	if err != nil {
		return domain.Category{}, fmt.Errorf("service.CategoryService.Create: %w", err)
	}
	return result, nil
}

// Update overwrites an existing category.
func (s *CategoryService) Update(ctx context.Context, id string, f validate.CategoryForm) (domain.Category, error) {
	c, err := s.prepare(ctx, id, f)
	if err != nil {
		return domain.Category{}, fmt.Errorf("service.CategoryService.Update: %w", err)
	}
	result, err := s.categories.Update(ctx, id, c)
	if err != nil {
		return domain.Category{}, fmt.Errorf("service.CategoryService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a category. It fails with domain.ErrConflict while any
// resource still references it.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	used, err := s.resources.List(ctx, repo.Where("categoryId", repo.OpEq, id), repo.Limit(1))
	if err != nil {
		return fmt.Errorf("service.CategoryService.Delete: %w", err)
	}
	if len(used) > 0 {
		return fmt.Errorf("service.CategoryService.Delete: category has resources: %w", domain.ErrConflict)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.CategoryService.Delete: %w", err)
	}
	return nil
}

// GetByID returns a single category.
func (s *CategoryService) GetByID(ctx context.Context, id string) (domain.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("service.CategoryService.GetByID: %w", err)
	}
	return c, nil
}

// List returns every category ordered by sort order, then name.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	out, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CategoryService.List: %w", err)
	}
	slices.SortStableFunc(out, func(a, b domain.Category) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// prepare validates f, derives the slug and enforces its uniqueness.
// self is the ID being updated, or empty on create.
func (s *CategoryService) prepare(ctx context.Context, self string, f validate.CategoryForm) (domain.Category, error) {
	errs := validate.Category(f)

	c := domain.Category{
		Name:      sanitize.Text(f.Name),
		Slug:      strings.TrimSpace(f.Slug),
		SortOrder: int(f.SortOrder),
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
		if _, bad := errs["name"]; !bad && len(c.Slug) < 2 {
			errs.Set("slug", "Slug could not be derived from the name")
		}
	}

	if _, bad := errs["slug"]; !bad && c.Slug != "" {
		taken, err := s.categories.List(ctx, repo.Where("slug", repo.OpEq, c.Slug))
		if err != nil {
			return domain.Category{}, err
		}
		for _, other := range taken {
			if other.ID != self {
				errs.Set("slug", "Slug is already used by "+other.Name)
				break
			}
		}
	}

	if err := errs.Err(); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

// Slugify lowercases name, strips accents, and joins the remaining letter and
// digit runs with single hyphens: "Rivières & Lakes" becomes "rivieres-lakes".
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
