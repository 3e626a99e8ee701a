package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkordes/driftboat/internal/domain"
)

// Repository is the typed persistence contract for one entity.
// The service layer depends on this interface, not the concrete Collection,
// which allows services to be unit-tested with a mock.
type Repository[T any] interface {
	// Get retrieves a single entity. Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (T, error)

	// List returns the entities matching every constraint.
	List(ctx context.Context, constraints ...Constraint) ([]T, error)

	// Create stores v and returns the persisted record with id and timestamps populated.
	Create(ctx context.Context, v T) (T, error)

	// Update overwrites the stored fields of an existing entity and returns
	// the updated record. Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, id string, v T) (T, error)

	// Patch merges only the given top-level fields.
	Patch(ctx context.Context, id string, fields map[string]any) error

	// Delete removes an entity. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// Typed repositories used by the services.
type (
	TripRepo        = Repository[domain.Trip]
	BookingRepo     = Repository[domain.Booking]
	TestimonialRepo = Repository[domain.Testimonial]
	ResourceRepo    = Repository[domain.Resource]
	CategoryRepo    = Repository[domain.Category]
)

// Collection maps an entity type to a named collection of a Store using the
// entity's JSON encoding.
type Collection[T any] struct {
	store Store
	name  string
}

// NewCollection returns a Repository for the named collection.
func NewCollection[T any](store Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

// NewTripRepo, NewBookingRepo and friends bind each entity to its collection.
func NewTripRepo(store Store) TripRepo { return NewCollection[domain.Trip](store, TripsCollection) }

func NewBookingRepo(store Store) BookingRepo {
	return NewCollection[domain.Booking](store, BookingsCollection)
}

func NewTestimonialRepo(store Store) TestimonialRepo {
	return NewCollection[domain.Testimonial](store, TestimonialsCollection)
}

func NewResourceRepo(store Store) ResourceRepo {
	return NewCollection[domain.Resource](store, ResourcesCollection)
}

func NewCategoryRepo(store Store) CategoryRepo {
	return NewCollection[domain.Category](store, ResourceCategoriesCollection)
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return zero, err
	}
	v, err := fromDocument[T](doc)
	if err != nil {
		return zero, fmt.Errorf("repo.Collection[%s].Get: %w", c.name, err)
	}
	return v, nil
}

func (c *Collection[T]) List(ctx context.Context, constraints ...Constraint) ([]T, error) {
	docs, err := c.store.List(ctx, c.name, constraints...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := fromDocument[T](d)
		if err != nil {
			return nil, fmt.Errorf("repo.Collection[%s].List: %w", c.name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Collection[T]) Create(ctx context.Context, v T) (T, error) {
	var zero T
	data, err := toData(v)
	if err != nil {
		return zero, fmt.Errorf("repo.Collection[%s].Create: %w", c.name, err)
	}
	id, err := c.store.Create(ctx, c.name, data)
	if err != nil {
		return zero, err
	}
	return c.Get(ctx, id)
}

func (c *Collection[T]) Update(ctx context.Context, id string, v T) (T, error) {
	var zero T
	data, err := toData(v)
	if err != nil {
		return zero, fmt.Errorf("repo.Collection[%s].Update: %w", c.name, err)
	}
	if err := c.store.Update(ctx, c.name, id, data); err != nil {
		return zero, err
	}
	return c.Get(ctx, id)
}

func (c *Collection[T]) Patch(ctx context.Context, id string, fields map[string]any) error {
	return c.store.Update(ctx, c.name, id, fields)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

// toData encodes v as a top-level field map.
func toData(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	data := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func fromDocument[T any](doc Document) (T, error) {
	var v T
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	return v, nil
}

var _ TripRepo = (*Collection[domain.Trip])(nil)
