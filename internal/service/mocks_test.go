package service_test

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/repo"
)

// mockRepo is a hand-written test double for repo.Repository[T].
// Each method is a function field; set only the ones your test needs.
type mockRepo[T any] struct {
	get    func(ctx context.Context, id string) (T, error)
	list   func(ctx context.Context, constraints ...repo.Constraint) ([]T, error)
	create func(ctx context.Context, v T) (T, error)
	update func(ctx context.Context, id string, v T) (T, error)
	patch  func(ctx context.Context, id string, fields map[string]any) error
	delete func(ctx context.Context, id string) error
}

func (m *mockRepo[T]) Get(ctx context.Context, id string) (T, error) {
	return m.get(ctx, id)
}
func (m *mockRepo[T]) List(ctx context.Context, constraints ...repo.Constraint) ([]T, error) {
	return m.list(ctx, constraints...)
}
func (m *mockRepo[T]) Create(ctx context.Context, v T) (T, error) {
	return m.create(ctx, v)
}
func (m *mockRepo[T]) Update(ctx context.Context, id string, v T) (T, error) {
	return m.update(ctx, id, v)
}
func (m *mockRepo[T]) Patch(ctx context.Context, id string, fields map[string]any) error {
	return m.patch(ctx, id, fields)
}
func (m *mockRepo[T]) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

// compile-time checks: mockRepo must satisfy every typed repo.
var (
	_ repo.TripRepo        = (*mockRepo[domain.Trip])(nil)
	_ repo.BookingRepo     = (*mockRepo[domain.Booking])(nil)
	_ repo.TestimonialRepo = (*mockRepo[domain.Testimonial])(nil)
	_ repo.ResourceRepo    = (*mockRepo[domain.Resource])(nil)
	_ repo.CategoryRepo    = (*mockRepo[domain.Category])(nil)
)

// echoRepo returns a repo that hands back whatever Create or Update receives,
// for tests that only care about validation and mapping.
func echoRepo[T any]() *mockRepo[T] {
	return &mockRepo[T]{
		create: func(_ context.Context, v T) (T, error) { return v, nil },
		update: func(_ context.Context, _ string, v T) (T, error) { return v, nil },
	}
}

// listing returns a list func that always yields items.
func listing[T any](items ...T) func(context.Context, ...repo.Constraint) ([]T, error) {
	return func(context.Context, ...repo.Constraint) ([]T, error) { return items, nil }
}

func notFound[T any](context.Context, string) (T, error) {
	var zero T
	return zero, domain.ErrNotFound
}

// discardLogger returns a JSON logger writing to buf.
func discardLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

// quietLogger drops every record.
func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
