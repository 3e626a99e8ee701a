// Package service contains the business logic for the Driftboat API.
// Services validate inputs, sanitize what they store, enforce business rules
// and orchestrate repo calls. No SQL lives here; services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/filter"
	"github.com/pkordes/driftboat/internal/repo"
	"github.com/pkordes/driftboat/internal/sanitize"
	"github.com/pkordes/driftboat/internal/validate"
)

// TripListing is one filtered, ordered view of the trip catalog.
// Options are derived from the unfiltered collection the caller may see.
type TripListing struct {
	Trips         []domain.Trip
	Options       domain.TripFilterOptions
	ActiveFilters int
}

// TripService implements business logic for Trip operations.
type TripService struct {
	repo repo.TripRepo
	log  *slog.Logger
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo, log *slog.Logger) *TripService {
	return &TripService{repo: r, log: log}
}

// Create validates, sanitizes and persists a new trip.
// Returns a domain.FieldErrors (matching domain.ErrValidation) for invalid input.
func (s *TripService) Create(ctx context.Context, f validate.TripForm) (domain.Trip, error) {
	t, err := s.prepare(ctx, f)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	result, err := s.repo.Create(ctx, t)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// Update validates and overwrites an existing trip.
func (s *TripService) Update(ctx context.Context, id string, f validate.TripForm) (domain.Trip, error) {
	t, err := s.prepare(ctx, f)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	result, err := s.repo.Update(ctx, id, t)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return result, nil
}

// SetActive shows or hides a trip on the public site.
func (s *TripService) SetActive(ctx context.Context, id string, active bool) (domain.Trip, error) {
	if err := s.repo.Patch(ctx, id, map[string]any{"isActive": active}); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.SetActive: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID returns a single trip by ID, active or not.
func (s *TripService) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	result, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// GetPublic returns an active trip. Inactive trips are reported as not found.
func (s *TripService) GetPublic(ctx context.Context, id string) (domain.Trip, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if !t.IsActive {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetPublic: %w", domain.ErrNotFound)
	}
	return t, nil
}

// Delete removes a trip by ID. Existing bookings keep their title snapshot.
func (s *TripService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// List returns every trip in creation order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Browse loads the trips the caller may see, derives their facets, and
// applies f. Public callers see active trips only and cannot filter by
// status or creation date.
func (s *TripService) Browse(ctx context.Context, f domain.TripFilter, admin bool) (TripListing, error) {
	var constraints []repo.Constraint
	if !admin {
		constraints = append(constraints, repo.Where("isActive", repo.OpEq, true))
		f.Statuses = nil
		f.Created = domain.DateRange{}
	}

	trips, err := s.repo.List(ctx, constraints...)
	if err != nil {
		return TripListing{}, fmt.Errorf("service.TripService.Browse: %w", err)
	}

	opts := filter.TripOptions(trips)
	defaults := domain.TripFilter{Price: &opts.PriceRange}

	return TripListing{
		Trips:         filter.SortTrips(filter.Trips(trips, f), f.Sort),
		Options:       opts,
		ActiveFilters: filter.CountTripFilters(f, defaults),
	}, nil
}

// prepare validates the raw form, sanitizes it, and validates the result
// again so a value that was only markup is reported as missing.
func (s *TripService) prepare(ctx context.Context, f validate.TripForm) (domain.Trip, error) {
	if err := validate.Trip(f).Err(); err != nil {
		return domain.Trip{}, err
	}
	for field, value := range map[string]string{
		"title":       f.Title,
		"description": f.Description,
		"duration":    f.Duration,
		"location":    f.Location,
	} {
		sanitize.Advise(ctx, s.log, field, value)
	}
	for _, item := range f.Equipment {
		sanitize.Advise(ctx, s.log, "includedEquipment", item)
	}

	clean := cleanTripForm(f)
	if err := validate.Trip(clean).Err(); err != nil {
		return domain.Trip{}, err
	}
	return tripFromForm(clean), nil
}

// cleanTripForm returns f with its text and links sanitized.
func cleanTripForm(f validate.TripForm) validate.TripForm {
	f.Title = sanitize.Text(f.Title)
	f.Description = sanitize.Text(f.Description)
	f.Duration = sanitize.Text(f.Duration)
	f.Location = sanitize.Text(f.Location)
	f.Photos = cleanList(f.Photos, sanitize.URL)
	f.Equipment = cleanList(f.Equipment, sanitize.Text)
	return f
}

// tripFromForm maps a sanitized form to a Trip.
func tripFromForm(f validate.TripForm) domain.Trip {
	return domain.Trip{
		Title:       f.Title,
		Description: f.Description,
		Duration:    f.Duration,
		Price:       int64(f.Price),
		MaxGuests:   int(f.MaxGuests),
		Difficulty:  domain.Difficulty(f.Difficulty),
		Photos:      f.Photos,
		Equipment:   f.Equipment,
		Location:    f.Location,
		IsActive:    f.IsActive,
	}
}

// cleanList sanitizes each item with fn and drops those that come out empty.
// The result is never nil so an emptied list is stored, not skipped.
func cleanList(items []string, fn func(string) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := fn(item); strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
