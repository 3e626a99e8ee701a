package handler_test

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/handler"
	"github.com/pkordes/driftboat/internal/service"
	"github.com/pkordes/driftboat/internal/validate"
)

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:          "trip-1",
		Title:       "Half Day Float",
		Description: "Four hours on the lower river.",
		Duration:    "4 Hours",
		Price:       45000,
		MaxGuests:   2,
		Difficulty:  domain.DifficultyBeginner,
		Location:    "Lower Madison",
		IsActive:    true,
		CreatedAt:   domain.At(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func tripHandler(svc *mockTripServicer) http.Handler {
	return newHTTPHandler(handler.Services{Trips: svc})
}

// ---- GET /trips ------------------------------------------------------------

func TestListTrips_200_PublicBrowse(t *testing.T) {
	var gotAdmin bool
	var got domain.TripFilter
	svc := &mockTripServicer{
		browse: func(_ context.Context, f domain.TripFilter, admin bool) (service.TripListing, error) {
			got, gotAdmin = f, admin
			return service.TripListing{Trips: []domain.Trip{tripFixture(), tripFixture()}, ActiveFilters: 2}, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet,
		"/trips?search=float&difficulty=Beginner&difficulty=Advanced&location=Lower%20Madison&sort=price-asc", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotAdmin)
	assert.Equal(t, "float", got.Search)
	assert.Equal(t, []domain.Difficulty{domain.DifficultyBeginner, domain.DifficultyAdvanced}, got.Difficulties)
	assert.Equal(t, []string{"Lower Madison"}, got.Locations)
	assert.Equal(t, domain.TripSortPriceAsc, got.Sort)
	assert.Nil(t, got.Price)

	resp := decode[handler.TripListResponse](t, rec)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Pagination.Total)
	assert.Equal(t, 2, resp.ActiveFilters)
	assert.Equal(t, "$450", resp.Data[0].PriceLabel)
}

func TestListTrips_OneSidedPriceLeavesOtherSideOpen(t *testing.T) {
	var got domain.TripFilter
	svc := &mockTripServicer{
		browse: func(_ context.Context, f domain.TripFilter, _ bool) (service.TripListing, error) {
			got = f
			return service.TripListing{}, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet, "/trips?minPrice=20000", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Price)
	assert.Equal(t, 20000.0, got.Price.Min)
	assert.Equal(t, math.MaxFloat64, got.Price.Max)
}

func TestListTrips_200_EmptyIsArray(t *testing.T) {
	svc := &mockTripServicer{
		browse: func(context.Context, domain.TripFilter, bool) (service.TripListing, error) {
			return service.TripListing{}, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet, "/trips", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	// Must be a JSON array, not null.
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestListTrips_400_BadQuery(t *testing.T) {
	rec := do(t, tripHandler(&mockTripServicer{}), http.MethodGet, "/trips?minPrice=cheap", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "bad_request", resp.Error.Code)
}

func TestListTrips_Paginates(t *testing.T) {
	trips := make([]domain.Trip, 5)
	for i := range trips {
		trips[i] = tripFixture()
		trips[i].ID = fmt.Sprintf("trip-%d", i)
	}
	svc := &mockTripServicer{
		browse: func(context.Context, domain.TripFilter, bool) (service.TripListing, error) {
			return service.TripListing{Trips: trips}, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet, "/trips?page=2&limit=2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.TripListResponse](t, rec)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "trip-2", resp.Data[0].ID)
	assert.Equal(t, handler.Pagination{Page: 2, Limit: 2, Total: 5}, resp.Pagination)
}

// ---- GET /admin/trips ------------------------------------------------------

func TestAdminListTrips_PassesStatusAndCreated(t *testing.T) {
	var gotAdmin bool
	var got domain.TripFilter
	svc := &mockTripServicer{
		browse: func(_ context.Context, f domain.TripFilter, admin bool) (service.TripListing, error) {
			got, gotAdmin = f, admin
			return service.TripListing{}, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet,
		"/admin/trips?status=inactive&createdFrom=2026-01-01&createdTo=2026-02-01", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotAdmin)
	assert.Equal(t, []string{"inactive"}, got.Statuses)
	require.True(t, got.Created.IsSet())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got.Created.From.UTC())
}

func TestAdminListTrips_401_WithoutToken(t *testing.T) {
	rec := doAs(t, tripHandler(&mockTripServicer{}), "", http.MethodGet, "/admin/trips", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- GET /trips/{id} -------------------------------------------------------

func TestGetTrip_200(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		getPublic: func(_ context.Context, id string) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet, "/trips/"+fixture.ID, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.Trip](t, rec)
	assert.Equal(t, fixture.ID, resp.ID)
	assert.NotNil(t, resp.Photos)
	assert.NotNil(t, resp.Equipment)
}

func TestGetTrip_404(t *testing.T) {
	svc := &mockTripServicer{
		getPublic: func(context.Context, string) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service: %w", domain.ErrNotFound)
		},
	}

	rec := do(t, tripHandler(svc), http.MethodGet, "/trips/missing", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "not_found", resp.Error.Code)
	assert.Equal(t, "trip not found", resp.Error.Message)
}

// ---- POST /admin/trips -----------------------------------------------------

func TestCreateTrip_201(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		create: func(_ context.Context, f validate.TripForm) (domain.Trip, error) {
			assert.Equal(t, "Half Day Float", f.Title)
			assert.Equal(t, 45000.0, f.Price)
			return fixture, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodPost, "/admin/trips", map[string]any{
		"title": "Half Day Float",
		"price": 45000,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[handler.Trip](t, rec)
	assert.Equal(t, fixture.ID, resp.ID)
}

func TestCreateTrip_422_FieldErrors(t *testing.T) {
	svc := &mockTripServicer{
		create: func(context.Context, validate.TripForm) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w",
				domain.FieldErrors{"title": "Title is required"})
		},
	}

	rec := do(t, tripHandler(svc), http.MethodPost, "/admin/trips", map[string]any{"title": ""})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", resp.Error.Code)
	assert.Equal(t, "Title is required", resp.Error.Fields["title"])
}

func TestCreateTrip_400_UnknownField(t *testing.T) {
	rec := do(t, tripHandler(&mockTripServicer{}), http.MethodPost, "/admin/trips", map[string]any{"name": "x"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- PUT /admin/trips/{id}/active ------------------------------------------

func TestSetTripActive_200(t *testing.T) {
	svc := &mockTripServicer{
		setActive: func(_ context.Context, id string, active bool) (domain.Trip, error) {
			tr := tripFixture()
			tr.ID, tr.IsActive = id, active
			return tr, nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodPut, "/admin/trips/trip-9/active", map[string]any{"active": false})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.Trip](t, rec)
	assert.Equal(t, "trip-9", resp.ID)
	assert.False(t, resp.IsActive)
}

func TestSetTripActive_400_MissingFlag(t *testing.T) {
	rec := do(t, tripHandler(&mockTripServicer{}), http.MethodPut, "/admin/trips/trip-9/active", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- DELETE /admin/trips/{id} ----------------------------------------------

func TestDeleteTrip_204(t *testing.T) {
	var deleted string
	svc := &mockTripServicer{
		delete: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	rec := do(t, tripHandler(svc), http.MethodDelete, "/admin/trips/trip-1", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "trip-1", deleted)
}

func TestDeleteTrip_500_HidesCause(t *testing.T) {
	svc := &mockTripServicer{
		delete: func(context.Context, string) error { return fmt.Errorf("disk on fire") },
	}

	rec := do(t, tripHandler(svc), http.MethodDelete, "/admin/trips/trip-1", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestAdminListTrips_401_BadToken(t *testing.T) {
	rec := doAs(t, tripHandler(&mockTripServicer{}), "forged", http.MethodGet, "/admin/trips", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "unauthorized", resp.Error.Code)
}
