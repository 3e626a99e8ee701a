package handler

import (
	"math"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/validate"
)

// Trip is the API representation of a domain.Trip.
type Trip struct {
	domain.Trip
	// PriceLabel is the price formatted for display, e.g. "$1,250".
	PriceLabel string `json:"priceLabel"`
}

// TripListResponse is one page of a trip listing with its facets.
type TripListResponse struct {
	ListResponse[Trip]
	Options       domain.TripFilterOptions `json:"options"`
	ActiveFilters int                      `json:"activeFilters"`
}

// tripQuery holds the query parameters of the trip listings.
type tripQuery struct {
	pageQuery
	Search      *string
	Difficulty  *[]string
	Duration    *[]string
	Location    *[]string
	MinPrice    *float64
	MaxPrice    *float64
	Status      *[]string
	CreatedFrom *openapi_types.Date
	CreatedTo   *openapi_types.Date
	Sort        *string
}

func bindTripQuery(q url.Values) (tripQuery, error) {
	var p tripQuery
	bindings := p.bindings()
	for name, dest := range map[string]any{
		"search":      &p.Search,
		"difficulty":  &p.Difficulty,
		"duration":    &p.Duration,
		"location":    &p.Location,
		"minPrice":    &p.MinPrice,
		"maxPrice":    &p.MaxPrice,
		"status":      &p.Status,
		"createdFrom": &p.CreatedFrom,
		"createdTo":   &p.CreatedTo,
		"sort":        &p.Sort,
	} {
		bindings[name] = dest
	}
	if err := bindAll(q, bindings); err != nil {
		return tripQuery{}, err
	}
	return p, nil
}

// filter converts the query to a domain.TripFilter. A price bound given on
// one side only leaves the other side open.
func (p tripQuery) filter() domain.TripFilter {
	f := domain.TripFilter{
		Search:    deref(p.Search),
		Durations: deref(p.Duration),
		Locations: deref(p.Location),
		Statuses:  deref(p.Status),
		Created:   dateRange(p.CreatedFrom, p.CreatedTo),
		Sort:      domain.TripSort(deref(p.Sort)),
	}
	for _, d := range deref(p.Difficulty) {
		f.Difficulties = append(f.Difficulties, domain.Difficulty(d))
	}
	if p.MinPrice != nil || p.MaxPrice != nil {
		f.Price = &domain.PriceRange{Min: 0, Max: math.MaxFloat64}
		if p.MinPrice != nil {
			f.Price.Min = *p.MinPrice
		}
		if p.MaxPrice != nil {
			f.Price.Max = *p.MaxPrice
		}
	}
	return f
}

// ListTrips handles GET /trips: active trips only.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	s.browseTrips(w, r, false)
}

// AdminListTrips handles GET /admin/trips: every trip, with status and creation filters.
func (s *Server) AdminListTrips(w http.ResponseWriter, r *http.Request) {
	s.browseTrips(w, r, true)
}

func (s *Server) browseTrips(w http.ResponseWriter, r *http.Request, admin bool) {
	q, err := bindTripQuery(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}

	listing, err := s.Trips.Browse(r.Context(), q.filter(), admin)
	if err != nil {
		s.fail(w, r, err, "trip")
		return
	}

	page := paginate(tripsToResponse(listing.Trips), q.pageQuery)
	writeJSON(w, http.StatusOK, TripListResponse{
		ListResponse:  page,
		Options:       listing.Options,
		ActiveFilters: listing.ActiveFilters,
	})
}

// GetTrip handles GET /trips/{id}. Inactive trips are not found.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.Trips.GetPublic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// AdminGetTrip handles GET /admin/trips/{id}.
func (s *Server) AdminGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.Trips.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// CreateTrip handles POST /admin/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var f validate.TripForm
	if err := decodeJSON(r, &f); err != nil {
		badRequest(w, err)
		return
	}

	created, err := s.Trips.Create(r.Context(), f)
	if err != nil {
		s.fail(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// UpdateTrip handles PUT /admin/trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	var f validate.TripForm
	if err := decodeJSON(r, &f); err != nil {
		badRequest(w, err)
		return
	}

	updated, err := s.Trips.Update(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		s.fail(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// SetTripActive handles PUT /admin/trips/{id}/active with body {"active": bool}.
func (s *Server) SetTripActive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Active *bool `json:"active"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	if body.Active == nil {
		writeProblem(w, http.StatusBadRequest, "bad_request", `"active" is required`)
		return
	}

	trip, err := s.Trips.SetActive(r.Context(), chi.URLParam(r, "id"), *body.Active)
	if err != nil {
		s.fail(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTrip handles DELETE /admin/trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.Trips.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, "trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// priceLabel formats a price in minor units as dollars, dropping zero cents.
func priceLabel(minor int64) string {
	if minor%100 == 0 {
		return pricePrinter.Sprintf("$%d", minor/100)
	}
	return pricePrinter.Sprintf("$%.2f", float64(minor)/100)
}

func tripToResponse(t domain.Trip) Trip {
	if t.Photos == nil {
		t.Photos = []string{}
	}
	if t.Equipment == nil {
		t.Equipment = []string{}
	}
	return Trip{Trip: t, PriceLabel: priceLabel(t.Price)}
}

func tripsToResponse(trips []domain.Trip) []Trip {
	out := make([]Trip, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	return out
}
