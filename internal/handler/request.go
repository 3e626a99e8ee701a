package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/driftboat/internal/domain"
)

// ClientIDHeader carries the browser-generated client key the login limiter uses.
const ClientIDHeader = "X-Client-ID"

// decodeJSON decodes the request body into dst. Unknown fields are rejected
// so typos surface as 400s instead of silently dropped input.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// clientKey identifies the caller for login throttling: the X-Client-ID
// header when present, otherwise the client address (already resolved by
// chi's RealIP middleware).
func clientKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(ClientIDHeader)); id != "" {
		return id
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// bindQuery binds one optional form-style query parameter into dest, which
// must be a pointer to a pointer (or to a pointer to a slice).
func bindQuery(q url.Values, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
		return fmt.Errorf("query parameter %q: %w", name, err)
	}
	return nil
}

// bindAll runs every binding and returns the first error.
func bindAll(q url.Values, bindings map[string]any) error {
	for name, dest := range bindings {
		if err := bindQuery(q, name, dest); err != nil {
			return err
		}
	}
	return nil
}

// Pagination describes the page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ListResponse wraps one page of a list endpoint.
type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// pageQuery holds the pagination parameters shared by every list endpoint.
type pageQuery struct {
	Page  *int
	Limit *int
}

func (p *pageQuery) bindings() map[string]any {
	return map[string]any{"page": &p.Page, "limit": &p.Limit}
}

// paginate slices one page out of items, which must already be filtered and ordered.
func paginate[T any](items []T, p pageQuery) ListResponse[T] {
	params := domain.NewPaginationParams(p.Page, p.Limit)
	return ListResponse[T]{
		Data:       domain.Page(items, params),
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: len(items)},
	}
}

// dateRange converts an optional from/to pair into a domain.DateRange.
func dateRange(from, to *openapi_types.Date) domain.DateRange {
	var r domain.DateRange
	if from != nil {
		t := from.Time
		r.From = &t
	}
	if to != nil {
		t := to.Time
		r.To = &t
	}
	return r
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
