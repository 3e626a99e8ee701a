// Package repo contains all database access logic for the Driftboat API.
// Entities are stored as JSON documents grouped by collection; Store is the
// generic CRUD contract and Collection adapts it to a typed domain entity.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// Collection names used by the services.
const (
	TripsCollection              = "trips"
	BookingsCollection           = "bookings"
	TestimonialsCollection       = "testimonials"
	ResourcesCollection          = "resources"
	ResourceCategoriesCollection = "resourceCategories"
)

// Reserved document fields. They are backed by columns, never stored in the
// JSON body, and injected into Document.Data on read.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Document is one stored record.
type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the generic document CRUD contract.
// Services depend on Collection, which wraps a Store; both Postgres and
// SQLite implementations satisfy it.
type Store interface {
	// Get returns one document. Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)

	// List returns the documents matching every constraint. Without an
	// OrderBy they come back in creation order.
	List(ctx context.Context, collection string, constraints ...Constraint) ([]Document, error)

	// Create stores data under a new server-generated id and returns the id.
	// Top-level nil values are dropped; the creation time is stamped by the store.
	Create(ctx context.Context, collection string, data map[string]any) (string, error)

	// Update merges data into the top level of an existing document and stamps
	// the update time. Top-level nil values are dropped, not written.
	// Returns domain.ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, data map[string]any) error

	// Delete removes a document. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, collection, id string) error
}

// Op is a comparison operator for Where.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

var sqlOps = map[Op]string{
	OpEq: "=",
	OpNe: "<>",
	OpLt: "<",
	OpLe: "<=",
	OpGt: ">",
	OpGe: ">=",
}

// Direction is a sort direction for OrderBy.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Constraint narrows or orders a List call.
type Constraint interface {
	apply(q *query)
}

type where struct {
	field string
	op    Op
	value any
}

type order struct {
	field string
	dir   Direction
}

type limit int

func (w where) apply(q *query) { q.wheres = append(q.wheres, w) }
func (o order) apply(q *query) { q.orders = append(q.orders, o) }
func (l limit) apply(q *query) { q.limit = int(l) }

// Where keeps documents whose field compares to value under op.
func Where(field string, op Op, value any) Constraint {
	return where{field: field, op: op, value: value}
}

// OrderBy sorts by field. Multiple OrderBy constraints apply in order.
func OrderBy(field string, dir Direction) Constraint {
	return order{field: field, dir: dir}
}

// Limit caps the number of documents returned.
func Limit(n int) Constraint {
	return limit(n)
}

// query is the validated form of a constraint list.
type query struct {
	wheres []where
	orders []order
	limit  int
}

var fieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func buildQuery(constraints []Constraint) (query, error) {
	var q query
	for _, c := range constraints {
		c.apply(&q)
	}
	for _, w := range q.wheres {
		if !fieldName.MatchString(w.field) {
			return query{}, fmt.Errorf("invalid field name %q", w.field)
		}
		if _, ok := sqlOps[w.op]; !ok {
			return query{}, fmt.Errorf("invalid operator %q", w.op)
		}
	}
	for _, o := range q.orders {
		if !fieldName.MatchString(o.field) {
			return query{}, fmt.Errorf("invalid field name %q", o.field)
		}
		if o.dir != Asc && o.dir != Desc {
			return query{}, fmt.Errorf("invalid direction %q", o.dir)
		}
	}
	if q.limit < 0 {
		return query{}, fmt.Errorf("invalid limit %d", q.limit)
	}
	return q, nil
}

// encodeData drops top-level nils and reserved fields and returns the JSON body.
func encodeData(data map[string]any) ([]byte, error) {
	clean := make(map[string]any, len(data))
	for k, v := range data {
		if v == nil || k == FieldID || k == FieldCreatedAt || k == FieldUpdatedAt {
			continue
		}
		clean[k] = v
	}
	return json.Marshal(clean)
}

// decodeDocument builds a Document from a stored row, injecting the
// reserved fields into Data.
func decodeDocument(id string, raw []byte, created, updated time.Time) (Document, error) {
	data := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	created, updated = created.UTC(), updated.UTC()
	data[FieldID] = id
	data[FieldCreatedAt] = created.Format(time.RFC3339Nano)
	data[FieldUpdatedAt] = updated.Format(time.RFC3339Nano)
	return Document{ID: id, Data: data, CreatedAt: created, UpdatedAt: updated}, nil
}

// columnFor maps a reserved field to its column, or "" for body fields.
func columnFor(field string) string {
	switch field {
	case FieldID:
		return "id"
	case FieldCreatedAt:
		return "created_at"
	case FieldUpdatedAt:
		return "updated_at"
	}
	return ""
}
