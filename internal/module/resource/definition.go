// Package resource provides the generic CRUD stack shared by every back-office
// collection: a GORM repository, a service, JSON handlers, a read-only HTML list
// page and the module that registers them.
package resource

import (
	"errors"
	"regexp"

	"github.com/simp-lee/backoffice/internal/listquery"
)

// Payload is a validated create or update request body. Apply copies the
// payload onto an entity and may reject cross-field combinations with a
// domain validation error.
type Payload[T any] interface {
	Apply(entity *T) error
}

// Definition describes one collection.
type Definition[T any] struct {
	// Collection is the plural name used as URL segment and JSON list key.
	Collection string
	Title      string
	// Columns drive both the allowed sort/filter fields and the HTML list page.
	Columns []listquery.Column
	// SearchFields are matched by the free-text search parameter.
	SearchFields []string
	// ExtraFilters are filterable fields that are not displayed as columns.
	ExtraFilters []string
	DefaultSort  string

	NewPayload func() Payload[T]
	// NewUpdatePayload is optional; NewPayload is used when nil.
	NewUpdatePayload func() Payload[T]
}

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate reports configuration mistakes that would otherwise surface as
// broken routes or silently ignored query parameters.
func (d Definition[T]) Validate() error {
	if !collectionName.MatchString(d.Collection) {
		return errors.New("resource: collection must be a lower-case identifier")
	}
	if d.NewPayload == nil {
		return errors.New("resource: " + d.Collection + ": NewPayload is required")
	}
	if len(d.Columns) == 0 {
		return errors.New("resource: " + d.Collection + ": at least one column is required")
	}
	return nil
}

// SortFields lists the columns that may appear in the sort parameter.
func (d Definition[T]) SortFields() []string {
	var out []string
	for _, c := range d.Columns {
		if c.Sortable {
			out = append(out, c.ID)
		}
	}
	return out
}

// FilterFields lists the fields that may be used as filter parameters.
func (d Definition[T]) FilterFields() []string {
	var out []string
	for _, c := range d.Columns {
		if c.Filterable {
			out = append(out, c.ID)
		}
	}
	return append(out, d.ExtraFilters...)
}

func (d Definition[T]) updatePayload() Payload[T] {
	if d.NewUpdatePayload != nil {
		return d.NewUpdatePayload()
	}
	return d.NewPayload()
}
