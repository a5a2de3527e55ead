// Package query defines the query descriptor submitted to the EMS database
// query endpoints.
//
// A Descriptor is plain data: New applies the default-construction rule and
// the emsquery builder mutates the result. The JSON encoding is the wire body
// of both the single-shot and the paged query endpoints.
package query

import (
	"github.com/hugr-lab/emsquery/filter"
)

// Descriptor is the wire form of a flight query.
type Descriptor struct {
	Select   []SelectItem  `json:"select"`
	GroupBy  []GroupItem   `json:"groupBy"`
	OrderBy  []OrderItem   `json:"orderBy"`
	Filter   *filter.Group `json:"filter,omitempty"`
	Distinct bool          `json:"distinct"`
	Format   Format        `json:"format"`
	Top      *int          `json:"top,omitempty"`
}

// SelectItem selects one field, optionally aggregated.
type SelectItem struct {
	FieldID   string    `json:"fieldId"`
	Aggregate Aggregate `json:"aggregate"`
}

// GroupItem groups by one field.
type GroupItem struct {
	FieldID string `json:"fieldId"`
}

// OrderItem sorts by one field.
type OrderItem struct {
	FieldID   string    `json:"fieldId"`
	Order     Order     `json:"order"`
	Aggregate Aggregate `json:"aggregate"`
}

// New returns a descriptor with the default settings: distinct rows, raw
// format, no filter, no row limit and empty clauses.
func New() *Descriptor {
	return &Descriptor{
		Select:   []SelectItem{},
		GroupBy:  []GroupItem{},
		OrderBy:  []OrderItem{},
		Distinct: true,
		Format:   FormatNone,
	}
}

// AddFilter appends a predicate to the top-level "and" group, creating the
// group on first use.
func (d *Descriptor) AddFilter(n filter.Node) {
	if d.Filter == nil {
		d.Filter = filter.NewGroup()
	}
	d.Filter.Add(n)
}

// Limit returns the row limit and whether one is set.
func (d *Descriptor) Limit() (int, bool) {
	if d.Top == nil {
		return 0, false
	}
	return *d.Top, true
}
