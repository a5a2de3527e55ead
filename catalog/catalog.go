// Package catalog provides the field metadata directory consumed by the query engine.
//
// The directory resolves human keywords to field descriptors, resolves discrete
// values to their integer codes and lists the full code table of a discrete field.
// Two implementations are provided:
//   - StaticDirectory: in-memory, built from a field list or a persisted Snapshot
//   - RemoteDirectory: backed by the EMS REST API through a transport.Requester
//
// The package also owns the CodeCache used to decode discrete columns and the
// Snapshot format used to save and load metadata between sessions.
package catalog

import (
	"context"
	"errors"
)

var (
	// ErrFieldNotFound indicates a keyword did not match any field.
	ErrFieldNotFound = errors.New("field not found")

	// ErrValueNotFound indicates a discrete value has no code in the field's table.
	ErrValueNotFound = errors.New("discrete value not found")

	// ErrNotDiscrete indicates a value lookup on a field that is not discrete.
	ErrNotDiscrete = errors.New("field is not discrete")
)

// Directory resolves fields and discrete values.
// Implementations are used from a single goroutine per query session.
type Directory interface {
	ValueLister

	// SearchFields returns the fields matching every keyword, in keyword order.
	// A keyword matching several fields contributes all of them.
	// Returns an error wrapping ErrFieldNotFound if any keyword matches nothing.
	SearchFields(ctx context.Context, keywords ...string) ([]Field, error)

	// ValueID returns the integer code of a discrete value.
	// Resolving the same value twice yields the same code.
	ValueID(ctx context.Context, fieldID string, value string) (int, error)
}

// ValueLister lists the full code table of a discrete field.
type ValueLister interface {
	// ListAllValues returns every code/value pair known for the field.
	// Implementations must not serve a cached table: CodeCache relies on
	// this call to recover from stale metadata.
	ListAllValues(ctx context.Context, fieldID string) ([]ValueEntry, error)
}
