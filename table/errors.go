package table

import (
	"fmt"

	"github.com/hugr-lab/emsquery/catalog"
)

// MaterializationError reports a column that could not be cast.
// The column is kept with its raw cells.
type MaterializationError struct {
	Column string
	Type   catalog.FieldType
	Err    error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("column %q (%s): %v", e.Column, e.Type, e.Err)
}

func (e *MaterializationError) Unwrap() []error {
	return []error{ErrMaterialization, e.Err}
}
