package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hugr-lab/emsquery/catalog"
)

var (
	// ErrTranslation is wrapped by every TranslationError.
	ErrTranslation = errors.New("filter translation failed")

	// ErrNoOperator indicates no conditional operator was found in the expression.
	ErrNoOperator = errors.New("no valid conditional operator found")

	// ErrFieldNotFound indicates neither side of the expression names a field.
	ErrFieldNotFound = errors.New("no field matches the expression")

	// ErrUnsupportedOperator indicates the field type has no rule for the operator.
	ErrUnsupportedOperator = errors.New("unsupported conditional operator")

	// ErrInvalidOperand indicates a side could not be evaluated as a literal, or
	// the literal does not fit the operator (wrong count or type).
	ErrInvalidOperand = errors.New("invalid operand")
)

// TranslationError reports why an expression could not be translated.
type TranslationError struct {
	Expr      string
	Op        string
	FieldType catalog.FieldType
	Err       error
}

func (e *TranslationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "filter %q", e.Expr)
	if e.Op != "" {
		fmt.Fprintf(&b, ": operator %s", e.Op)
	}
	if e.FieldType != "" {
		fmt.Fprintf(&b, " on %s field", e.FieldType)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *TranslationError) Unwrap() []error {
	return []error{ErrTranslation, e.Err}
}
