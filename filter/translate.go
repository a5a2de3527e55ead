package filter

import (
	"context"
	"errors"
	"fmt"

	"github.com/hugr-lab/emsquery/catalog"
)

// Translate compiles a conditional expression into a predicate node.
//
// The left side is tried as the field reference first. If it does not name a
// field, the right side is tried and the operator direction is mirrored, so
// "1000 < 'altitude'" translates like "'altitude' > 1000".
func Translate(ctx context.Context, expression string, dir catalog.Directory) (*Filter, error) {
	e, err := Split(expression)
	if err != nil {
		return nil, err
	}
	fail := func(op string, ft catalog.FieldType, err error) error {
		return &TranslationError{Expr: expression, Op: op, FieldType: ft, Err: err}
	}

	left, err := evalLiteral(e.Left)
	if err != nil {
		return nil, fail(e.Op, "", fmt.Errorf("left side: %w", err))
	}
	right, err := evalLiteral(e.Right)
	if err != nil {
		return nil, fail(e.Op, "", fmt.Errorf("right side: %w", err))
	}

	op := e.Op
	field, ok, err := resolveField(ctx, dir, left)
	if err != nil {
		return nil, fail(op, "", err)
	}
	values := flatten(right)
	if !ok {
		field, ok, err = resolveField(ctx, dir, right)
		if err != nil {
			return nil, fail(op, "", err)
		}
		if !ok {
			return nil, fail(op, "", fmt.Errorf("%w: %v", ErrFieldNotFound, left))
		}
		op = mirror(op)
		values = flatten(left)
	}

	r, ok := rules[field.Type]
	if !ok {
		return nil, fail(op, field.Type, fmt.Errorf("%w: %s has an unknown field type", ErrUnsupportedOperator, field.Name))
	}
	f, err := r.translate(ctx, dir, op, field, values)
	if err != nil {
		return nil, fail(op, field.Type, err)
	}
	return f, nil
}

// resolveField looks a literal up as a field keyword.
// Returns ok=false when the literal is not a string or matches no field.
func resolveField(ctx context.Context, dir catalog.Directory, v any) (catalog.Field, bool, error) {
	kw, ok := v.(string)
	if !ok || kw == "" {
		return catalog.Field{}, false, nil
	}
	fields, err := dir.SearchFields(ctx, kw)
	if errors.Is(err, catalog.ErrFieldNotFound) {
		return catalog.Field{}, false, nil
	}
	if err != nil {
		return catalog.Field{}, false, fmt.Errorf("search field %q: %w", kw, err)
	}
	if len(fields) == 0 {
		return catalog.Field{}, false, nil
	}
	return fields[0], true, nil
}
