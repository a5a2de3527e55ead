package filter

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"github.com/hugr-lab/emsquery/catalog"
)

// rule translates a split expression for one field type.
type rule interface {
	translate(ctx context.Context, dir catalog.Directory, op string, field catalog.Field, values []any) (*Filter, error)
}

var rules = map[catalog.FieldType]rule{
	catalog.TypeBoolean:  booleanRule{},
	catalog.TypeDiscrete: discreteRule{},
	catalog.TypeNumber:   numberRule{},
	catalog.TypeString:   stringRule{},
	catalog.TypeDateTime: dateTimeRule{},
}

var comparisonOps = map[string]Operator{
	"==": OpEqual,
	"!=": OpNotEqual,
	"<":  OpLessThan,
	"<=": OpLessThanOrEqual,
	">":  OpGreaterThan,
	">=": OpGreaterThanOrEqual,
}

var membershipOps = map[string]Operator{
	"in":     OpIn,
	"not in": OpNotIn,
}

func unsupported(op string) error {
	return fmt.Errorf("%w %s", ErrUnsupportedOperator, op)
}

func single(values []any) (any, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: expected a single value, got %d", ErrInvalidOperand, len(values))
	}
	return values[0], nil
}

func atLeastOne(values []any) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: expected at least one value", ErrInvalidOperand)
	}
	return nil
}

// distinct drops repeated values, keeping first occurrences in order.
func distinct[T comparable](values []T) []T {
	seen := make(map[T]bool, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// booleanRule: == and != against a boolean become isTrue/isFalse.
type booleanRule struct{}

func (booleanRule) translate(_ context.Context, _ catalog.Directory, op string, field catalog.Field, values []any) (*Filter, error) {
	if op != "==" && op != "!=" {
		return nil, unsupported(op)
	}
	v, err := single(values)
	if err != nil {
		return nil, err
	}
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: %v: use a boolean value", ErrInvalidOperand, v)
	}
	if (op == "==") == b {
		return newFilter(OpIsTrue, field.ID), nil
	}
	return newFilter(OpIsFalse, field.ID), nil
}

// discreteRule: every value is replaced by its integer code.
type discreteRule struct{}

func (discreteRule) translate(ctx context.Context, dir catalog.Directory, op string, field catalog.Field, values []any) (*Filter, error) {
	if t, ok := comparisonOps[op]; ok {
		v, err := single(values)
		if err != nil {
			return nil, err
		}
		code, err := valueID(ctx, dir, field, v)
		if err != nil {
			return nil, err
		}
		return newFilter(t, field.ID, code), nil
	}

	t, ok := membershipOps[op]
	if !ok {
		return nil, unsupported(op)
	}
	if err := atLeastOne(values); err != nil {
		return nil, err
	}
	codes := make([]int, 0, len(values))
	for _, v := range values {
		code, err := valueID(ctx, dir, field, v)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	codes = distinct(codes)
	args := make([]any, len(codes))
	for i, c := range codes {
		args[i] = c
	}
	return newFilter(t, field.ID, args...), nil
}

func valueID(ctx context.Context, dir catalog.Directory, field catalog.Field, v any) (int, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidOperand, err)
	}
	code, err := dir.ValueID(ctx, field.ID, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q of %s: %w", ErrInvalidOperand, s, field.Name, err)
	}
	return code, nil
}

// numberRule: comparison operators, value passed through.
type numberRule struct{}

func (numberRule) translate(_ context.Context, _ catalog.Directory, op string, field catalog.Field, values []any) (*Filter, error) {
	t, ok := comparisonOps[op]
	if !ok {
		return nil, unsupported(op)
	}
	v, err := single(values)
	if err != nil {
		return nil, err
	}
	return newFilter(t, field.ID, v), nil
}

// stringRule: equality and membership, values passed through.
type stringRule struct{}

func (stringRule) translate(_ context.Context, _ catalog.Directory, op string, field catalog.Field, values []any) (*Filter, error) {
	switch op {
	case "==", "!=":
		v, err := single(values)
		if err != nil {
			return nil, err
		}
		return newFilter(comparisonOps[op], field.ID, v), nil
	case "in", "not in":
		if err := atLeastOne(values); err != nil {
			return nil, err
		}
		return newFilter(membershipOps[op], field.ID, distinctAny(values)...), nil
	}
	return nil, unsupported(op)
}

// distinctAny is distinct for literal values; unhashable values are kept as-is.
func distinctAny(values []any) []any {
	seen := make(map[any]bool, len(values))
	out := make([]any, 0, len(values))
	for _, v := range values {
		switch v.(type) {
		case []any, map[string]any:
			out = append(out, v)
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

var dateTimeOps = map[string]Operator{
	"<":  OpDateTimeBefore,
	">=": OpDateTimeOnAfter,
}

// dateTimeRule: only < and >=, with an explicit UTC marker.
type dateTimeRule struct{}

func (dateTimeRule) translate(_ context.Context, _ catalog.Directory, op string, field catalog.Field, values []any) (*Filter, error) {
	t, ok := dateTimeOps[op]
	if !ok {
		return nil, unsupported(op)
	}
	v, err := single(values)
	if err != nil {
		return nil, err
	}
	return newFilter(t, field.ID, v, UTCMarker), nil
}
