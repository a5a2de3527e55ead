package table

import (
	"encoding/json"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/cast"
)

// normalize turns json.Number into int64 or float64.
func normalize(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return string(n)
}

func castNumbers(mem memory.Allocator, cells []any) (arrow.Array, error) {
	return buildArray(array.NewFloat64Builder(mem), cells, func(b *array.Float64Builder, v any) error {
		f, err := cast.ToFloat64E(normalize(v))
		if err != nil {
			return err
		}
		b.Append(f)
		return nil
	})
}

func castBooleans(mem memory.Allocator, cells []any) (arrow.Array, error) {
	return buildArray(array.NewBooleanBuilder(mem), cells, func(b *array.BooleanBuilder, v any) error {
		bv, err := cast.ToBoolE(normalize(v))
		if err != nil {
			return err
		}
		b.Append(bv)
		return nil
	})
}

// castTimestamps parses cells as UTC times; strings without a zone are UTC.
func castTimestamps(mem memory.Allocator, cells []any) (arrow.Array, error) {
	return buildArray(array.NewTimestampBuilder(mem, timestampType), cells, func(b *array.TimestampBuilder, v any) error {
		t, err := cast.ToTimeInDefaultLocationE(normalize(v), time.UTC)
		if err != nil {
			return err
		}
		return appendTime(b, t.UTC())
	})
}

func castStrings(mem memory.Allocator, cells []any) (arrow.Array, error) {
	return buildArray(array.NewStringBuilder(mem), cells, func(b *array.StringBuilder, v any) error {
		s, err := cast.ToStringE(normalize(v))
		if err != nil {
			return err
		}
		b.Append(s)
		return nil
	})
}

func toCode(v any) (int, error) {
	return cast.ToIntE(normalize(v))
}
