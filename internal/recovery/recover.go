// Package recovery turns panics raised while handling query results into
// errors, so a bad column or page cannot abort a whole result.
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ErrPanic is wrapped by errors produced from a recovered panic.
var ErrPanic = errors.New("panic recovered")

// RecoverToError runs fn and converts a panic into an error wrapping ErrPanic.
// The panic value and stack are logged at error level.
//
// Example:
//
//	err := recovery.RecoverToError(logger, "read async page", func() error {
//	    return readPage(ctx, id)
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(logger, operation, r)
		}
	}()
	return fn()
}

// RecoverToValue is RecoverToError for functions returning a value.
// On panic the zero value is returned.
//
// Example:
//
//	col, err := recovery.RecoverToValue(logger, "materialize Altitude", func() (*table.Column, error) {
//	    return castColumn(ctx, col, field)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = panicError(logger, operation, r)
		}
	}()
	return fn()
}

// Recover runs a cleanup function whose failures cannot be returned, such as
// closing a server-side query. A panic is logged and swallowed.
func Recover(logger *slog.Logger, operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in cleanup",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

func panicError(logger *slog.Logger, operation string, r any) error {
	logger.Error("Panic recovered",
		"operation", operation,
		"panic", r,
		"stack", string(debug.Stack()),
	)
	return fmt.Errorf("%w: %s: %v", ErrPanic, operation, r)
}
