package query

import (
	"errors"
	"fmt"
)

// ErrConfiguration is wrapped by every ConfigurationError.
var ErrConfiguration = errors.New("invalid query configuration")

// ConfigurationError reports a keyword outside its allowed set.
// It is returned before any network activity.
type ConfigurationError struct {
	Setting string
	Value   string
	Allowed string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s %q (allowed: %s)", ErrConfiguration, e.Setting, e.Value, e.Allowed)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
