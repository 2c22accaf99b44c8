// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
)

// ErrInvalidStride is returned when a time or frequency stride is below 1.
var ErrInvalidStride = errors.New("stride must be at least 1")

// ConfigurationError reports an unusable processor setting. It is not
// recoverable: the constructor or setter that returned it had no effect.
type ConfigurationError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
