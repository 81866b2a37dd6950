package types

import (
	"errors"
	"fmt"
)

// AssertionError is the failure raised by a matcher on mismatch. It is the
// only panic value the case runner recovers; its message is reported verbatim.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return e.Message
}

// NewAssertionError creates a new AssertionError
func NewAssertionError(format string, args ...any) *AssertionError {
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// AsAssertionError extracts an AssertionError from a recovered panic value.
// Errors wrapping an AssertionError are accepted as well.
func AsAssertionError(v any) (*AssertionError, bool) {
	err, ok := v.(error)
	if !ok {
		return nil, false
	}
	var assertionErr *AssertionError
	if errors.As(err, &assertionErr) {
		return assertionErr, true
	}
	return nil, false
}

// IsAssertionError checks if the error is or wraps an AssertionError
func IsAssertionError(err error) bool {
	_, ok := AsAssertionError(err)
	return err != nil && ok
}
