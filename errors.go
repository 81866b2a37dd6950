package sweetest

import (
	"errors"
	"fmt"
)

// UsageError is raised, as a panic, when the registration surface is used
// incorrectly, for example It() outside of any Describe() body. It is never
// recovered by the engine.
type UsageError struct {
	Call   string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s %s", e.Call, e.Reason)
}

// NewUsageError creates a UsageError for a call made with no active suite.
func NewUsageError(call string) *UsageError {
	return &UsageError{Call: call, Reason: "must be called within a Describe() block"}
}

// IsUsageError checks if the error is or wraps a UsageError
func IsUsageError(err error) bool {
	var usageErr *UsageError
	return err != nil && errors.As(err, &usageErr)
}
