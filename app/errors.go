package app

import (
	"errors"
	"fmt"
)

// Exit codes of the op-sweetest binary.
const (
	ExitSuccess     = 0 // All cases pass
	ExitTestFailure = 1 // At least one case failed
	ExitRuntimeErr  = 2 // Configuration errors, sink errors or a panic escaping a spec
)

// RuntimeError represents an operational error that should lead to exit code 2.
// A panic that is not an assertion failure ends up here too.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// TestFailureError represents a run with failed cases (exit code 1)
type TestFailureError struct {
	Message string
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %s", e.Message)
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(message string) *TestFailureError {
	return &TestFailureError{Message: message}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}

// ExitCode maps an error returned by the lifecycle to the process exit code.
// Errors of no known kind count as test failures.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case IsRuntimeError(err):
		return ExitRuntimeErr
	default:
		return ExitTestFailure
	}
}
