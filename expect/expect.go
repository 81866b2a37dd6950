// Package expect is the assertion surface used inside test cases. Every
// failing expectation panics with a *types.AssertionError, which the case
// runner turns into a failed case.
package expect

import (
	"fmt"
	"strings"

	"github.com/ethereum-optimism/infra/op-sweetest/types"
)

// AssertionError is re-exported for callers that only import expect.
type AssertionError = types.AssertionError

// Expectation binds an actual value to a matcher set.
type Expectation struct {
	actual   any
	matchers *Matchers
}

// Expect starts an expectation against the default matcher set.
func Expect(actual any) *Expectation {
	return defaultMatchers.Expect(actual)
}

// To runs the matcher registered under name. Errors that are not assertion
// failures are converted into one so that a custom matcher cannot abort the
// run by returning a plain error.
func (e *Expectation) To(name string, expected ...any) {
	matcher, ok := e.matchers.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("expect: unknown matcher %q (registered: %s)", name, strings.Join(e.matchers.Names(), ", ")))
	}
	err := matcher.Match(e.actual, expected...)
	if err == nil {
		return
	}
	if assertionErr, ok := types.AsAssertionError(err); ok {
		panic(assertionErr)
	}
	panic(&types.AssertionError{Message: err.Error()})
}

// ToBe asserts strict equality.
func (e *Expectation) ToBe(expected any) {
	e.To(ToBeName, expected)
}

// ToBeNil asserts the actual value is nil, including typed nils.
func (e *Expectation) ToBeNil() {
	e.To(ToBeNilName)
}

// ToEqual asserts deep equality.
func (e *Expectation) ToEqual(expected any) {
	e.To(ToEqualName, expected)
}

func (e *Expectation) ToHaveBeenCalled() {
	e.To(ToHaveBeenCalledName)
}

func (e *Expectation) ToHaveBeenCalledTimes(n int) {
	e.To(ToHaveBeenCalledTimesName, n)
}

func (e *Expectation) ToHaveBeenCalledWith(args ...any) {
	e.To(ToHaveBeenCalledWithName, args...)
}
