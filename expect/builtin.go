package expect

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/stretchr/testify/assert"

	"github.com/ethereum-optimism/infra/op-sweetest/types"
)

// CallRecorder is implemented by mock functions that the call matchers can
// inspect, such as *mock.Fn.
type CallRecorder interface {
	Calls() [][]any
}

func toBe(actual any, expected ...any) error {
	want := oneExpected(ToBeName, expected)
	if !strictEqual(actual, want) {
		return types.NewAssertionError("Expected `%s` to be `%s`", format(actual), format(want))
	}
	return nil
}

func toBeNil(actual any, expected ...any) error {
	if len(expected) != 0 {
		panic(fmt.Sprintf("expect: %s takes no expected value, got %d", ToBeNilName, len(expected)))
	}
	if !isNil(actual) {
		return types.NewAssertionError("Expected `%s` to be `nil`", format(actual))
	}
	return nil
}

func toEqual(actual any, expected ...any) error {
	want := oneExpected(ToEqualName, expected)
	if !assert.ObjectsAreEqual(want, actual) {
		return types.NewAssertionError("Expected `%s` to equal `%s`", format(actual), format(want))
	}
	return nil
}

func toHaveBeenCalled(actual any, expected ...any) error {
	if len(expected) != 0 {
		panic(fmt.Sprintf("expect: %s takes no expected value, got %d", ToHaveBeenCalledName, len(expected)))
	}
	if len(recorder(ToHaveBeenCalledName, actual).Calls()) == 0 {
		return types.NewAssertionError("Expected mock function to have been called, but it was never called")
	}
	return nil
}

func toHaveBeenCalledTimes(actual any, expected ...any) error {
	want, ok := oneExpected(ToHaveBeenCalledTimesName, expected).(int)
	if !ok {
		panic(fmt.Sprintf("expect: %s takes an int, got %T", ToHaveBeenCalledTimesName, expected[0]))
	}
	got := len(recorder(ToHaveBeenCalledTimesName, actual).Calls())
	if got != want {
		return types.NewAssertionError("Expected mock function to have been called %s, but it was called %s", times(want), times(got))
	}
	return nil
}

// toHaveBeenCalledWith passes when any recorded call received exactly the
// expected arguments.
func toHaveBeenCalledWith(actual any, expected ...any) error {
	calls := recorder(ToHaveBeenCalledWithName, actual).Calls()
	for _, call := range calls {
		if argsEqual(expected, call) {
			return nil
		}
	}
	if len(calls) == 0 {
		return types.NewAssertionError("Expected mock function to have been called with %s, but it was never called", formatArgs(expected))
	}
	got := make([]string, len(calls))
	for i, call := range calls {
		got[i] = formatArgs(call)
	}
	return types.NewAssertionError("Expected mock function to have been called with %s, but it was called with %s", formatArgs(expected), strings.Join(got, ", "))
}

func recorder(name string, actual any) CallRecorder {
	r, ok := actual.(CallRecorder)
	if !ok || isNil(actual) {
		panic(fmt.Sprintf("expect: %s requires a mock function, got %T", name, actual))
	}
	return r
}

// strictEqual compares comparable values with == and reference types by
// identity. It never panics.
func strictEqual(a, b any) (equal bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		defer func() {
			if recover() != nil {
				equal = false
			}
		}()
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

func argsEqual(want, got []any) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if !assert.ObjectsAreEqual(want[i], got[i]) {
			return false
		}
	}
	return true
}

func format(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%v", v)
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = format(a)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func times(n int) string {
	if n == 1 {
		return "once"
	}
	return fmt.Sprintf("%d times", n)
}
