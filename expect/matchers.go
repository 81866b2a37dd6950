package expect

import (
	"fmt"
	"sort"
	"sync"
)

// Built-in matcher names.
const (
	ToBeName                  = "toBe"
	ToBeNilName               = "toBeNil"
	ToEqualName               = "toEqual"
	ToHaveBeenCalledName      = "toHaveBeenCalled"
	ToHaveBeenCalledTimesName = "toHaveBeenCalledTimes"
	ToHaveBeenCalledWithName  = "toHaveBeenCalledWith"
)

// Matcher compares an actual value against optional expected values. A
// mismatch is reported by returning an error, normally a
// *types.AssertionError.
type Matcher interface {
	Match(actual any, expected ...any) error
}

// MatcherFunc adapts a plain function to the Matcher interface.
type MatcherFunc func(actual any, expected ...any) error

// Match calls f(actual, expected...).
func (f MatcherFunc) Match(actual any, expected ...any) error {
	return f(actual, expected...)
}

// Matchers maps matcher names to comparison functions. New names can be
// registered at any time.
type Matchers struct {
	mu       sync.RWMutex
	matchers map[string]Matcher
}

// NewMatchers returns a set holding the built-in matchers.
func NewMatchers() *Matchers {
	m := &Matchers{matchers: make(map[string]Matcher)}
	m.Add(ToBeName, MatcherFunc(toBe))
	m.Add(ToBeNilName, MatcherFunc(toBeNil))
	m.Add(ToEqualName, MatcherFunc(toEqual))
	m.Add(ToHaveBeenCalledName, MatcherFunc(toHaveBeenCalled))
	m.Add(ToHaveBeenCalledTimesName, MatcherFunc(toHaveBeenCalledTimes))
	m.Add(ToHaveBeenCalledWithName, MatcherFunc(toHaveBeenCalledWith))
	return m
}

// Add registers matcher under name, replacing any previous registration.
func (m *Matchers) Add(name string, matcher Matcher) {
	if name == "" || matcher == nil {
		panic("expect: matcher name and implementation are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchers[name] = matcher
}

// Lookup returns the matcher registered under name.
func (m *Matchers) Lookup(name string) (Matcher, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matcher, ok := m.matchers[name]
	return matcher, ok
}

// Names returns the registered matcher names, sorted.
func (m *Matchers) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.matchers))
	for name := range m.matchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Expect starts an expectation checked against this matcher set.
func (m *Matchers) Expect(actual any) *Expectation {
	return &Expectation{actual: actual, matchers: m}
}

var defaultMatchers = NewMatchers()

// Default returns the matcher set used by the package-level Expect.
func Default() *Matchers {
	return defaultMatchers
}

// AddMatcher registers a matcher in the default set.
func AddMatcher(name string, matcher Matcher) {
	defaultMatchers.Add(name, matcher)
}

// oneExpected returns the single expected value a matcher requires. A wrong
// arity is a programming error and panics without an assertion failure.
func oneExpected(name string, expected []any) any {
	if len(expected) != 1 {
		panic(fmt.Sprintf("expect: %s takes exactly one expected value, got %d", name, len(expected)))
	}
	return expected[0]
}
