// Package mock provides a callable fixture that records every invocation.
package mock

import "sync"

// Fn wraps an optional implementation and records the argument list of each
// call in order.
type Fn struct {
	impl func(args ...any) any

	mu    sync.Mutex
	calls [][]any
}

// New creates a mock function. A nil implementation returns nil.
func New(impl func(args ...any) any) *Fn {
	return &Fn{impl: impl}
}

// Call records args and forwards them to the implementation.
func (f *Fn) Call(args ...any) any {
	recorded := make([]any, len(args))
	copy(recorded, args)

	f.mu.Lock()
	f.calls = append(f.calls, recorded)
	f.mu.Unlock()

	if f.impl == nil {
		return nil
	}
	return f.impl(args...)
}

// Calls returns a copy of the recorded argument lists.
func (f *Fn) Calls() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	calls := make([][]any, len(f.calls))
	for i, args := range f.calls {
		calls[i] = append([]any{}, args...)
	}
	return calls
}

// CallCount returns how many times the mock was called.
func (f *Fn) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Reset forgets all recorded calls.
func (f *Fn) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
