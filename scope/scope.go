// Package scope provides a call-stack shaped binding: a value is visible for the
// duration of a callback and the previous value is restored when it returns.
package scope

// Binding holds the currently visible value of type T.
//
// A Binding is not safe for concurrent use. It is correct only while the
// callbacks passed to Provide run synchronously on the calling goroutine.
type Binding[T any] struct {
	value T
}

// New creates a Binding whose visible value is initial until the first Provide.
func New[T any](initial T) *Binding[T] {
	return &Binding[T]{value: initial}
}

// Provide makes v the visible value while fn runs. The previous value is
// restored when fn returns, including when fn panics.
func (b *Binding[T]) Provide(v T, fn func()) {
	prev := b.value
	b.value = v
	defer func() {
		b.value = prev
	}()

	fn()
}

// Use returns the currently visible value.
func (b *Binding[T]) Use() T {
	return b.value
}
