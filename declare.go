package sweetest

import "github.com/ethereum-optimism/infra/op-sweetest/hooks"

// It declares a case in the enclosing suite. The body runs later, when the
// suite executes.
func (r *Runner) It(name string, body func()) {
	s := r.mustCurrent("It()")
	if body == nil {
		panic(&UsageError{Call: "It()", Reason: "requires a body"})
	}
	s.queue.EnqueueTest(name, body)
}

// BeforeAll registers the hook run once before the enclosing suite's queue.
func (r *Runner) BeforeAll(fn func()) {
	r.setHook(hooks.BeforeAll, fn)
}

// BeforeEach registers the hook run before every case in the enclosing suite
// and in its nested suites.
func (r *Runner) BeforeEach(fn func()) {
	r.setHook(hooks.BeforeEach, fn)
}

// AfterEach registers the hook run after every case in the enclosing suite
// and in its nested suites, including failed ones.
func (r *Runner) AfterEach(fn func()) {
	r.setHook(hooks.AfterEach, fn)
}

// AfterAll registers the hook run once after the enclosing suite's queue.
func (r *Runner) AfterAll(fn func()) {
	r.setHook(hooks.AfterAll, fn)
}

func (r *Runner) setHook(kind hooks.Kind, fn func()) {
	call := kind.String() + "()"
	s := r.mustCurrent(call)
	if fn == nil {
		panic(&UsageError{Call: call, Reason: "requires a callback"})
	}
	s.hooks.Set(kind, fn)
}

func (r *Runner) mustCurrent(call string) *suiteContext {
	s := r.current.Use()
	if s == nil {
		panic(NewUsageError(call))
	}
	return s
}

var defaultRunner = New(Config{})

// Default returns the runner behind the package-level functions.
func Default() *Runner {
	return defaultRunner
}

// SetDefault replaces the runner behind the package-level functions and
// returns the previous one.
func SetDefault(r *Runner) *Runner {
	prev := defaultRunner
	defaultRunner = r
	return prev
}

// Describe declares a suite on the default runner.
func Describe(name string, body func()) { defaultRunner.Describe(name, body) }

// It declares a case on the default runner.
func It(name string, body func()) { defaultRunner.It(name, body) }

func BeforeAll(fn func())  { defaultRunner.BeforeAll(fn) }
func BeforeEach(fn func()) { defaultRunner.BeforeEach(fn) }
func AfterEach(fn func())  { defaultRunner.AfterEach(fn) }
func AfterAll(fn func())   { defaultRunner.AfterAll(fn) }
