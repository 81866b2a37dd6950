package sweetest

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-sweetest/expect"
	"github.com/ethereum-optimism/infra/op-sweetest/mock"
	"github.com/ethereum-optimism/infra/op-sweetest/types"
)

func newTestRunner(sinks ...Sink) (*Runner, *bytes.Buffer) {
	var buf bytes.Buffer
	r := New(Config{
		Out:   &buf,
		Log:   log.NewLogger(log.DiscardHandler()),
		RunID: "test-run",
		Sinks: sinks,
	})
	return r, &buf
}

type recorder struct {
	events []string
}

func (rec *recorder) hook(event string) func() {
	return func() {
		rec.events = append(rec.events, event)
	}
}

func TestReportFormat(t *testing.T) {
	t.Run("prints names and statuses of nested suites", func(t *testing.T) {
		r, out := newTestRunner()

		r.Describe("Test Suite", func() {
			r.It("Test Case 1", func() {})
			r.It("Test Case 2", func() {})

			r.Describe("Inner Test Suite", func() {
				r.It("Test Case 3", func() {})
				r.It("Test Case 4", func() {})
			})
		})

		want := "✅ Test Suite\n" +
			"\t✅ Test Case 1\n" +
			"\t✅ Test Case 2\n" +
			"\t✅ Inner Test Suite\n" +
			"\t\t✅ Test Case 3\n" +
			"\t\t✅ Test Case 4\n"
		assert.Equal(t, want, out.String())
	})

	t.Run("failing case reports glyph and message in declaration order", func(t *testing.T) {
		r, out := newTestRunner()

		r.Describe("S", func() {
			r.It("A", func() { expect.Expect(1).ToBe(2) })
			r.It("B", func() { expect.Expect(1).ToBe(1) })
		})

		want := "❌ S\n" +
			"\t❌ A\n" +
			"\t\tExpected `1` to be `2`\n" +
			"\t✅ B\n"
		assert.Equal(t, want, out.String())
	})

	t.Run("nested suites interleave with cases in declaration order", func(t *testing.T) {
		r, out := newTestRunner()

		r.Describe("root", func() {
			r.It("first", func() {})
			r.Describe("middle", func() {
				r.Describe("deep", func() {
					r.It("deepest", func() { expect.Expect("a").ToBe("b") })
				})
				r.It("after deep", func() {})
			})
			r.It("last", func() {})
		})

		want := "❌ root\n" +
			"\t✅ first\n" +
			"\t❌ middle\n" +
			"\t\t❌ deep\n" +
			"\t\t\t❌ deepest\n" +
			"\t\t\t\tExpected `a` to be `b`\n" +
			"\t\t✅ after deep\n" +
			"\t✅ last\n"
		assert.Equal(t, want, out.String())
	})

	t.Run("each root prints its own report", func(t *testing.T) {
		r, out := newTestRunner()

		r.Describe("one", func() { r.It("a", func() {}) })
		r.Describe("two", func() { r.It("b", func() { expect.Expect(nil).ToBe(1) }) })

		want := "✅ one\n" +
			"\t✅ a\n" +
			"❌ two\n" +
			"\t❌ b\n" +
			"\t\tExpected `nil` to be `1`\n"
		assert.Equal(t, want, out.String())
	})

	t.Run("multi-line messages are printed verbatim", func(t *testing.T) {
		r, out := newTestRunner()

		r.Describe("S", func() {
			r.It("A", func() { panic(types.NewAssertionError("line one\nline two")) })
		})

		assert.Equal(t, "❌ S\n\t❌ A\n\t\tline one\nline two\n", out.String())
	})
}

func TestFailurePropagation(t *testing.T) {
	t.Run("failure aggregates to every ancestor but not to siblings", func(t *testing.T) {
		r, out := newTestRunner()

		r.Describe("root", func() {
			r.Describe("healthy", func() {
				r.It("ok", func() {})
			})
			r.Describe("broken", func() {
				r.Describe("leaf", func() {
					r.It("fails", func() { expect.Expect(true).ToBe(false) })
				})
			})
		})

		want := "❌ root\n" +
			"\t✅ healthy\n" +
			"\t\t✅ ok\n" +
			"\t❌ broken\n" +
			"\t\t❌ leaf\n" +
			"\t\t\t❌ fails\n" +
			"\t\t\t\tExpected `true` to be `false`\n"
		assert.Equal(t, want, out.String())
		assert.True(t, r.Failed())
	})

	t.Run("empty suite passes with a single line", func(t *testing.T) {
		r, out := newTestRunner()
		rec := &recorder{}

		r.Describe("Empty", func() {
			r.BeforeAll(rec.hook("beforeAll"))
			r.BeforeEach(rec.hook("beforeEach"))
			r.AfterEach(rec.hook("afterEach"))
			r.AfterAll(rec.hook("afterAll"))
		})

		assert.Equal(t, "✅ Empty\n", out.String())
		assert.Equal(t, []string{"beforeAll", "afterAll"}, rec.events)
		assert.False(t, r.Failed())
	})

	t.Run("suite with only empty nested suites passes", func(t *testing.T) {
		r, out := newTestRunner()

		r.Describe("outer", func() {
			r.Describe("inner", func() {})
		})

		assert.Equal(t, "✅ outer\n\t✅ inner\n", out.String())
	})
}

func TestHookOrdering(t *testing.T) {
	r, _ := newTestRunner()
	rec := &recorder{}

	r.Describe("outer", func() {
		r.BeforeAll(rec.hook("beforeAll(outer)"))
		r.BeforeEach(rec.hook("beforeEach(outer)"))
		r.AfterEach(rec.hook("afterEach(outer)"))
		r.AfterAll(rec.hook("afterAll(outer)"))

		r.It("o1", rec.hook("test(o1)"))

		r.Describe("inner", func() {
			r.BeforeAll(rec.hook("beforeAll(inner)"))
			r.BeforeEach(rec.hook("beforeEach(inner)"))
			r.AfterEach(rec.hook("afterEach(inner)"))
			r.AfterAll(rec.hook("afterAll(inner)"))

			r.It("i1", rec.hook("test(i1)"))
			r.It("i2", rec.hook("test(i2)"))
		})
	})

	want := []string{
		"beforeAll(outer)",
		"beforeEach(outer)", "test(o1)", "afterEach(outer)",
		"beforeAll(inner)",
		"beforeEach(outer)", "beforeEach(inner)", "test(i1)", "afterEach(inner)", "afterEach(outer)",
		"beforeEach(outer)", "beforeEach(inner)", "test(i2)", "afterEach(inner)", "afterEach(outer)",
		"afterAll(inner)",
		"afterAll(outer)",
	}
	assert.Equal(t, want, rec.events)
}

func TestHookBehaviour(t *testing.T) {
	t.Run("last registration of a kind wins", func(t *testing.T) {
		r, _ := newTestRunner()
		rec := &recorder{}

		r.Describe("S", func() {
			r.BeforeEach(rec.hook("first"))
			r.BeforeEach(rec.hook("second"))
			r.It("a", func() {})
		})

		assert.Equal(t, []string{"second"}, rec.events)
	})

	t.Run("afterEach runs after an assertion failure", func(t *testing.T) {
		r, _ := newTestRunner()
		rec := &recorder{}

		r.Describe("S", func() {
			r.AfterEach(rec.hook("afterEach"))
			r.It("fails", func() { expect.Expect(1).ToBe(2) })
		})

		assert.Equal(t, []string{"afterEach"}, rec.events)
	})

	t.Run("hooks run for three levels outer to inner", func(t *testing.T) {
		r, _ := newTestRunner()
		rec := &recorder{}

		r.Describe("a", func() {
			r.BeforeEach(rec.hook("before(a)"))
			r.AfterEach(rec.hook("after(a)"))
			r.Describe("b", func() {
				r.BeforeEach(rec.hook("before(b)"))
				r.AfterEach(rec.hook("after(b)"))
				r.Describe("c", func() {
					r.BeforeEach(rec.hook("before(c)"))
					r.AfterEach(rec.hook("after(c)"))
					r.It("case", rec.hook("case"))
				})
			})
		})

		assert.Equal(t, []string{
			"before(a)", "before(b)", "before(c)", "case", "after(c)", "after(b)", "after(a)",
		}, rec.events)
	})

	t.Run("hook panics are fatal", func(t *testing.T) {
		r, out := newTestRunner()
		rec := &recorder{}

		assert.PanicsWithValue(t, "afterAll broke", func() {
			r.Describe("S", func() {
				r.AfterAll(func() { panic("afterAll broke") })
				r.It("a", rec.hook("a"))
			})
		})

		assert.Equal(t, []string{"a"}, rec.events)
		assert.Empty(t, out.String())
		assert.Empty(t, r.Results())
	})

	t.Run("assertion failures raised by hooks are fatal too", func(t *testing.T) {
		r, out := newTestRunner()

		assert.Panics(t, func() {
			r.Describe("S", func() {
				r.BeforeEach(func() { expect.Expect(1).ToBe(2) })
				r.It("a", func() {})
			})
		})
		assert.Empty(t, out.String())
	})
}

func TestDeclarationIsDeferred(t *testing.T) {
	r, _ := newTestRunner()
	rec := &recorder{}

	r.Describe("root", func() {
		r.It("a", rec.hook("a"))
		r.Describe("inner", func() {
			r.BeforeAll(rec.hook("beforeAll(inner)"))
			r.It("b", rec.hook("b"))
		})
		assert.Empty(t, rec.events, "declaration must not execute anything")
		r.It("c", rec.hook("c"))
	})

	assert.Equal(t, []string{"a", "beforeAll(inner)", "b", "c"}, rec.events)
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		call func(r *Runner)
		want string
	}{
		{name: "It", call: func(r *Runner) { r.It("x", func() {}) }, want: "It() must be called within a Describe() block"},
		{name: "BeforeAll", call: func(r *Runner) { r.BeforeAll(func() {}) }, want: "BeforeAll() must be called within a Describe() block"},
		{name: "BeforeEach", call: func(r *Runner) { r.BeforeEach(func() {}) }, want: "BeforeEach() must be called within a Describe() block"},
		{name: "AfterEach", call: func(r *Runner) { r.AfterEach(func() {}) }, want: "AfterEach() must be called within a Describe() block"},
		{name: "AfterAll", call: func(r *Runner) { r.AfterAll(func() {}) }, want: "AfterAll() must be called within a Describe() block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out := newTestRunner()

			var recovered any
			func() {
				defer func() { recovered = recover() }()
				tt.call(r)
			}()

			err, ok := recovered.(*UsageError)
			require.True(t, ok, "expected *UsageError, got %T", recovered)
			assert.Equal(t, tt.want, err.Error())
			assert.True(t, IsUsageError(err))
			assert.Empty(t, out.String())
			assert.Empty(t, r.Results())
		})
	}

	t.Run("case bodies run outside of any declaration scope", func(t *testing.T) {
		r, out := newTestRunner()

		assert.Panics(t, func() {
			r.Describe("S", func() {
				r.It("declares", func() { r.It("nested", func() {}) })
			})
		})
		assert.Empty(t, out.String())
	})

	t.Run("nil bodies are rejected", func(t *testing.T) {
		r, _ := newTestRunner()
		assert.PanicsWithError(t, "Describe() requires a body", func() { r.Describe("x", nil) })
		assert.PanicsWithError(t, "It() requires a body", func() {
			r.Describe("x", func() { r.It("y", nil) })
		})
	})
}

func TestFailureIsolation(t *testing.T) {
	t.Run("assertion failure does not stop siblings", func(t *testing.T) {
		r, _ := newTestRunner()
		rec := &recorder{}

		r.Describe("root", func() {
			r.It("fails", func() {
				expect.Expect(1).ToBe(2)
				rec.hook("unreachable")()
			})
			r.It("runs", rec.hook("runs"))
			r.Describe("sibling", func() {
				r.It("also runs", rec.hook("also runs"))
			})
		})

		assert.Equal(t, []string{"runs", "also runs"}, rec.events)
	})

	t.Run("wrapped assertion errors are recognised", func(t *testing.T) {
		r, out := newTestRunner()

		r.Describe("S", func() {
			r.It("a", func() { panic(fmt.Errorf("context: %w", types.NewAssertionError("inner"))) })
		})

		assert.Equal(t, "❌ S\n\t❌ a\n\t\tinner\n", out.String())
	})

	t.Run("unexpected panic aborts the whole run", func(t *testing.T) {
		r, out := newTestRunner()
		rec := &recorder{}
		boom := errors.New("boom")

		assert.PanicsWithError(t, "boom", func() {
			r.Describe("root", func() {
				r.AfterEach(rec.hook("afterEach(root)"))
				r.AfterAll(rec.hook("afterAll(root)"))
				r.Describe("inner", func() {
					r.AfterEach(rec.hook("afterEach(inner)"))
					r.It("explodes", func() { panic(boom) })
					r.It("never", rec.hook("never"))
				})
				r.It("never either", rec.hook("never either"))
			})
		})

		assert.Empty(t, rec.events)
		assert.Empty(t, out.String())
		assert.Nil(t, r.current.Use(), "scope must be restored after a panic")

		r.Describe("after", func() { r.It("ok", func() {}) })
		assert.Equal(t, "✅ after\n\t✅ ok\n", out.String())
	})
}

func TestMockScenario(t *testing.T) {
	r, out := newTestRunner()
	fn := mock.New(nil)
	fn.Call(1, 2, 3)

	r.Describe("mock", func() {
		r.It("was called", func() { expect.Expect(fn).ToHaveBeenCalled() })
		r.It("called 2 times", func() { expect.Expect(fn).ToHaveBeenCalledTimes(2) })
		r.It("called with 1,2,3", func() { expect.Expect(fn).ToHaveBeenCalledWith(1, 2, 3) })
		r.It("called with 4,5", func() { expect.Expect(fn).ToHaveBeenCalledWith(4, 5) })
	})

	want := "❌ mock\n" +
		"\t✅ was called\n" +
		"\t❌ called 2 times\n" +
		"\t\tExpected mock function to have been called 2 times, but it was called once\n" +
		"\t✅ called with 1,2,3\n" +
		"\t❌ called with 4,5\n" +
		"\t\tExpected mock function to have been called with [4, 5], but it was called with [1, 2, 3]\n"
	assert.Equal(t, want, out.String())
}

type captureSink struct {
	consumed  []*types.ResultNode
	completed []string
	err       error
}

func (s *captureSink) Consume(result *types.ResultNode, runID string) error {
	s.consumed = append(s.consumed, result)
	return s.err
}

func (s *captureSink) Complete(runID string) error {
	s.completed = append(s.completed, runID)
	return s.err
}

func TestResults(t *testing.T) {
	t.Run("result tree mirrors the report", func(t *testing.T) {
		sink := &captureSink{}
		r, _ := newTestRunner(sink)

		r.Describe("root", func() {
			r.It("a", func() {})
			r.Describe("inner", func() {
				r.It("b", func() { expect.Expect(1).ToBe(2) })
			})
			r.It("c", func() {})
		})

		results := r.Results()
		require.Len(t, results, 1)
		root := results[0]
		assert.Equal(t, types.StatusFail, root.Status)
		require.Len(t, root.Children, 3)
		assert.Equal(t, "a", root.Children[0].Name)
		assert.Equal(t, types.NodeTypeCase, root.Children[0].Type)
		assert.Equal(t, "inner", root.Children[1].Name)
		assert.Equal(t, types.NodeTypeSuite, root.Children[1].Type)
		assert.Equal(t, 1, root.Children[1].Depth)
		assert.Equal(t, "c", root.Children[2].Name)

		b := root.Children[1].Children[0]
		assert.Equal(t, types.StatusFail, b.Status)
		assert.Equal(t, "Expected `1` to be `2`", b.Message)
		assert.Equal(t, "root/inner/b", b.Path())

		stats := r.Stats()
		assert.Equal(t, types.Stats{Total: 3, Passed: 2, Failed: 1, Status: types.StatusFail}, stats)

		require.Len(t, sink.consumed, 1)
		assert.Same(t, root, sink.consumed[0])

		require.NoError(t, r.Complete())
		assert.Equal(t, []string{"test-run"}, sink.completed)
	})

	t.Run("sink errors do not stop the run and are joined on complete", func(t *testing.T) {
		sink := &captureSink{err: errors.New("disk full")}
		r, out := newTestRunner(sink)

		r.Describe("root", func() { r.It("a", func() {}) })
		assert.Equal(t, "✅ root\n\t✅ a\n", out.String())

		err := r.Complete()
		require.Error(t, err)
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("run id defaults to a uuid", func(t *testing.T) {
		r := New(Config{Out: &bytes.Buffer{}})
		assert.Len(t, r.RunID(), 36)
	})
}

func TestDefaultRunner(t *testing.T) {
	r, out := newTestRunner()
	prev := SetDefault(r)
	defer SetDefault(prev)

	rec := &recorder{}
	Describe("pkg", func() {
		BeforeAll(rec.hook("beforeAll"))
		BeforeEach(rec.hook("beforeEach"))
		AfterEach(rec.hook("afterEach"))
		AfterAll(rec.hook("afterAll"))
		It("works", rec.hook("works"))
	})

	assert.Same(t, r, Default())
	assert.Equal(t, "✅ pkg\n\t✅ works\n", out.String())
	assert.Equal(t, []string{"beforeAll", "beforeEach", "works", "afterEach", "afterAll"}, rec.events)

	assert.Panics(t, func() { It("outside", func() {}) })
}
