package sweetest

import (
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/infra/op-sweetest/hooks"
	"github.com/ethereum-optimism/infra/op-sweetest/metrics"
	"github.com/ethereum-optimism/infra/op-sweetest/queue"
	"github.com/ethereum-optimism/infra/op-sweetest/types"
)

// Describe declares a suite. The body runs immediately and may only declare
// cases, nested suites and hooks. A root suite then executes and prints its
// report before Describe returns; a nested suite is queued on its parent and
// executes when the parent reaches it.
func (r *Runner) Describe(name string, body func()) {
	if body == nil {
		panic(&UsageError{Call: "Describe()", Reason: "requires a body"})
	}
	parent := r.current.Use()
	s := newSuiteContext(name, parent)

	r.current.Provide(s, body)

	if parent != nil {
		parent.queue.EnqueueSuite(name, func() {
			r.runSuite(s)
		})
		return
	}
	r.runSuite(s)
}

// runSuite executes a declared suite: beforeAll, the queue in declaration
// order, afterAll, then files the report with the parent or prints it.
func (r *Runner) runSuite(s *suiteContext) {
	start := time.Now()

	parentCtx := r.ctx
	var parentNode *types.ResultNode
	if s.parent != nil {
		parentCtx = s.parent.ctx
		parentNode = s.parent.result
	}
	s.result = types.NewSuiteNode(s.name, s.depth, parentNode)

	ctx, span := r.tracer.Start(parentCtx, s.name, trace.WithAttributes(
		attribute.String("sweetest.run_id", r.runID),
		attribute.String("sweetest.kind", string(queue.KindSuite)),
		attribute.Int("sweetest.depth", s.depth),
	))
	defer span.End()
	s.ctx = ctx

	var registered []string
	for _, kind := range hooks.Kinds {
		if s.hooks.IsSet(kind) {
			registered = append(registered, kind.String())
		}
	}
	r.log.Debug("Running suite", "suite", s.path(), "depth", s.depth, "items", s.queue.Len(), "hooks", registered)

	s.hooks.Run(hooks.BeforeAll)
	s.queue.Drain(func(item queue.Item) {
		switch item.Kind {
		case queue.KindSuite:
			item.Fn()
		case queue.KindTest:
			r.runCase(s, item.Name, item.Fn)
		}
	})
	s.hooks.Run(hooks.AfterAll)

	status := types.StatusFromFailed(s.failed)
	s.result.Status = status
	s.result.Duration = time.Since(start)
	s.output.Prepend(reportLine(s.depth, status, s.name))

	if s.failed {
		span.SetStatus(codes.Error, "suite failed")
	}
	metrics.RecordSuite(r.runID, s.depth, status)
	r.log.Debug("Suite done", "suite", s.path(), "status", status, "duration", s.result.Duration)

	if s.parent != nil {
		s.parent.failed = s.parent.failed || s.failed
		s.parent.output.Append(s.output.Render())
		return
	}

	fmt.Fprintln(r.out, s.output.Render())
	r.finishRoot(s.result)
}

// reportLine formats "<TAB × depth><glyph> <name>".
func reportLine(depth int, status types.Status, name string) string {
	return fmt.Sprintf("%s%s %s", strings.Repeat("\t", depth), status.Glyph(), name)
}
