package sweetest

import (
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

// runCase executes one case of s surrounded by the beforeEach hooks of every
// enclosing suite, outermost first, and the afterEach hooks innermost first.
// From three levels of nesting down this covers grandparents too, not only
// the parent suite and s itself.
// Only assertion failures are recovered. Any other panic leaves through here
// without running the afterEach hooks.
func (r *Runner) runCase(s *suiteContext, name string, body func()) {
	_, span := r.tracer.Start(s.ctx, name, trace.WithAttributes(
		attribute.String("sweetest.run_id", r.runID),
		attribute.String("sweetest.kind", string(queue.KindTest)),
		attribute.Int("sweetest.depth", s.depth+1),
	))
	defer span.End()

	lineage := s.lineage()
	for _, c := range lineage {
		c.hooks.Run(hooks.BeforeEach)
	}

	start := time.Now()
	failure := invoke(body)
	duration := time.Since(start)

	indent := strings.Repeat("\t", s.depth+1)
	if failure == nil {
		s.output.Append(reportLine(s.depth+1, types.StatusPass, name))
		s.result.AddCase(name, types.StatusPass, "", duration)
		r.log.Debug("Case passed", "suite", s.path(), "case", name, "duration", duration)
	} else {
		s.failed = true
		s.output.Append(reportLine(s.depth+1, types.StatusFail, name))
		s.output.Append(indent + "\t" + failure.Message)
		s.result.AddCase(name, types.StatusFail, failure.Message, duration)
		span.SetStatus(codes.Error, failure.Message)
		r.log.Debug("Case failed", "suite", s.path(), "case", name, "message", failure.Message, "duration", duration)
	}
	metrics.RecordCase(r.runID, s.path(), types.StatusFromFailed(failure != nil))

	for i := len(lineage) - 1; i >= 0; i-- {
		lineage[i].hooks.Run(hooks.AfterEach)
	}
}

// invoke calls body and returns the assertion failure it raised, if any.
// Every other panic value is re-raised unchanged.
func invoke(body func()) (failure *types.AssertionError) {
	defer func() {
		if rec := recover(); rec != nil {
			assertionErr, ok := types.AsAssertionError(rec)
			if !ok {
				panic(rec)
			}
			failure = assertionErr
		}
	}()
	body()
	return nil
}
