// Package sweetest is a minimal nestable test engine. Suites are declared
// with Describe, cases with It, and lifecycle hooks with BeforeAll,
// BeforeEach, AfterEach and AfterAll. Declaring a root suite runs it and
// prints its report before Describe returns.
package sweetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/infra/op-sweetest/metrics"
	"github.com/ethereum-optimism/infra/op-sweetest/scope"
	"github.com/ethereum-optimism/infra/op-sweetest/types"
)

const tracerName = "github.com/ethereum-optimism/infra/op-sweetest"

// Sink receives the result tree of every finished root suite.
type Sink interface {
	Consume(result *types.ResultNode, runID string) error
	Complete(runID string) error
}

// Config holds the runner configuration. Zero values are replaced by defaults.
type Config struct {
	Out     io.Writer       // Destination of root suite reports (default os.Stdout)
	Log     log.Logger      // Engine logger (default log.Root())
	RunID   string          // Identifier attached to logs, metrics and sinks (default random UUID)
	Context context.Context // Parent context of the suite spans (default context.Background())
	Tracer  trace.Tracer    // Tracer for suite and case spans (default global otel tracer)
	Sinks   []Sink          // Consumers of finished root results
}

// Runner executes suites. It is single-threaded and not safe for concurrent
// use: declaration bodies, hooks and cases all run on the calling goroutine.
type Runner struct {
	out    io.Writer
	log    log.Logger
	runID  string
	ctx    context.Context
	tracer trace.Tracer
	sinks  []Sink

	current *scope.Binding[*suiteContext]

	started time.Time
	results []*types.ResultNode
}

// New creates a runner from cfg.
func New(cfg Config) *Runner {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.New().String()
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	return &Runner{
		out:     cfg.Out,
		log:     cfg.Log,
		runID:   cfg.RunID,
		ctx:     cfg.Context,
		tracer:  cfg.Tracer,
		sinks:   cfg.Sinks,
		current: scope.New[*suiteContext](nil),
		started: time.Now(),
	}
}

// RunID returns the identifier of this run.
func (r *Runner) RunID() string {
	return r.runID
}

// Results returns the result trees of the root suites finished so far.
func (r *Runner) Results() []*types.ResultNode {
	results := make([]*types.ResultNode, len(r.results))
	copy(results, r.results)
	return results
}

// Stats aggregates the case counts of every finished root suite.
func (r *Runner) Stats() types.Stats {
	stats := types.Stats{}
	for _, result := range r.results {
		s := result.Stats()
		stats.Total += s.Total
		stats.Passed += s.Passed
		stats.Failed += s.Failed
	}
	stats.Status = types.StatusFromFailed(stats.Failed > 0)
	return stats
}

// Failed reports whether any finished root suite failed.
func (r *Runner) Failed() bool {
	return r.Stats().Status == types.StatusFail
}

// Complete finishes every sink and records the run metrics.
func (r *Runner) Complete() error {
	var errs error
	for _, sink := range r.sinks {
		if err := sink.Complete(r.runID); err != nil {
			metrics.RecordErrorDetails("sink_complete", err)
			errs = errors.Join(errs, fmt.Errorf("failed to complete %T: %w", sink, err))
		}
	}

	stats := r.Stats()
	duration := time.Since(r.started)
	metrics.RecordRun(r.runID, stats.Status, stats.Total, stats.Passed, stats.Failed, duration)
	r.log.Info("Run completed",
		"run_id", r.runID,
		"status", stats.Status,
		"total", stats.Total,
		"passed", stats.Passed,
		"failed", stats.Failed,
		"duration", duration)
	return errs
}

// finishRoot stores a finished root result and hands it to the sinks.
func (r *Runner) finishRoot(result *types.ResultNode) {
	r.results = append(r.results, result)

	stats := result.Stats()
	r.log.Info("Suite finished",
		"run_id", r.runID,
		"suite", result.Name,
		"status", result.Status,
		"total", stats.Total,
		"passed", stats.Passed,
		"failed", stats.Failed,
		"duration", result.Duration)

	for _, sink := range r.sinks {
		if err := sink.Consume(result, r.runID); err != nil {
			r.log.Error("Failed to consume suite result", "sink", fmt.Sprintf("%T", sink), "suite", result.Name, "err", err)
			metrics.RecordErrorDetails("sink_consume", err)
		}
	}
}
