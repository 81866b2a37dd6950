// Package app runs registered specs as a cliapp.Lifecycle service.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"

	sweetest "github.com/ethereum-optimism/infra/op-sweetest"
	"github.com/ethereum-optimism/infra/op-sweetest/metrics"
	"github.com/ethereum-optimism/infra/op-sweetest/registry"
	"github.com/ethereum-optimism/infra/op-sweetest/reporting"
	"github.com/ethereum-optimism/infra/op-sweetest/service"
	"github.com/ethereum-optimism/infra/op-sweetest/types"
)

// Sweet implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &Sweet{}

// Sweet runs the specs selected by the configured gate, once or at an interval.
type Sweet struct {
	ctx     context.Context
	config  *Config
	version string
	specs   []registry.Spec
	service *service.Service

	mu     sync.Mutex
	result *RunResult

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	shutdownCallback func(error) // Callback to signal application shutdown
}

// RunResult summarises one run over every selected spec.
type RunResult struct {
	RunID    string
	Stats    types.Stats
	Duration time.Duration
}

func (r *RunResult) String() string {
	return fmt.Sprintf("run %s %s: %d cases, %d passed, %d failed (%s)",
		r.RunID, r.Stats.Status, r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Duration.Round(time.Millisecond))
}

func New(ctx context.Context, config *Config, reg *registry.Registry, version string, shutdownCallback func(error)) (*Sweet, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if reg == nil {
		return nil, errors.New("registry is required")
	}
	if config.Log == nil {
		config.Log = log.Root()
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if shutdownCallback == nil {
		shutdownCallback = func(error) {}
	}

	config.Log.Debug("Creating op-sweetest with config",
		"gateFile", config.GateFile,
		"gate", config.Gate,
		"reportDir", config.ReportDir,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	if config.GateFile != "" {
		if err := reg.LoadGates(config.GateFile); err != nil {
			return nil, fmt.Errorf("failed to load gates: %w", err)
		}
	}
	specs, err := reg.Specs(config.Gate)
	if err != nil {
		return nil, fmt.Errorf("failed to select specs: %w", err)
	}
	if len(specs) == 0 {
		return nil, errors.New("no specs selected")
	}
	if gate, ok := reg.Gate(config.Gate); ok {
		config.Log.Info("app.New: selected gate", "gate", gate.ID, "description", gate.Description)
	}
	config.Log.Info("app.New: selected specs", "gate", config.Gate, "count", len(specs))

	return &Sweet{
		ctx:              ctx,
		config:           config,
		version:          version,
		specs:            specs,
		service:          service.New(config.Service, config.Log),
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the specs immediately, then periodically unless in run-once mode.
// Start implements the cliapp.Lifecycle interface.
func (s *Sweet) Start(ctx context.Context) error {
	s.ctx = ctx
	s.done = make(chan struct{})
	s.running.Store(true)
	s.service.Start(ctx)

	if s.config.RunOnce {
		s.config.Log.Info("Starting op-sweetest in run-once mode", "version", s.version)
	} else {
		s.config.Log.Info("Starting op-sweetest in continuous mode", "version", s.version, "interval", s.config.RunInterval)
	}

	result, err := s.runSpecs(ctx)
	if err != nil {
		s.config.Log.Error("Runtime error running specs", "error", err)
		return err
	}

	if s.config.RunOnce {
		s.config.Log.Info("Specs completed, exiting (run-once mode)")
		if result.Stats.Status == types.StatusFail {
			s.config.Log.Warn("Run-once run completed with failures, returning exit code 1")
			return NewTestFailureError(result.String())
		}
		go func() {
			s.shutdownCallback(nil)
		}()
		return nil
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-time.After(s.config.RunInterval):
				if !s.running.Load() {
					return
				}
				s.config.Log.Info("Running periodic specs")
				if _, err := s.runSpecs(ctx); err != nil {
					s.config.Log.Error("Error running periodic specs", "error", err)
				}

			case <-s.done:
				s.config.Log.Debug("Done signal received, stopping periodic runner")
				return

			case <-ctx.Done():
				s.config.Log.Debug("Context canceled, stopping periodic runner")
				s.running.Store(false)
				return
			}
		}
	}()
	return nil
}

// runSpecs executes every selected spec on a fresh runner.
func (s *Sweet) runSpecs(ctx context.Context) (*RunResult, error) {
	var sinks []sweetest.Sink
	if s.config.ShowTable {
		sinks = append(sinks, reporting.NewTableSink(s.config.Out, "Sweetest Results", s.config.ReportDir))
	}
	if s.config.ReportDir != "" {
		sinks = append(sinks, reporting.NewYAMLSink(s.config.ReportDir))
	}

	runner := sweetest.New(sweetest.Config{
		Out:     s.config.Out,
		Log:     s.config.Log,
		Context: ctx,
		Sinks:   sinks,
	})
	s.config.Log.Info("Running specs", "run_id", runner.RunID(), "count", len(s.specs))

	start := time.Now()
	for _, spec := range s.specs {
		if err := runSpec(runner, spec); err != nil {
			metrics.RecordErrorDetails("spec_aborted", err)
			return nil, NewRuntimeError(err)
		}
	}
	if err := runner.Complete(); err != nil {
		return nil, NewRuntimeError(fmt.Errorf("failed to complete reports: %w", err))
	}

	result := &RunResult{
		RunID:    runner.RunID(),
		Stats:    runner.Stats(),
		Duration: time.Since(start),
	}
	s.mu.Lock()
	s.result = result
	s.mu.Unlock()

	for _, root := range runner.Results() {
		for _, failed := range root.FailedCases() {
			s.config.Log.Warn("Case failed", "run_id", result.RunID, "case", failed.Path(), "message", failed.Message)
		}
	}
	s.config.Log.Info("Run completed", "run_id", result.RunID, "status", result.Stats.Status)
	return result, nil
}

// runSpec converts a panic escaping the spec into an error. Assertion failures
// inside a case are kept by the case runner, so one arriving here was raised
// by a hook or a declaration body.
func runSpec(runner *sweetest.Runner, spec registry.Spec) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if recErr, ok := rec.(error); ok {
				if types.IsAssertionError(recErr) {
					err = fmt.Errorf("spec %q aborted by an expectation outside a case: %w", spec.ID, recErr)
					return
				}
				err = fmt.Errorf("spec %q aborted: %w", spec.ID, recErr)
				return
			}
			err = fmt.Errorf("spec %q aborted: %v", spec.ID, rec)
		}
	}()
	spec.Fn(runner)
	return nil
}

// Result returns the outcome of the latest completed run, or nil.
func (s *Sweet) Result() *RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Stop stops the periodic runner and the auxiliary servers.
// Stop implements the cliapp.Lifecycle interface.
func (s *Sweet) Stop(ctx context.Context) error {
	s.config.Log.Info("Stopping op-sweetest")
	s.service.Shutdown(ctx)

	if !s.running.Load() {
		s.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}
	s.running.Store(false)
	close(s.done)
	s.wg.Wait()

	s.config.Log.Info("op-sweetest stopped successfully")
	return nil
}

// Stopped implements the cliapp.Lifecycle interface.
func (s *Sweet) Stopped() bool {
	return !s.running.Load()
}
