package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/op-sweetest/types"
)

// ResultsFileName is the file written by YAMLSink inside the run directory.
const ResultsFileName = "results.yaml"

// RunReport is the document written by YAMLSink.
type RunReport struct {
	RunID       string              `yaml:"run_id"`
	Status      types.Status        `yaml:"status"`
	Stats       types.Stats         `yaml:"stats"`
	GeneratedAt time.Time           `yaml:"generated_at"`
	Suites      []*types.ResultNode `yaml:"suites"`
}

// YAMLSink writes the result trees of a run to
// <baseDir>/testrun-<runID>/results.yaml.
type YAMLSink struct {
	baseDir string
	results map[string][]*types.ResultNode
}

func NewYAMLSink(baseDir string) *YAMLSink {
	return &YAMLSink{
		baseDir: baseDir,
		results: make(map[string][]*types.ResultNode),
	}
}

// Consume collects a finished root suite.
func (s *YAMLSink) Consume(result *types.ResultNode, runID string) error {
	s.results[runID] = append(s.results[runID], result)
	return nil
}

// Complete writes the report file for runID.
func (s *YAMLSink) Complete(runID string) error {
	results := s.results[runID]
	report := RunReport{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Suites:      results,
	}
	for _, result := range results {
		stats := result.Stats()
		report.Stats.Total += stats.Total
		report.Stats.Passed += stats.Passed
		report.Stats.Failed += stats.Failed
	}
	report.Stats.Status = types.StatusFromFailed(report.Stats.Failed > 0)
	report.Status = report.Stats.Status

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	outputDir := filepath.Join(s.baseDir, "testrun-"+runID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, ResultsFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}

// ReadRunReport loads a report previously written by YAMLSink.
func ReadRunReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}
	var report RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing results file: %w", err)
	}
	return &report, nil
}
