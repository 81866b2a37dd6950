package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-sweetest/types"
)

// SummaryFileName is the plain-text copy of the results table written by TableSink.
const SummaryFileName = "summary.log"

// TableSink collects root suite results and renders them as a single table
// once the run completes.
type TableSink struct {
	out     io.Writer
	title   string
	baseDir string
	results map[string][]*types.ResultNode
}

// NewTableSink creates a table sink writing to out. When baseDir is not empty
// an uncoloured copy is written to <baseDir>/testrun-<runID>/summary.log.
func NewTableSink(out io.Writer, title, baseDir string) *TableSink {
	if out == nil {
		out = os.Stdout
	}
	return &TableSink{
		out:     out,
		title:   title,
		baseDir: baseDir,
		results: make(map[string][]*types.ResultNode),
	}
}

// Consume collects a finished root suite.
func (s *TableSink) Consume(result *types.ResultNode, runID string) error {
	s.results[runID] = append(s.results[runID], result)
	return nil
}

// Complete renders the table for runID.
func (s *TableSink) Complete(runID string) error {
	content := RenderTable(s.title, s.results[runID])

	if _, err := fmt.Fprintln(s.out, content); err != nil {
		return fmt.Errorf("failed to write results table: %w", err)
	}

	if s.baseDir == "" {
		return nil
	}
	outputDir := filepath.Join(s.baseDir, "testrun-"+runID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	summaryFile := filepath.Join(outputDir, SummaryFileName)
	if err := os.WriteFile(summaryFile, []byte(stripansi.Strip(content)+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}

// RenderTable renders the result trees as a table, one row per suite and case.
func RenderTable(title string, results []*types.ResultNode) string {
	t := table.NewWriter()

	var total types.Stats
	var duration time.Duration
	for _, result := range results {
		stats := result.Stats()
		total.Total += stats.Total
		total.Passed += stats.Passed
		total.Failed += stats.Failed
		duration += result.Duration
	}
	total.Status = types.StatusFromFailed(total.Failed > 0)

	t.SetTitle(fmt.Sprintf("%s (%s)", title, formatDuration(duration)))
	t.AppendHeader(table.Row{
		"Type", "Name", "Duration", "Tests", "Passed", "Failed", "Status", "Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "Name", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, result := range results {
		appendRows(t, result, "")
		t.AppendSeparator()
	}

	if total.Status == types.StatusPass {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}
	// Keep the footer's status and duration units as rendered in the rows.
	t.Style().Format.Footer = text.FormatDefault

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		formatDuration(duration),
		total.Total,
		total.Passed,
		total.Failed,
		getResultString(total.Status),
		"",
	})

	return t.Render()
}

// appendRows adds node and its descendants. prefix is the tree drawing that
// precedes the node's name.
func appendRows(t table.Writer, node *types.ResultNode, prefix string) {
	name := node.Name
	if prefix != "" {
		name = fmt.Sprintf("%s %s", prefix, node.Name)
	}

	if node.Type == types.NodeTypeCase {
		t.AppendRow(table.Row{
			"",
			name,
			formatDuration(node.Duration),
			"1",
			boolToInt(node.Status == types.StatusPass),
			boolToInt(node.Status == types.StatusFail),
			getResultString(node.Status),
			node.Message,
		})
		return
	}

	stats := node.Stats()
	t.AppendRow(table.Row{
		"Suite",
		name,
		formatDuration(node.Duration),
		"-",
		stats.Passed,
		stats.Failed,
		getResultString(node.Status),
		"",
	})

	indent := strings.Repeat("   ", node.Depth)
	for i, child := range node.Children {
		branch := "├─"
		if i == len(node.Children)-1 {
			branch = "└─"
		}
		appendRows(t, child, indent+branch)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func getResultString(status types.Status) string {
	if status == types.StatusPass {
		return "✓ pass"
	}
	return "✗ fail"
}

// formatDuration formats d in seconds with one decimal place.
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
