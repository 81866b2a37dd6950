package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"

	"github.com/ethereum-optimism/infra/op-sweetest/flags"
	"github.com/ethereum-optimism/infra/op-sweetest/service"
)

// Config holds the application configuration
type Config struct {
	GateFile    string        // Gate file selecting specs, empty to run every spec
	Gate        string        // Gate to run, empty to run every spec
	ReportDir   string        // Directory for the summary and YAML report, empty to skip files
	RunInterval time.Duration // Interval between runs
	RunOnce     bool          // Exit after a single run
	ShowTable   bool          // Print the results table after each run
	Service     service.Config
	Out         io.Writer // Destination of suite reports and the results table
	Log         log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	gateFile := ctx.String(flags.GateFile.Name)
	gate := ctx.String(flags.Gate.Name)
	if gate != "" && gateFile == "" {
		return nil, errors.New("a gate file is required when a gate is selected")
	}

	var absGateFile string
	if gateFile != "" {
		var err error
		absGateFile, err = filepath.Abs(gateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for gate file '%s': %w", gateFile, err)
		}
		if _, err := os.Stat(absGateFile); err != nil {
			return nil, fmt.Errorf("gate file not found at %s: %w", absGateFile, err)
		}
	}

	var absReportDir string
	if reportDir := ctx.String(flags.ReportDir.Name); reportDir != "" {
		var err error
		absReportDir, err = filepath.Abs(reportDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for report directory '%s': %w", reportDir, err)
		}
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	if runInterval < 0 {
		return nil, fmt.Errorf("run interval must not be negative, got %s", runInterval)
	}

	metricsCfg := opmetrics.ReadCLIConfig(ctx)
	if err := metricsCfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid metrics config: %w", err)
	}

	return &Config{
		GateFile:    absGateFile,
		Gate:        gate,
		ReportDir:   absReportDir,
		RunInterval: runInterval,
		RunOnce:     runInterval == 0,
		ShowTable:   ctx.Bool(flags.ShowTable.Name),
		Service: service.Config{
			HealthzEnabled: ctx.Bool(flags.HealthzEnabled.Name),
			HealthzHost:    ctx.String(flags.HealthzAddr.Name),
			HealthzPort:    ctx.Int(flags.HealthzPort.Name),
			MetricsEnabled: metricsCfg.Enabled,
			MetricsHost:    metricsCfg.ListenAddr,
			MetricsPort:    metricsCfg.ListenPort,
		},
		Out: os.Stdout,
		Log: log,
	}, nil
}
