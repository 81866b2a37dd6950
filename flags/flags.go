package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	opflags "github.com/ethereum-optimism/optimism/op-service/flags"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "OP_SWEETEST"

var (
	GateFile = &cli.StringFlag{
		Name:    "gate-file",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "GATE_FILE"),
		Usage:   "Path to the gate file selecting specs (eg. 'gates.yaml')",
	}
	Gate = &cli.StringFlag{
		Name:    "gate",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "GATE"),
		Usage:   "Gate to run (eg. 'smoke'). Runs every registered spec when empty",
	}
	ReportDir = &cli.StringFlag{
		Name:    "report-dir",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "REPORT_DIR"),
		Usage:   "Directory to write the results table and YAML report to. Nothing is written when empty",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUN_INTERVAL"),
		Usage:   "Interval between runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	ShowTable = &cli.BoolFlag{
		Name:    "table",
		Value:   true,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TABLE"),
		Usage:   "Print the results table after each run",
	}
	HealthzEnabled = &cli.BoolFlag{
		Name:    "healthz.enabled",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_ENABLED"),
		Usage:   "Serve /healthz while the service runs",
	}
	HealthzAddr = &cli.StringFlag{
		Name:    "healthz.addr",
		Value:   "0.0.0.0",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_ADDR"),
		Usage:   "Healthz listening address",
	}
	HealthzPort = &cli.IntFlag{
		Name:    "healthz.port",
		Value:   8080,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_PORT"),
		Usage:   "Healthz listening port",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	GateFile,
	Gate,
	ReportDir,
	RunInterval,
	ShowTable,
	HealthzEnabled,
	HealthzAddr,
	HealthzPort,
}

var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return opflags.CheckRequiredXor(ctx)
}
