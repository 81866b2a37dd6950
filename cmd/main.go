package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/devnet-sdk/telemetry"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"

	"github.com/ethereum-optimism/infra/op-sweetest/app"
	"github.com/ethereum-optimism/infra/op-sweetest/examples"
	"github.com/ethereum-optimism/infra/op-sweetest/flags"
	"github.com/ethereum-optimism/infra/op-sweetest/registry"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	cliApp.Name = "op-sweetest"
	cliApp.Usage = "Nestable test suite runner"
	cliApp.Description = "op-sweetest runs registered describe/it specs and reports their results"
	cliApp.Flags = cliapp.ProtectFlags(flags.Flags)
	cliApp.Action = cliapp.LifecycleCmd(run)
	cliApp.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			cli.HandleExitCoder(cli.Exit(err.Error(), app.ExitCode(err)))
		}
	}

	ctx, shutdown, err := telemetry.SetupOpenTelemetry(
		context.Background(),
		otelconfig.WithServiceName(cliApp.Name),
		otelconfig.WithServiceVersion(cliApp.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer shutdown()

	ctx = ctxinterrupt.WithSignalWaiterMain(ctx)
	err = cliApp.RunContext(ctx, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	logCfg := oplog.ReadCLIConfig(ctx)
	logger := oplog.NewLogger(oplog.AppOut(ctx), logCfg)
	oplog.SetGlobalLogHandler(logger.Handler())
	oplog.SetupDefaults()

	cfg, err := app.NewConfig(ctx, logger)
	if err != nil {
		return nil, app.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	cfg.Log.Debug("Config", "config", cfg)

	reg := registry.New()
	if err := examples.Register(reg); err != nil {
		return nil, app.NewRuntimeError(err)
	}

	sweet, err := app.New(ctx.Context, cfg, reg, Version, closeApp)
	if err != nil {
		return nil, app.NewRuntimeError(fmt.Errorf("failed to create op-sweetest: %w", err))
	}
	return sweet, nil
}
