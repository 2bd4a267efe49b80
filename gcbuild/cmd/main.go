package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/gcforge/infra/gcbuild"
	"github.com/gcforge/infra/gcbuild/config"
	"github.com/gcforge/infra/gcbuild/exitcodes"
	"github.com/gcforge/infra/gcbuild/flags"
	"github.com/gcforge/infra/gcbuild/runner"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "gcbuild"
	app.Usage = "Tool for building and preserving clr gc"
	app.Description = "gcbuild builds the runtime with a development GC, archives the build products and launches the GC benchmark harnesses"
	app.ArgsUsage = "RUNTIME_ROOT SAVE_ROOT SAVE_NAME"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if gcbuild.IsHarnessError(err) {
			// The build and archive held up; only a harness run fell over.
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.HarnessFailure))
		} else if err != nil {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
		}
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcodes.RuntimeErr)
	}
}

func run(ctx *cli.Context) error {
	logger, err := newLogger(ctx.String(flags.LogLevel.Name))
	if err != nil {
		return err
	}

	cfg, err := gcbuild.NewConfig(ctx)
	if err != nil {
		return err
	}

	machine := config.Default()
	if path := ctx.String(flags.Config.Name); path != "" {
		machine, err = config.Load(path)
		if err != nil {
			return err
		}
	}

	svc, err := gcbuild.New(cfg, machine, logger, runner.NewExecRunner(logger), os.Stdout, os.Stdin)
	if err != nil {
		return err
	}

	// An interrupt cancels the context and with it the running child build
	// or harness.
	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return svc.Run(runCtx)
}

// newLogger builds a console logger on stderr; stdout carries the build
// output and the harness prompts.
func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).With().Timestamp().Logger().Level(lvl), nil
}
