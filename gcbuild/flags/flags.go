package flags

import (
	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "GCBUILD"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	All = &cli.BoolFlag{
		Name:    "all",
		Aliases: []string{"a"},
		Usage:   "Build clr+libs instead of clr.native",
		EnvVars: prefixEnvVars("ALL"),
	}
	Configuration = &cli.StringFlag{
		Name:    "configuration",
		Aliases: []string{"c"},
		Value:   "release",
		Usage:   "Build configuration (debug, checked, release)",
		EnvVars: prefixEnvVars("CONFIGURATION"),
	}
	Build = &cli.BoolFlag{
		Name:    "build",
		Aliases: []string{"b"},
		Usage:   "Build the runtime and archive the GC artifacts",
		EnvVars: prefixEnvVars("BUILD"),
	}
	BuildTests = &cli.BoolFlag{
		Name:    "build-tests",
		Aliases: []string{"t"},
		Usage:   "Build the GC stress framework test project",
		EnvVars: prefixEnvVars("BUILD_TESTS"),
	}
	Run = &cli.StringSliceFlag{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Harness to run after building (rf, micro, asp); repeatable",
		EnvVars: prefixEnvVars("RUN"),
	}
	TraceType = &cli.StringFlag{
		Name:    "trace-type",
		Value:   "gc",
		Usage:   "Trace configuration for the harness templates (gc, verbose, cpu, threadtime, none)",
		EnvVars: prefixEnvVars("TRACE_TYPE"),
	}
	TestmixTime = &cli.StringFlag{
		Name:    "testmix-time",
		Value:   "00:01:00",
		Usage:   "Maximum execution time for the reliability framework test mix",
		EnvVars: prefixEnvVars("TESTMIX_TIME"),
	}
	Config = &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to a TOML file overriding the machine defaults",
		EnvVars: prefixEnvVars("CONFIG"),
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		Usage:   "Log level (trace, debug, info, warn, error)",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
	}
)

var Flags = []cli.Flag{
	All,
	Configuration,
	Build,
	BuildTests,
	Run,
	TraceType,
	TestmixTime,
	Config,
	LogLevel,
}
