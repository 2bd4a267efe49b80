package flags

import (
	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "GCCOMPARE"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	SecondProfile = &cli.BoolFlag{
		Name:    "b",
		Usage:   "Switch to the second configuration profile",
		EnvVars: prefixEnvVars("SECOND_PROFILE"),
	}
	Group = &cli.BoolFlag{
		Name:    "group",
		Aliases: []string{"g"},
		Usage:   "Group output by test directory",
		EnvVars: prefixEnvVars("GROUP"),
	}
	Timing = &cli.BoolFlag{
		Name:    "timing",
		Aliases: []string{"t"},
		Usage:   "Also report per-test timing differences and grand totals",
		EnvVars: prefixEnvVars("TIMING"),
	}
	TimeAbs = &cli.Float64Flag{
		Name:    "time-abs",
		Value:   3,
		Usage:   "Absolute seconds a test must be slower by to be reported",
		EnvVars: prefixEnvVars("TIME_ABS"),
	}
	TimeRatio = &cli.Float64Flag{
		Name:    "time-ratio",
		Value:   1.5,
		Usage:   "Ratio a test must be slower by to be reported",
		EnvVars: prefixEnvVars("TIME_RATIO"),
	}
	ZeroFirst = &cli.BoolFlag{
		Name:    "zero-first",
		Aliases: []string{"z"},
		Usage:   "Zero out group 1's times to inspect group 2's absolute times (forces --time-abs to 0)",
		EnvVars: prefixEnvVars("ZERO_FIRST"),
	}
	Profiles = &cli.StringFlag{
		Name:    "profiles",
		Usage:   "Path to a YAML profile table replacing the builtin profiles",
		EnvVars: prefixEnvVars("PROFILES"),
	}
	Find = &cli.StringFlag{
		Name:    "find",
		Usage:   "Print every canonical key containing this substring before diffing",
		EnvVars: prefixEnvVars("FIND"),
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		Usage:   "Log level (trace, debug, info, warn, error)",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
	}
)

var Flags = []cli.Flag{
	SecondProfile,
	Group,
	Timing,
	TimeAbs,
	TimeRatio,
	ZeroFirst,
	Profiles,
	Find,
	LogLevel,
}
