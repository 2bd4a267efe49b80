package gcbuild

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/gcforge/infra/gcbuild/flags"
)

var (
	configurations = []string{"debug", "checked", "release"}
	traceTypes     = []string{"gc", "verbose", "cpu", "threadtime", "none"}
	harnesses      = []string{"rf", "micro", "asp"}
)

// Config carries one gcbuild invocation.
type Config struct {
	All           bool
	Configuration string
	Build         bool
	BuildTests    bool
	Run           []string
	TraceType     string
	TestmixTime   string
	ConfigPath    string

	RuntimeRoot string
	SaveRoot    string
	SaveName    string
}

// NewConfig reads the CLI context into a Config.
func NewConfig(ctx *cli.Context) (*Config, error) {
	args := ctx.Args()
	if args.Len() != 3 {
		return nil, errors.Errorf("expected RUNTIME_ROOT SAVE_ROOT SAVE_NAME, got %d arguments", args.Len())
	}

	cfg := &Config{
		All:           ctx.Bool(flags.All.Name),
		Configuration: ctx.String(flags.Configuration.Name),
		Build:         ctx.Bool(flags.Build.Name),
		BuildTests:    ctx.Bool(flags.BuildTests.Name),
		Run:           ctx.StringSlice(flags.Run.Name),
		TraceType:     ctx.String(flags.TraceType.Name),
		TestmixTime:   ctx.String(flags.TestmixTime.Name),
		ConfigPath:    ctx.String(flags.Config.Name),
		RuntimeRoot:   args.Get(0),
		SaveRoot:      args.Get(1),
		SaveName:      args.Get(2),
	}

	if !slices.Contains(configurations, cfg.Configuration) {
		return nil, errors.Errorf("invalid configuration [%s], want one of %v", cfg.Configuration, configurations)
	}
	if !slices.Contains(traceTypes, cfg.TraceType) {
		return nil, errors.Errorf("invalid trace type [%s], want one of %v", cfg.TraceType, traceTypes)
	}
	for _, h := range cfg.Run {
		if !slices.Contains(harnesses, h) {
			return nil, errors.Errorf("unknown harness [%s], want one of %v", h, harnesses)
		}
	}

	return cfg, nil
}

// SaveLoc returns the directory this run's artifacts are preserved in.
func (c *Config) SaveLoc() string {
	return filepath.Join(c.SaveRoot, c.SaveName)
}

// Validate checks the invocation against the filesystem before any work
// starts. A build must not clobber an earlier save; a run without a build
// needs an earlier save to work from.
func (c *Config) Validate() error {
	info, err := os.Stat(c.RuntimeRoot)
	if err != nil || !info.IsDir() {
		return errors.Errorf("runtime root [%s] does not exist", c.RuntimeRoot)
	}

	saveLoc := c.SaveLoc()
	_, err = os.Stat(saveLoc)
	exists := err == nil
	if exists && c.Build {
		return errors.Errorf("save location [%s] already exists", saveLoc)
	}
	if !exists && !c.Build {
		return errors.Errorf("save location [%s] does not exist", saveLoc)
	}
	return nil
}
