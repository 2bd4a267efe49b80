// Package gcbuild builds the .NET runtime with a development GC, preserves
// the build products under a named save directory and launches the GC
// benchmark harnesses against them.
package gcbuild

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/gcforge/infra/gcbuild/archive"
	"github.com/gcforge/infra/gcbuild/config"
	"github.com/gcforge/infra/gcbuild/harness"
	"github.com/gcforge/infra/gcbuild/runner"
)

// layout holds the paths one run works with, derived from the invocation
// and the machine config.
type layout struct {
	saveLoc       string
	gcDir         string
	artifactsRoot string
	coreRoot      string
}

func newLayout(cfg *Config, machine config.Config) layout {
	saveLoc := cfg.SaveLoc()
	artifactsRoot := filepath.Join(cfg.RuntimeRoot, "artifacts", "tests", "coreclr",
		machine.Platform+"."+cfg.Configuration)
	return layout{
		saveLoc:       saveLoc,
		gcDir:         filepath.Join(saveLoc, "gc"),
		artifactsRoot: artifactsRoot,
		coreRoot:      filepath.Join(artifactsRoot, "Tests", "Core_Root"),
	}
}

// Service runs one gcbuild invocation: validate, build, archive, harness.
type Service struct {
	cfg     *Config
	machine config.Config
	log     zerolog.Logger
	runner  runner.Runner
	stdout  io.Writer
	stdin   *bufio.Reader
}

// New creates a gcbuild service. Harness prompts go to stdout; stdin is
// read when a harness waits for the operator.
func New(cfg *Config, machine config.Config, log zerolog.Logger, r runner.Runner, stdout io.Writer, stdin io.Reader) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if r == nil {
		return nil, errors.New("runner is required")
	}
	return &Service{
		cfg:     cfg,
		machine: machine,
		log:     log,
		runner:  r,
		stdout:  stdout,
		stdin:   bufio.NewReader(stdin),
	}, nil
}

// Run executes the requested stages in order. Build failures abort the run;
// a failing benchmark harness is reported but does not stop the remaining
// harnesses.
func (s *Service) Run(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	l := newLayout(s.cfg, s.machine)

	if s.cfg.Build {
		if err := s.setupDirs(l); err != nil {
			return err
		}
		if err := s.build(ctx); err != nil {
			return err
		}
		if err := s.archive(ctx, l); err != nil {
			return err
		}
	}
	if s.cfg.BuildTests {
		if err := s.buildTests(ctx); err != nil {
			return err
		}
	}
	return s.runHarnesses(ctx, l)
}

func (s *Service) setupDirs(l layout) error {
	if err := os.MkdirAll(s.cfg.SaveRoot, 0755); err != nil {
		return errors.Wrapf(err, "failed to create save root [%s]", s.cfg.SaveRoot)
	}
	if err := os.Mkdir(l.saveLoc, 0755); err != nil {
		return errors.Wrapf(err, "failed to create save location [%s]", l.saveLoc)
	}
	if err := os.Mkdir(l.gcDir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create gc directory [%s]", l.gcDir)
	}
	return nil
}

func (s *Service) build(ctx context.Context) error {
	target := "clr.native"
	if s.cfg.All {
		target = "clr+libs"
	}

	script := filepath.Join(s.cfg.RuntimeRoot, filepath.FromSlash(s.machine.Build.Script))
	if err := s.runner.Run(ctx, runner.Spec{
		Dir:  s.cfg.RuntimeRoot,
		Name: script,
		Args: []string{"-c", s.cfg.Configuration, "-lc", "release", target},
	}); err != nil {
		return errors.Wrap(err, "runtime build failed")
	}

	layoutScript := filepath.Join(s.cfg.RuntimeRoot, filepath.FromSlash(s.machine.Build.TestBuildScript))
	if err := s.runner.Run(ctx, runner.Spec{
		Dir:  s.cfg.RuntimeRoot,
		Name: layoutScript,
		Args: []string{"generatelayoutonly", s.machine.Arch(), s.cfg.Configuration, "/p:LibrariesConfiguration=Release"},
	}); err != nil {
		return errors.Wrap(err, "test layout generation failed")
	}
	return nil
}

func (s *Service) buildTests(ctx context.Context) error {
	script := filepath.Join(s.cfg.RuntimeRoot, filepath.FromSlash(s.machine.Build.TestBuildScript))
	if err := s.runner.Run(ctx, runner.Spec{
		Dir:  filepath.Dir(script),
		Name: script,
		Args: []string{s.cfg.Configuration, "test", filepath.FromSlash(s.machine.Build.StressProject)},
	}); err != nil {
		return errors.Wrap(err, "stress framework build failed")
	}
	return nil
}

func (s *Service) archive(ctx context.Context, l layout) error {
	a := archive.New(s.log, s.runner, s.machine.Archive.Disassembler)

	gcSrc := filepath.Join(s.cfg.RuntimeRoot, filepath.FromSlash(s.machine.Archive.GCSourceDir))
	s.log.Info().Msgf("copying %s to %s", gcSrc, l.gcDir)
	if err := a.CopyTree(gcSrc, l.gcDir); err != nil {
		return errors.Wrap(err, "failed to copy the GC source tree")
	}

	s.log.Info().Msgf("copying binaries from %s to %s", l.coreRoot, l.saveLoc)
	entries, err := a.Binaries(ctx, l.coreRoot, l.saveLoc, s.machine.Archive.Binaries)
	if err != nil {
		return err
	}
	archive.Summary(s.stdout, entries)
	return nil
}

func (s *Service) runHarnesses(ctx context.Context, l layout) error {
	if len(s.cfg.Run) == 0 {
		return nil
	}

	gcName, err := s.stageExperimentalGC(l)
	if err != nil {
		return err
	}
	env := map[string]string{s.machine.Harness.GCEnvVar: gcName}

	// The unattended stress run goes first; the interactive harnesses keep
	// the operator around afterwards.
	var harnessErr error
	if slices.Contains(s.cfg.Run, "rf") {
		if err := s.runRF(ctx, l, env); err != nil {
			if !IsHarnessError(err) {
				return err
			}
			s.log.Error().Err(err).Msg("reliability framework run failed")
			harnessErr = err
		}
	}
	if slices.Contains(s.cfg.Run, "micro") {
		if err := s.runInfra("microbenchmarks", s.machine.Harness.MicroTemplate, l); err != nil {
			return err
		}
	}
	if slices.Contains(s.cfg.Run, "asp") {
		if err := s.runInfra("aspnetbenchmarks", s.machine.Harness.ASPTemplate, l); err != nil {
			return err
		}
	}
	return harnessErr
}

// stageExperimentalGC copies the archived experimental GC into Core_Root
// under a name tied to the save, clrgcexp_try1.dll, and returns that name
// for the GC-selection env var.
func (s *Service) stageExperimentalGC(l layout) (string, error) {
	base := s.machine.Harness.ExperimentalBinary
	ext := filepath.Ext(base)
	gcName := strings.TrimSuffix(base, ext) + "_" + s.cfg.SaveName + ext

	src := filepath.Join(l.saveLoc, base)
	dst := filepath.Join(l.coreRoot, gcName)
	s.log.Info().Msgf("copying GC from %s to %s", src, dst)
	if err := archive.CopyFile(src, dst); err != nil {
		return "", err
	}
	return gcName, nil
}

func (s *Service) params(l layout) harness.Params {
	return harness.Params{
		TestmixTime: s.cfg.TestmixTime,
		SaveName:    s.cfg.SaveName,
		CoreRoot:    l.coreRoot,
		TraceType:   s.cfg.TraceType,
	}
}

func (s *Service) runRF(ctx context.Context, l layout, env map[string]string) error {
	specific, err := harness.Expand(
		filepath.Join(s.machine.Harness.TemplateDir, s.machine.Harness.RFTemplate),
		s.machine.Harness.TemplateDir,
		s.params(l),
	)
	if err != nil {
		return err
	}

	project := filepath.FromSlash(strings.TrimSuffix(s.machine.Build.StressProject, ".csproj"))
	rfDir := filepath.Join(l.artifactsRoot, project)
	script := filepath.Join(rfDir, filepath.Base(project)+".cmd")

	logDir := filepath.Join(l.saveLoc, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create [%s]", logDir)
	}
	logPath := filepath.Join(logDir, "rf.log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create [%s]", logPath)
	}
	defer logFile.Close()

	// The operator watches the raw output; the kept log is stripped of the
	// console colors.
	out := io.MultiWriter(s.stdout, harness.NewStripWriter(logFile))
	if err := s.runner.Run(ctx, runner.Spec{
		Dir:    rfDir,
		Name:   script,
		Args:   []string{"-coreroot", l.coreRoot, specific},
		Env:    env,
		Stdout: out,
		Stderr: out,
	}); err != nil {
		return NewHarnessError("rf", err)
	}
	return nil
}

// runInfra expands a GC.Infrastructure template and hands the command line
// to the operator. The suites need an elevated prompt, so the tool cannot
// launch them itself.
func (s *Service) runInfra(subcommand, template string, l layout) error {
	specific, err := harness.Expand(
		filepath.Join(s.machine.Harness.TemplateDir, template),
		s.machine.Harness.TemplateDir,
		s.params(l),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.stdout, "Run under elevated prompt:")
	fmt.Fprintf(s.stdout, "%s %s --configuration %s\n", s.machine.Harness.InfraExe, subcommand, specific)
	return s.waitForEnter()
}

func (s *Service) waitForEnter() error {
	fmt.Fprint(s.stdout, "Press Enter when done...")
	if _, err := s.stdin.ReadString('\n'); err != nil && err != io.EOF {
		return errors.Wrap(err, "failed to read stdin")
	}
	return nil
}
