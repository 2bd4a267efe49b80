// Package runner abstracts the execution of external commands so the build
// orchestration on top can be exercised without a runtime checkout or the
// .NET toolchain installed.
package runner

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Spec describes a single external command invocation. Env entries are laid
// over the parent environment. A nil Stdout or Stderr inherits the parent
// stream.
type Spec struct {
	Dir  string
	Name string
	Args []string
	Env  map[string]string

	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line the way a user would type it.
func (s Spec) String() string {
	return strings.Join(append([]string{s.Name}, s.Args...), " ")
}

// Runner executes external commands synchronously.
type Runner interface {
	Run(ctx context.Context, spec Spec) error
}

// ExecRunner runs commands on the local machine.
type ExecRunner struct {
	log zerolog.Logger
}

var _ Runner = &ExecRunner{}

func NewExecRunner(log zerolog.Logger) *ExecRunner {
	return &ExecRunner{log: log}
}

func (r *ExecRunner) Run(ctx context.Context, spec Spec) error {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = childEnv(spec.Env)
	cmd.Stdout = spec.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = spec.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	r.log.Info().Str("dir", spec.Dir).Msgf("running %s", spec)
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "command [%s] failed", spec)
	}
	return nil
}

func childEnv(overlay map[string]string) []string {
	env := os.Environ()
	for k, v := range overlay {
		env = append(env, k+"="+v)
	}
	return env
}
