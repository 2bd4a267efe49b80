package runner

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSpecString(t *testing.T) {
	spec := Spec{Name: "build.cmd", Args: []string{"-c", "release", "-lc", "release"}}
	require.Equal(t, "build.cmd -c release -lc release", spec.String())

	require.Equal(t, "dumpbin", Spec{Name: "dumpbin"}.String())
}

func TestChildEnv(t *testing.T) {
	t.Setenv("GCBUILD_TEST_PARENT", "kept")

	env := childEnv(map[string]string{"COMPlus_GCName": "clrgcexp_try1.dll"})
	require.Contains(t, env, "GCBUILD_TEST_PARENT=kept")
	require.Contains(t, env, "COMPlus_GCName=clrgcexp_try1.dll")
}

func TestExecRunnerRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	var stdout bytes.Buffer
	r := NewExecRunner(zerolog.Nop())
	err := r.Run(context.Background(), Spec{
		Dir:    t.TempDir(),
		Name:   "sh",
		Args:   []string{"-c", "printf built"},
		Stdout: &stdout,
	})
	require.NoError(t, err)
	require.Equal(t, "built", stdout.String())
}

func TestExecRunnerMissingCommand(t *testing.T) {
	r := NewExecRunner(zerolog.Nop())
	err := r.Run(context.Background(), Spec{
		Name: filepath.Join(t.TempDir(), "no-such-binary"),
	})
	require.Error(t, err)
}
