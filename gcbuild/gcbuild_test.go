package gcbuild

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gcforge/infra/gcbuild/config"
	"github.com/gcforge/infra/gcbuild/runner"
)

type fakeRunner struct {
	specs  []runner.Spec
	out    string
	failOn string
}

func (f *fakeRunner) Run(ctx context.Context, spec runner.Spec) error {
	f.specs = append(f.specs, spec)
	if f.out != "" && spec.Stdout != nil {
		if _, err := io.WriteString(spec.Stdout, f.out); err != nil {
			return err
		}
	}
	if f.failOn != "" && strings.Contains(spec.Name, f.failOn) {
		return errors.New("exit status 1")
	}
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// setupRuntimeRoot lays out the parts of a runtime checkout the tool touches:
// the GC sources and a built Core_Root for the default platform.
func setupRuntimeRoot(t *testing.T, configuration string) (root, coreRoot string) {
	t.Helper()
	root = t.TempDir()
	writeFile(t, filepath.Join(root, "src", "coreclr", "gc", "gc.cpp"), "// gc")
	writeFile(t, filepath.Join(root, "src", "coreclr", "gc", "env", "gcenv.h"), "// env")

	coreRoot = filepath.Join(root, "artifacts", "tests", "coreclr", "windows.x64."+configuration, "Tests", "Core_Root")
	for _, name := range []string{"clrgc", "clrgcexp", "coreclr"} {
		writeFile(t, filepath.Join(coreRoot, name+".dll"), name+" binary")
		writeFile(t, filepath.Join(coreRoot, "PDB", name+".pdb"), name+" symbols")
	}
	return root, coreRoot
}

func newService(t *testing.T, cfg *Config, machine config.Config, r runner.Runner, stdin string) (*Service, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	svc, err := New(cfg, machine, zerolog.Nop(), r, &out, strings.NewReader(stdin))
	require.NoError(t, err)
	return svc, &out
}

func TestNewLayout(t *testing.T) {
	cfg := &Config{
		RuntimeRoot:   filepath.FromSlash("/r/runtime"),
		SaveRoot:      filepath.FromSlash("/r/builds"),
		SaveName:      "try1",
		Configuration: "release",
	}
	l := newLayout(cfg, config.Default())

	require.Equal(t, filepath.FromSlash("/r/builds/try1"), l.saveLoc)
	require.Equal(t, filepath.FromSlash("/r/builds/try1/gc"), l.gcDir)
	require.Equal(t, filepath.FromSlash("/r/runtime/artifacts/tests/coreclr/windows.x64.release"), l.artifactsRoot)
	require.Equal(t, filepath.FromSlash("/r/runtime/artifacts/tests/coreclr/windows.x64.release/Tests/Core_Root"), l.coreRoot)
}

func TestRunBuild(t *testing.T) {
	root, _ := setupRuntimeRoot(t, "release")
	saveRoot := filepath.Join(t.TempDir(), "builds")
	cfg := &Config{
		Configuration: "release",
		Build:         true,
		RuntimeRoot:   root,
		SaveRoot:      saveRoot,
		SaveName:      "try1",
	}

	r := &fakeRunner{out: "disassembly"}
	svc, out := newService(t, cfg, config.Default(), r, "")
	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, r.specs, 4)

	require.Equal(t, filepath.Join(root, "build.cmd"), r.specs[0].Name)
	require.Equal(t, root, r.specs[0].Dir)
	require.Equal(t, []string{"-c", "release", "-lc", "release", "clr.native"}, r.specs[0].Args)

	require.Equal(t, filepath.Join(root, "src", "tests", "build.cmd"), r.specs[1].Name)
	require.Equal(t, root, r.specs[1].Dir)
	require.Equal(t, []string{"generatelayoutonly", "x64", "release", "/p:LibrariesConfiguration=Release"}, r.specs[1].Args)

	// The two binaries marked for disassembly, on their archived copies.
	saveLoc := filepath.Join(saveRoot, "try1")
	require.Equal(t, "dumpbin", r.specs[2].Name)
	require.Equal(t, []string{"/disasm", filepath.Join(saveLoc, "clrgc.dll")}, r.specs[2].Args)
	require.Equal(t, "dumpbin", r.specs[3].Name)
	require.Equal(t, []string{"/disasm", filepath.Join(saveLoc, "clrgcexp.dll")}, r.specs[3].Args)

	for _, name := range []string{
		filepath.Join("gc", "gc.cpp"),
		filepath.Join("gc", "env", "gcenv.h"),
		"clrgc.dll", "clrgc.pdb", "clrgc.asm",
		"clrgcexp.dll", "clrgcexp.pdb", "clrgcexp.asm",
		"coreclr.dll", "coreclr.pdb",
	} {
		_, err := os.Stat(filepath.Join(saveLoc, name))
		require.NoError(t, err, name)
	}
	_, err := os.Stat(filepath.Join(saveLoc, "coreclr.asm"))
	require.True(t, os.IsNotExist(err))

	require.Contains(t, out.String(), "Archived binaries")
	require.Contains(t, out.String(), "clrgc.dll")
}

func TestRunBuildAll(t *testing.T) {
	root, _ := setupRuntimeRoot(t, "release")
	cfg := &Config{
		All:           true,
		Configuration: "release",
		Build:         true,
		RuntimeRoot:   root,
		SaveRoot:      filepath.Join(t.TempDir(), "builds"),
		SaveName:      "try1",
	}

	r := &fakeRunner{}
	svc, _ := newService(t, cfg, config.Default(), r, "")
	require.NoError(t, svc.Run(context.Background()))

	require.Equal(t, []string{"-c", "release", "-lc", "release", "clr+libs"}, r.specs[0].Args)
}

func TestRunBuildFailureAborts(t *testing.T) {
	root, _ := setupRuntimeRoot(t, "release")
	saveRoot := filepath.Join(t.TempDir(), "builds")
	cfg := &Config{
		Configuration: "release",
		Build:         true,
		RuntimeRoot:   root,
		SaveRoot:      saveRoot,
		SaveName:      "try1",
	}

	r := &fakeRunner{failOn: "build.cmd"}
	svc, _ := newService(t, cfg, config.Default(), r, "")
	err := svc.Run(context.Background())
	require.Error(t, err)
	require.False(t, IsHarnessError(err))

	// Nothing was archived.
	_, statErr := os.Stat(filepath.Join(saveRoot, "try1", "clrgc.dll"))
	require.True(t, os.IsNotExist(statErr))
}

func TestRunBuildTests(t *testing.T) {
	root, _ := setupRuntimeRoot(t, "checked")
	saveRoot := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(saveRoot, "try1"), 0755))
	cfg := &Config{
		Configuration: "checked",
		BuildTests:    true,
		RuntimeRoot:   root,
		SaveRoot:      saveRoot,
		SaveName:      "try1",
	}

	r := &fakeRunner{}
	svc, _ := newService(t, cfg, config.Default(), r, "")
	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, r.specs, 1)
	spec := r.specs[0]
	require.Equal(t, filepath.Join(root, "src", "tests", "build.cmd"), spec.Name)
	require.Equal(t, filepath.Join(root, "src", "tests"), spec.Dir)
	require.Equal(t, []string{"checked", "test", filepath.FromSlash("GC/Stress/Framework/ReliabilityFramework.csproj")}, spec.Args)
}

func TestRunRF(t *testing.T) {
	root, coreRoot := setupRuntimeRoot(t, "release")
	saveRoot := t.TempDir()
	saveLoc := filepath.Join(saveRoot, "try1")
	writeFile(t, filepath.Join(saveLoc, "clrgcexp.dll"), "experimental gc")

	templateDir := t.TempDir()
	writeFile(t, filepath.Join(templateDir, "testmix_gc_ci.config.template"),
		`time="{testmix_time}" run="{save_name}" root="{core_root}"`)

	machine := config.Default()
	machine.Harness.TemplateDir = templateDir

	cfg := &Config{
		Configuration: "release",
		Run:           []string{"rf"},
		TraceType:     "gc",
		TestmixTime:   "00:05:00",
		RuntimeRoot:   root,
		SaveRoot:      saveRoot,
		SaveName:      "try1",
	}

	r := &fakeRunner{out: "\x1b[32m5 passed\x1b[0m\n"}
	svc, out := newService(t, cfg, machine, r, "")
	require.NoError(t, svc.Run(context.Background()))

	// The experimental GC is staged into Core_Root under the save's name.
	staged, err := os.ReadFile(filepath.Join(coreRoot, "clrgcexp_try1.dll"))
	require.NoError(t, err)
	require.Equal(t, "experimental gc", string(staged))

	expanded, err := os.ReadFile(filepath.Join(templateDir, "testmix_gc_ci.config"))
	require.NoError(t, err)
	require.Equal(t, `time="00:05:00" run="try1" root="`+coreRoot+`"`, string(expanded))

	require.Len(t, r.specs, 1)
	spec := r.specs[0]
	rfDir := filepath.Join(root, "artifacts", "tests", "coreclr", "windows.x64.release",
		filepath.FromSlash("GC/Stress/Framework/ReliabilityFramework"))
	require.Equal(t, rfDir, spec.Dir)
	require.Equal(t, filepath.Join(rfDir, "ReliabilityFramework.cmd"), spec.Name)
	require.Equal(t, []string{"-coreroot", coreRoot, filepath.Join(templateDir, "testmix_gc_ci.config")}, spec.Args)
	require.Equal(t, map[string]string{"COMPlus_GCName": "clrgcexp_try1.dll"}, spec.Env)

	// The operator sees the raw output; the kept log is stripped.
	require.Contains(t, out.String(), "\x1b[32m5 passed\x1b[0m")
	kept, err := os.ReadFile(filepath.Join(saveLoc, "logs", "rf.log"))
	require.NoError(t, err)
	require.Equal(t, "5 passed\n", string(kept))
}

func TestRunRFFailureContinues(t *testing.T) {
	root, _ := setupRuntimeRoot(t, "release")
	saveRoot := t.TempDir()
	writeFile(t, filepath.Join(saveRoot, "try1", "clrgcexp.dll"), "experimental gc")

	templateDir := t.TempDir()
	writeFile(t, filepath.Join(templateDir, "testmix_gc_ci.config.template"), "time={testmix_time}")
	writeFile(t, filepath.Join(templateDir, "Microbenchmarks.yaml.template"), "trace: {trace_type}")

	machine := config.Default()
	machine.Harness.TemplateDir = templateDir

	cfg := &Config{
		Configuration: "release",
		Run:           []string{"rf", "micro"},
		TraceType:     "gc",
		TestmixTime:   "00:01:00",
		RuntimeRoot:   root,
		SaveRoot:      saveRoot,
		SaveName:      "try1",
	}

	r := &fakeRunner{failOn: "ReliabilityFramework"}
	svc, out := newService(t, cfg, machine, r, "\n")
	err := svc.Run(context.Background())
	require.Error(t, err)
	require.True(t, IsHarnessError(err))

	// The microbenchmark prompt still came up after the rf failure.
	require.Contains(t, out.String(), "Run under elevated prompt:")
	require.Contains(t, out.String(), "microbenchmarks --configuration")
}

func TestRunInfraPrompts(t *testing.T) {
	root, _ := setupRuntimeRoot(t, "release")
	saveRoot := t.TempDir()
	writeFile(t, filepath.Join(saveRoot, "try1", "clrgcexp.dll"), "experimental gc")

	templateDir := t.TempDir()
	writeFile(t, filepath.Join(templateDir, "Microbenchmarks.yaml.template"), "trace_configuration_type: {trace_type}\n")
	writeFile(t, filepath.Join(templateDir, "ASPNetBenchmarks.yaml.template"), "trace_configuration_type: {trace_type}\n")

	machine := config.Default()
	machine.Harness.TemplateDir = templateDir

	cfg := &Config{
		Configuration: "release",
		Run:           []string{"micro", "asp"},
		TraceType:     "cpu",
		TestmixTime:   "00:01:00",
		RuntimeRoot:   root,
		SaveRoot:      saveRoot,
		SaveName:      "try1",
	}

	r := &fakeRunner{}
	svc, out := newService(t, cfg, machine, r, "\n\n")
	require.NoError(t, svc.Run(context.Background()))

	// Neither suite is launched by the tool itself.
	require.Empty(t, r.specs)

	require.Contains(t, out.String(), "microbenchmarks --configuration "+filepath.Join(templateDir, "Microbenchmarks.yaml"))
	require.Contains(t, out.String(), "aspnetbenchmarks --configuration "+filepath.Join(templateDir, "ASPNetBenchmarks.yaml"))
	require.Equal(t, 2, strings.Count(out.String(), "Press Enter when done..."))

	expanded, err := os.ReadFile(filepath.Join(templateDir, "Microbenchmarks.yaml"))
	require.NoError(t, err)
	require.Equal(t, "trace_configuration_type: cpu\n", string(expanded))
}

func TestRunMissingStagedGC(t *testing.T) {
	root, _ := setupRuntimeRoot(t, "release")
	saveRoot := t.TempDir()
	// The save exists but holds no archived experimental GC.
	require.NoError(t, os.Mkdir(filepath.Join(saveRoot, "try1"), 0755))

	cfg := &Config{
		Configuration: "release",
		Run:           []string{"rf"},
		RuntimeRoot:   root,
		SaveRoot:      saveRoot,
		SaveName:      "try1",
	}

	svc, _ := newService(t, cfg, config.Default(), &fakeRunner{}, "")
	err := svc.Run(context.Background())
	require.Error(t, err)
	require.False(t, IsHarnessError(err))
}

func TestRunNoStages(t *testing.T) {
	root, _ := setupRuntimeRoot(t, "release")
	saveRoot := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(saveRoot, "try1"), 0755))

	cfg := &Config{
		Configuration: "release",
		RuntimeRoot:   root,
		SaveRoot:      saveRoot,
		SaveName:      "try1",
	}

	r := &fakeRunner{}
	svc, out := newService(t, cfg, config.Default(), r, "")
	require.NoError(t, svc.Run(context.Background()))

	require.Empty(t, r.specs)
	require.Empty(t, out.String())
}
