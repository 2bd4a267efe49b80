// Package config holds the machine-level settings for gcbuild: the runtime
// platform, the build scripts to invoke, which binaries to archive and how
// the benchmark harnesses are located and launched. Settings live in a TOML
// file and overlay the defaults, so a config file only needs the fields that
// differ from the stock Windows x64 setup.
package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

type Config struct {
	Platform string `toml:"platform"`

	Build   BuildConfig   `toml:"build"`
	Archive ArchiveConfig `toml:"archive"`
	Harness HarnessConfig `toml:"harness"`
}

type BuildConfig struct {
	Script          string `toml:"script"`
	TestBuildScript string `toml:"test_build_script"`
	StressProject   string `toml:"stress_project"`
}

type ArchiveConfig struct {
	GCSourceDir  string   `toml:"gc_source_dir"`
	Disassembler string   `toml:"disassembler"`
	Binaries     []Binary `toml:"binaries"`
}

// Binary names a build product to preserve from Core_Root. Disasm marks the
// ones worth running through the disassembler, which is slow and pointless
// for binaries that change on every build.
type Binary struct {
	Name   string `toml:"name"`
	Disasm bool   `toml:"disasm"`
}

type HarnessConfig struct {
	TemplateDir        string `toml:"template_dir"`
	GCEnvVar           string `toml:"gc_env_var"`
	ExperimentalBinary string `toml:"experimental_binary"`
	InfraExe           string `toml:"infra_exe"`
	RFTemplate         string `toml:"rf_template"`
	MicroTemplate      string `toml:"micro_template"`
	ASPTemplate        string `toml:"asp_template"`
}

// Default returns the configuration for the usual Windows x64 GC development
// machine. Relative paths are slash-separated and resolved against the
// runtime root at run time.
func Default() Config {
	return Config{
		Platform: "windows.x64",
		Build: BuildConfig{
			Script:          "build.cmd",
			TestBuildScript: "src/tests/build.cmd",
			StressProject:   "GC/Stress/Framework/ReliabilityFramework.csproj",
		},
		Archive: ArchiveConfig{
			GCSourceDir:  "src/coreclr/gc",
			Disassembler: "dumpbin",
			Binaries: []Binary{
				{Name: "clrgc.dll", Disasm: true},
				{Name: "clrgcexp.dll", Disasm: true},
				{Name: "coreclr.dll", Disasm: false},
			},
		},
		Harness: HarnessConfig{
			TemplateDir:        `C:\r\utils\gcbuild`,
			GCEnvVar:           "COMPlus_GCName",
			ExperimentalBinary: "clrgcexp.dll",
			InfraExe:           `C:\r\performance\artifacts\bin\GC.Infrastructure\Release\net7.0\GC.Infrastructure.exe`,
			RFTemplate:         "testmix_gc_ci.config.template",
			MicroTemplate:      "Microbenchmarks.yaml.template",
			ASPTemplate:        "ASPNetBenchmarks.yaml.template",
		},
	}
}

// Load decodes a TOML file on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config file [%s]", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Arch returns the architecture half of the platform pair, "x64" for
// "windows.x64". The build scripts take it as a bare argument.
func (c Config) Arch() string {
	if i := strings.LastIndex(c.Platform, "."); i >= 0 {
		return c.Platform[i+1:]
	}
	return c.Platform
}

func (c Config) Validate() error {
	if c.Platform == "" {
		return errors.New("platform is required")
	}
	if c.Build.Script == "" {
		return errors.New("build script is required")
	}
	if c.Build.TestBuildScript == "" {
		return errors.New("test build script is required")
	}
	if len(c.Archive.Binaries) == 0 {
		return errors.New("no binaries configured for archiving")
	}
	for _, b := range c.Archive.Binaries {
		if b.Name == "" {
			return errors.New("binary entries need a name")
		}
	}
	if c.Harness.GCEnvVar == "" {
		return errors.New("gc env var is required")
	}
	if c.Harness.ExperimentalBinary == "" {
		return errors.New("experimental binary is required")
	}
	return nil
}
