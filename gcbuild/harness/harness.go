// Package harness prepares the benchmark harness runs that follow a build:
// the reliability framework stress mix and the GC.Infrastructure
// microbenchmark and ASP.NET suites. Harness inputs are kept as templates
// next to the tool and expanded per run.
package harness

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/pkg/errors"
)

// Params fills the placeholders in a harness template.
type Params struct {
	TestmixTime string
	SaveName    string
	CoreRoot    string
	TraceType   string
}

func (p Params) replacer() *strings.Replacer {
	return strings.NewReplacer(
		"{testmix_time}", p.TestmixTime,
		"{save_name}", p.SaveName,
		"{core_root}", p.CoreRoot,
		"{trace_type}", p.TraceType,
	)
}

// ExpandTemplate reads a template file and substitutes its {placeholder}
// fields from params.
func ExpandTemplate(path string, params Params) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read template [%s]", path)
	}
	return params.replacer().Replace(string(raw)), nil
}

// OutputPath maps a template name into dir with the .template suffix
// dropped, Microbenchmarks.yaml.template to dir/Microbenchmarks.yaml.
func OutputPath(dir, template string) string {
	return filepath.Join(dir, strings.TrimSuffix(filepath.Base(template), ".template"))
}

// Expand writes the expanded template into dir and returns the written path.
func Expand(templatePath, dir string, params Params) (string, error) {
	content, err := ExpandTemplate(templatePath, params)
	if err != nil {
		return "", err
	}
	out := OutputPath(dir, templatePath)
	if err := os.WriteFile(out, []byte(content), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write [%s]", out)
	}
	return out, nil
}

// StripWriter removes ANSI escape sequences before forwarding writes. The
// build and harness scripts colorize their output; the copies kept under
// the save directory should be plain text. Sequences split across Write
// calls pass through unstripped, which the consoles involved do not emit.
type StripWriter struct {
	w io.Writer
}

func NewStripWriter(w io.Writer) *StripWriter {
	return &StripWriter{w: w}
}

func (s *StripWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(s.w, stripansi.Strip(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
