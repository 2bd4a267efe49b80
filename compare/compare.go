// Package compare diffs sets of XML test reports: which tests ran in one
// set but not the other, which ran a different number of times and,
// optionally, which got slower.
package compare

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"

	"github.com/gcforge/infra/compare/diff"
	"github.com/gcforge/infra/compare/profile"
	"github.com/gcforge/infra/compare/report"
)

// Service runs one comparison: load, merge, diff, report.
type Service struct {
	cfg *Config
	log zerolog.Logger
	out io.Writer
}

// New creates a comparison service writing its report to out.
func New(cfg *Config, log zerolog.Logger, out io.Writer) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &Service{cfg: cfg, log: log, out: out}, nil
}

// Run executes the comparison. The first configured file becomes group 1,
// the rest merge into group 2. Any error is fatal to the invocation.
func (s *Service) Run() error {
	profiles := profile.Builtin()
	if s.cfg.ProfilesPath != "" {
		loaded, err := profile.Load(s.cfg.ProfilesPath)
		if err != nil {
			return err
		}
		profiles = loaded
		s.log.Debug().Msgf("using %d profiles from %s", len(profiles), s.cfg.ProfilesPath)
	}
	prof, err := profile.Select(profiles, s.cfg.SecondProfile)
	if err != nil {
		return err
	}

	group1, err := s.load(s.cfg.Files[0], report.LoadOptions{
		Drop:      prof.Drop1,
		Canon:     prof.Canon,
		ZeroTimes: s.cfg.ZeroFirst,
	})
	if err != nil {
		return err
	}

	group2 := report.Group{}
	for _, file := range s.cfg.Files[1:] {
		g, err := s.load(file, report.LoadOptions{Drop: prof.Drop2, Canon: prof.Canon})
		if err != nil {
			return err
		}
		group2.Merge(g)
	}

	fmt.Fprintf(s.out, "group 1 has %d entries and %d tests\n", group1.Entries(), group1.Tests())
	fmt.Fprintf(s.out, "group 2 has %d entries and %d tests\n", group2.Entries(), group2.Tests())

	if s.cfg.Find != "" {
		s.findIn("1", group1)
		s.findIn("2", group2)
	}

	if s.cfg.GroupByDir {
		s.print(diff.GroupedByDir(group1, group2))
	} else {
		s.print(diff.Presence(group1, group2, "1"))
		s.print(diff.Presence(group2, group1, "2"))
	}

	if s.cfg.Timing {
		timeAbs := s.cfg.TimeAbs
		if s.cfg.ZeroFirst {
			timeAbs = 0
		}
		s.print(diff.Timing(group1, group2, "1", timeAbs, s.cfg.TimeRatio))
		s.print(diff.Timing(group2, group1, "2", timeAbs, s.cfg.TimeRatio))
		fmt.Fprintf(s.out, "group 1 total time: %.2f\n", group1.TotalTime())
		fmt.Fprintf(s.out, "group 2 total time: %.2f\n", group2.TotalTime())
	}

	s.log.Debug().Msg("comparison complete")
	return nil
}

func (s *Service) load(path string, opts report.LoadOptions) (report.Group, error) {
	s.log.Debug().Msgf("loading %s", path)
	group, err := report.Load(path, opts)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.out, "%s has %d entries and %d tests\n", path, group.Entries(), group.Tests())
	return group, nil
}

func (s *Service) findIn(label string, g report.Group) {
	keys := maps.Keys(g)
	slices.Sort(keys)
	for _, key := range keys {
		if strings.Contains(key, s.cfg.Find) {
			fmt.Fprintf(s.out, "in group %s: %s\n", label, key)
		}
	}
}

func (s *Service) print(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(s.out, line)
	}
}
