// Package profile holds the comparison configuration profiles: which raw
// test names are hidden per group and which names collapse to a shared
// canonical key.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile configures one comparison run. Drop1 and Drop2 hide keys from
// group 1 and group 2 respectively; Canon collapses matching keys to a fixed
// representative. All matching is by substring against canonical keys.
type Profile struct {
	Drop1 []string `yaml:"drop1"`
	Drop2 []string `yaml:"drop2"`
	Canon []string `yaml:"canon"`
}

// Table is the on-disk shape of a profile file.
type Table struct {
	Profiles []Profile `yaml:"profiles"`
}

// Builtin returns the stock profile table. The first entry reflects the
// day-to-day comparison runs, the second disables all filtering.
func Builtin() []Profile {
	return []Profile{
		{
			Drop1: []string{
				"il_conformance",
			},
			Drop2: []string{
				"runtime_81018",
				"runtime_81019",
				"runtime_81081",
			},
			Canon: []string{
				"b598031",
				"github_26491",
				"b323557_il",
			},
		},
		{},
	}
}

// Load reads a profile table from a YAML file. The file replaces the builtin
// table wholesale for the invocation.
func Load(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing profile file: %w", err)
	}
	if len(table.Profiles) == 0 {
		return nil, fmt.Errorf("profile file %s defines no profiles", path)
	}
	return table.Profiles, nil
}

// Select picks the active profile: the second entry when second is set, else
// the first.
func Select(profiles []Profile, second bool) (Profile, error) {
	index := 0
	if second {
		index = 1
	}
	if index >= len(profiles) {
		return Profile{}, fmt.Errorf("profile %d requested but only %d defined", index+1, len(profiles))
	}
	return profiles[index], nil
}
