package diff

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/gcforge/infra/compare/report"
)

// SplitKey splits a canonical key into its directory (everything above the
// last two path segments) and its leaf (the last two segments). Short keys
// have an empty directory.
func SplitKey(key string) (dir, leaf string) {
	parts := strings.Split(key, report.Separator)
	if len(parts) <= 2 {
		return "", key
	}
	cut := len(parts) - 2
	return strings.Join(parts[:cut], report.Separator), strings.Join(parts[cut:], report.Separator)
}

// GroupedByDir renders the presence and cardinality differences between a
// (group 1) and b (group 2) as one block per directory, in ascending
// directory order. Directories where every key matches are suppressed.
// Within a block keys are ordered by leaf and annotated with the side they
// are exclusive to, or with their run counts when both sides have them.
func GroupedByDir(a, b report.Group) []string {
	dirs := map[string][]string{}
	seen := map[string]bool{}
	collect := func(g report.Group) {
		for key := range g {
			if seen[key] {
				continue
			}
			seen[key] = true
			dir, _ := SplitKey(key)
			dirs[dir] = append(dirs[dir], key)
		}
	}
	collect(a)
	collect(b)

	names := maps.Keys(dirs)
	slices.Sort(names)

	var lines []string
	for _, dir := range names {
		keys := dirs[dir]
		slices.SortFunc(keys, func(x, y string) int {
			_, leafX := SplitKey(x)
			_, leafY := SplitKey(y)
			return strings.Compare(leafX, leafY)
		})

		var rows []string
		for _, key := range keys {
			_, leaf := SplitKey(key)
			_, inA := a[key]
			_, inB := b[key]
			switch {
			case inA && !inB:
				rows = append(rows, fmt.Sprintf("\t Only in 1: %s", leaf))
			case inB && !inA:
				rows = append(rows, fmt.Sprintf("\t Only in 2: %s", leaf))
			case len(a[key]) > len(b[key]):
				rows = append(rows, fmt.Sprintf("\t More in 1: %s %d > %d", leaf, len(a[key]), len(b[key])))
			case len(b[key]) > len(a[key]):
				rows = append(rows, fmt.Sprintf("\t More in 2: %s %d > %d", leaf, len(b[key]), len(a[key])))
			}
		}
		if len(rows) == 0 {
			continue
		}
		lines = append(lines, "", "Directory "+dir)
		lines = append(lines, rows...)
	}
	return lines
}
