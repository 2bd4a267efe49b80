// Package diff turns two report groups into the operator-facing findings:
// which tests are missing, which ran more often and which got slower.
package diff

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/exp/maps"

	"github.com/gcforge/infra/compare/report"
)

// Presence lists keys that are absent or underrepresented on the b side, in
// ascending key order. Callers run it twice with the sides swapped to get
// the full picture.
func Presence(a, b report.Group, label string) []string {
	keys := maps.Keys(a)
	slices.Sort(keys)

	var lines []string
	for _, key := range keys {
		if _, ok := b[key]; !ok {
			lines = append(lines, fmt.Sprintf("only in %s: %s", label, key))
			continue
		}
		if len(a[key]) > len(b[key]) {
			lines = append(lines, fmt.Sprintf("more in %s: %s (%d > %d)", label, key, len(a[key]), len(b[key])))
		}
	}
	return lines
}

// Timing flags keys common to both groups whose a-side time exceeds the
// b-side beyond the absolute or the ratio threshold. The ratio is +Inf when
// the b side recorded no time at all, which always clears the ratio
// threshold. Run symmetrically like Presence.
func Timing(a, b report.Group, label string, timeAbs, timeRatio float64) []string {
	keys := maps.Keys(a)
	slices.Sort(keys)

	var lines []string
	for _, key := range keys {
		if _, ok := b[key]; !ok {
			continue
		}
		sumA := a.KeyTime(key)
		sumB := b.KeyTime(key)
		ratio := math.Inf(1)
		if sumB != 0 {
			ratio = sumA / sumB
		}
		if sumA-sumB > timeAbs || ratio > timeRatio {
			lines = append(lines, fmt.Sprintf("slower in %s: %s (%.2f > %.2f) %.2f", label, key, sumA, sumB, ratio))
		}
	}
	return lines
}
