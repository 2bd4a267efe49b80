// Package report loads XML test reports into groups keyed by canonical test
// name, ready for cross-run comparison.
package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Separator is the path separator inside test names. Reports come from
// Windows test runs, so keys keep backslashes regardless of the host.
const Separator = `\`

// Record is a single test execution parsed from a report file. Name is the
// raw name as written in the file, before canonicalization.
type Record struct {
	Name string
	Time float64
}

// Group maps a canonical key to every record that canonicalized to it, in
// file order. A key is only present while at least one record maps to it, so
// len(g[k]) is the number of times the logical test ran.
type Group map[string][]Record

// Entries returns the number of distinct canonical keys.
func (g Group) Entries() int {
	return len(g)
}

// Tests returns the total number of records across all keys.
func (g Group) Tests() int {
	count := 0
	for _, records := range g {
		count += len(records)
	}
	return count
}

// TotalTime returns the sum of recorded times across all keys.
func (g Group) TotalTime() float64 {
	total := 0.0
	for _, records := range g {
		for _, r := range records {
			total += r.Time
		}
	}
	return total
}

// KeyTime returns the sum of recorded times for one key.
func (g Group) KeyTime(key string) float64 {
	total := 0.0
	for _, r := range g[key] {
		total += r.Time
	}
	return total
}

// Merge extends g with every sequence from other, creating keys as needed.
// Records are appended, never replaced, so merging multiple report files
// accumulates run counts.
func (g Group) Merge(other Group) {
	for key, records := range other {
		g[key] = append(g[key], records...)
	}
}

// CanonicalKey normalizes a raw test name into the identity used for
// comparison. Reports list the same test a bit differently between runs
// (.cmd vs .dll wrappers, doubled backslashes, capitalization), so the name
// is unescaped, lowercased and stripped of its wrapper extension. If the
// result contains any entry of canon it collapses to that entry verbatim,
// first match wins.
func CanonicalKey(raw string, canon []string) string {
	key := strings.ReplaceAll(raw, Separator+Separator, Separator)
	key = strings.ToLower(key)
	if strings.HasSuffix(key, ".dll") || strings.HasSuffix(key, ".cmd") {
		key = key[:len(key)-4]
	}
	for _, c := range canon {
		if strings.Contains(key, c) {
			return c
		}
	}
	return key
}

// Dropped reports whether a canonical key matches any drop substring.
func Dropped(key string, drop []string) bool {
	for _, d := range drop {
		if strings.Contains(key, d) {
			return true
		}
	}
	return false
}

// LoadOptions controls how a report file is turned into a Group.
type LoadOptions struct {
	Drop      []string
	Canon     []string
	ZeroTimes bool
}

// Load parses one report file into a Group. Every test element in the
// document is considered, wherever it sits in the tree. Entries whose
// canonical key matches a drop substring are discarded before they reach the
// output. Any I/O, syntax or attribute problem is fatal; there are no
// partial results.
func Load(path string, opts LoadOptions) (Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewInputError(path, err)
	}
	defer f.Close()

	group := Group{}
	decoder := xml.NewDecoder(f)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewParseError(path, err)
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "test" {
			continue
		}

		record, err := parseTest(path, start, opts.ZeroTimes)
		if err != nil {
			return nil, err
		}

		key := CanonicalKey(record.Name, opts.Canon)
		if Dropped(key, opts.Drop) {
			continue
		}
		group[key] = append(group[key], record)
	}
	return group, nil
}

func parseTest(path string, start xml.StartElement, zeroTimes bool) (Record, error) {
	var name, timeRaw string
	var hasName, hasTime bool
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "name":
			name, hasName = attr.Value, true
		case "time":
			timeRaw, hasTime = attr.Value, true
		}
	}
	if !hasName {
		return Record{}, NewMalformedRecordError(path, "test element is missing a name attribute")
	}
	if !hasTime {
		return Record{}, NewMalformedRecordError(path, fmt.Sprintf("test %q is missing a time attribute", name))
	}

	elapsed, err := strconv.ParseFloat(timeRaw, 64)
	if err != nil || math.IsNaN(elapsed) || elapsed < 0 {
		return Record{}, NewMalformedRecordError(path, fmt.Sprintf("test %q has a bad time %q", name, timeRaw))
	}
	if zeroTimes {
		elapsed = 0
	}
	return Record{Name: name, Time: elapsed}, nil
}
