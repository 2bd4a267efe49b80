package flags

import (
	"fmt"
	"os"
	"strings"
)

// Argument files may reference further argument files; a cycle would loop
// forever, so expansion stops with an error at this depth.
const maxArgFileDepth = 10

// ExpandArgFiles replaces every @path argument with the contents of that
// file, one argument per line, recursively. Blank lines and surrounding
// whitespace are ignored. Arguments not starting with @ pass through
// untouched.
func ExpandArgFiles(args []string) ([]string, error) {
	return expandArgFiles(args, 0)
}

func expandArgFiles(args []string, depth int) ([]string, error) {
	if depth > maxArgFileDepth {
		return nil, fmt.Errorf("argument files nested more than %d levels deep", maxArgFileDepth)
	}

	var out []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "@") {
			out = append(out, arg)
			continue
		}

		path := arg[1:]
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading argument file: %w", err)
		}

		var fileArgs []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			fileArgs = append(fileArgs, line)
		}

		expanded, err := expandArgFiles(fileArgs, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}
