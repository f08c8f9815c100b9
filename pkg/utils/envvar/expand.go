// Package envvar expands ${VAR} placeholders so secrets can stay out of config files.
package envvar

import (
	"os"
	"regexp"
	"sort"
)

// pattern matches ${VAR_NAME} placeholders.
var pattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Lookup resolves a variable name, reporting whether it is set.
type Lookup func(name string) (string, bool)

// Expand replaces ${VAR_NAME} placeholders with values from the process environment.
// Unset variables expand to the empty string.
func Expand(value string) string {
	return ExpandWith(value, os.LookupEnv)
}

// ExpandWith replaces ${VAR_NAME} placeholders using lookup.
func ExpandWith(value string, lookup Lookup) string {
	if value == "" {
		return value
	}

	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		resolved, _ := lookup(match[2 : len(match)-1])

		return resolved
	})
}

// Missing returns the sorted, de-duplicated names referenced in value that lookup cannot resolve.
func Missing(value string, lookup Lookup) []string {
	seen := map[string]struct{}{}

	for _, groups := range pattern.FindAllStringSubmatch(value, -1) {
		name := groups[1]
		if _, ok := lookup(name); !ok {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
