// Package testutil holds helpers for tests that inspect CLI output.
package testutil

import (
	"regexp"
	"strings"
)

// ansiRegex matches CSI escape sequences such as color codes.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes ANSI escape codes from s, so that assertions hold
// whatever theme is active.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// MissingSubstrings returns the entries of want absent from the uncolored
// form of output, in order.
func MissingSubstrings(output string, want ...string) []string {
	plain := StripAnsiCodes(output)
	var missing []string
	for _, w := range want {
		if !strings.Contains(plain, w) {
			missing = append(missing, w)
		}
	}
	return missing
}
