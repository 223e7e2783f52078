// Package testutil provides helpers shared by the output tests.
package testutil

import (
	"math/big"
	"regexp"
	"strings"
	"testing"
)

// ansiRegex matches CSI escape sequences (ESC [ ... letter).
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes ANSI escape codes from a string.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// Lines splits colorless output into trimmed, non-empty lines.
func Lines(s string) []string {
	var lines []string
	for _, line := range strings.Split(StripAnsiCodes(s), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Rat parses a rational literal or fails the test.
func Rat(t testing.TB, s string) *big.Rat {
	t.Helper()
	q, ok := new(big.Rat).SetString(s)
	if !ok {
		t.Fatalf("invalid rational literal %q", s)
	}
	return q
}
