package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// lineIndex returns the index of the first line that starts with prefix.
func lineIndex(text, prefix string) int {
	for i, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			return i
		}
	}
	return -1
}

// AssertDefinedBefore checks that the line binding first comes before the
// line binding second, e.g. AssertDefinedBefore(t, res, "cv_2", "cv_1").
func AssertDefinedBefore(t *testing.T, result *HarnessResult, first, second string) {
	t.Helper()

	i := lineIndex(result.Text, first+" = ")
	j := lineIndex(result.Text, second+" = ")
	require.NotEqual(t, -1, i, "%s is not defined in the script", first)
	require.NotEqual(t, -1, j, "%s is not defined in the script", second)
	require.Less(t, i, j, "expected %s to be defined before %s", first, second)
}

// AssertLine checks that the script contains line exactly.
func AssertLine(t *testing.T, result *HarnessResult, line string) {
	t.Helper()

	for _, l := range strings.Split(result.Text, "\n") {
		if l == line {
			return
		}
	}
	require.Failf(t, "line not found", "expected line %q in script:\n%s", line, result.Text)
}
