package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the column width descriptions are truncated to
// in table output.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the smallest usable maxLen: one character plus "...".
const MinTruncateLen = 4

// Truncate collapses a string to a single line and cuts it to maxLen runes,
// appending "..." when something was dropped. Operating on runes keeps
// multi-byte characters intact.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
