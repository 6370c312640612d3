// Package rendering post-processes generated documents: it separates the
// model's reasoning comments from the user-visible README, normalizes blank
// lines and applies the generation watermark.
package rendering

import (
	"regexp"
	"strings"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// CollapseBlankLines replaces every run of three or more newlines with exactly two.
func CollapseBlankLines(text string) string {
	return blankRuns.ReplaceAllString(text, "\n\n")
}

// NormalizeNewlines converts CRLF and CR line endings to LF.
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Truncate shortens text to at most limit characters, ending with "..." when cut.
func Truncate(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}
