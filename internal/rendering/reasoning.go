package rendering

import (
	"regexp"
	"strings"
)

var htmlComment = regexp.MustCompile(`(?s)<!--\s*(.*?)\s*-->`)

// ExtractReasoning splits a generated document into the visible text and the
// reasoning the model left in HTML comments. Comment bodies are joined in
// order with a blank line between them; the visible text is the input with
// every comment removed and runs of blank lines collapsed. Text without
// comments comes back unchanged.
func ExtractReasoning(text string) (stripped, reasoning string) {
	matches := htmlComment.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, ""
	}
	bodies := make([]string, 0, len(matches))
	for _, m := range matches {
		bodies = append(bodies, m[1])
	}

	stripped = htmlComment.ReplaceAllString(text, "")
	stripped = CollapseBlankLines(stripped)
	return stripped, strings.Join(bodies, "\n\n")
}
