// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// StripCodeFence removes a markdown code block wrapping the whole response.
// Models often wrap generated documents in ```markdown ... ``` even when told not to.
// Text that does not start with a fence, or has no closing fence, is returned unchanged.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	body := strings.TrimPrefix(trimmed, "```")
	end := strings.LastIndex(body, "```")
	if end < 0 {
		return text
	}
	body = body[:end]

	// Skip a language identifier on the opening line
	if idx := strings.Index(body, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(body[:idx])
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
			body = body[idx+1:]
		}
	}

	return strings.TrimSpace(body)
}
