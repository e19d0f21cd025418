// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock removes markdown code fence decoration from a response.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
// Only decoration is removed; any other text is left for the parser to reject.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	var sb strings.Builder
	sb.Grow(len(text))
	for {
		idx := strings.Index(text, "```")
		if idx < 0 {
			sb.WriteString(text)
			break
		}
		sb.WriteString(text[:idx])
		text = skipFenceInfo(text[idx+3:])
	}

	cleaned := strings.TrimSpace(sb.String())

	// Single backticks around the whole payload
	if len(cleaned) >= 2 && strings.HasPrefix(cleaned, "`") && strings.HasSuffix(cleaned, "`") {
		cleaned = strings.TrimSpace(strings.Trim(cleaned, "`"))
	}
	return cleaned
}

// skipFenceInfo drops a language identifier (e.g. "json") directly after an
// opening fence, along with the whitespace that follows it.
func skipFenceInfo(rest string) string {
	end := 0
	for end < len(rest) && isInfoByte(rest[end]) {
		end++
	}
	return strings.TrimLeft(rest[end:], " \t\r\n")
}

func isInfoByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '-' || b == '_'
}
