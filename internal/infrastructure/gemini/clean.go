package gemini

import (
	"regexp"
	"strings"
)

// Compiled once; cleaning runs on every detection call.
var (
	// htmlTagRegex strips markup before the character allow-list runs.
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

	// allowedCharsRegex keeps letters, digits, hiragana/katakana, CJK
	// ideographs, and limited punctuation. Everything else is dropped to
	// bound token cost.
	allowedCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9\x{3040}-\x{30ff}\x{4e00}-\x{9fff}.,;:：/\-()\[\]（）％™\s]`)

	whitespaceRegex = regexp.MustCompile(`\s+`)

	crlfReplacer = strings.NewReplacer("\n", " ", "\r", " ")
)

// cleanText removes markup and disallowed characters and collapses
// whitespace. Returns "" for empty or all-noise input.
func cleanText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := htmlTagRegex.ReplaceAllString(text, "")
	cleaned = allowedCharsRegex.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// truncateText caps text at max runes, marking the cut with an ellipsis
// rather than dropping it silently.
func truncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// sanitizeString strips embedded newlines and collapses internal whitespace
// in a single attribute value.
func sanitizeString(s string) string {
	s = crlfReplacer.Replace(s)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// sanitizeStrings applies sanitizeString element-wise.
func sanitizeStrings(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = sanitizeString(v)
	}
	return out
}
