package utils

import "strings"

// Ellipsis is appended to text shortened by TruncateRunes.
const Ellipsis = "..."

// TruncateRunes shortens text to at most limit runes, appending Ellipsis when
// anything was cut. Text that already fits is returned unchanged.
func TruncateRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + Ellipsis
}

// FirstLines returns up to n non-blank lines of text, trimmed, joined with newlines.
func FirstLines(text string, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]string, 0, n)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return strings.Join(out, "\n")
}
