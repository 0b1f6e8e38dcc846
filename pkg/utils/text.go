package utils

import "strings"

// TruncateRunes cuts text to at most max characters without splitting a rune.
// A non-positive max leaves the text untouched.
func TruncateRunes(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// FirstLines returns up to n non-empty, trimmed lines of text.
func FirstLines(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	lines := make([]string, 0, n)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}

// CollapseBlankLines trims every line and squeezes runs of blank lines into one.
func CollapseBlankLines(text string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Excerpt shortens text for log lines and titles, appending "..." when cut.
func Excerpt(text string, max int) string {
	text = strings.TrimSpace(text)
	if len([]rune(text)) <= max {
		return text
	}
	return strings.TrimSpace(TruncateRunes(text, max)) + "..."
}
