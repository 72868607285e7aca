package utils

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ExcerptLength is the story card preview size in characters.
const ExcerptLength = 150

// Excerpt returns content unchanged when short enough, otherwise the first
// maxLength characters, trimmed, followed by "...".
func Excerpt(content string, maxLength int) string {
	if utf8.RuneCountInString(content) <= maxLength {
		return content
	}
	runes := []rune(content)
	return strings.TrimSpace(string(runes[:maxLength])) + "..."
}

// Paragraphs splits story content on newlines, dropping blank lines.
func Paragraphs(content string) []string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FormatStoryDate renders dates like "March 4, 2025"; zero times become "Unknown date".
func FormatStoryDate(t time.Time) string {
	if t.IsZero() {
		return "Unknown date"
	}
	return t.Format("January 2, 2006")
}
