// Package richtext converts between the HTML bodies stored by the API and the
// plain text the client searches and prints.
package richtext

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripper  = bluemonday.StrictPolicy()
	sanitizer = bluemonday.UGCPolicy()

	blockBreakPattern = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|blockquote|pre|tr|table|ul|ol)>`)
	listItemPattern   = regexp.MustCompile(`(?i)<li(\s[^>]*)?>`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

// Strip returns the text content of an HTML fragment with all markup removed
// and entities decoded.
func Strip(fragment string) string {
	if fragment == "" {
		return ""
	}
	return html.UnescapeString(stripper.Sanitize(fragment))
}

// Sanitize removes anything not safe to store or display from user supplied HTML.
func Sanitize(fragment string) string {
	return sanitizer.Sanitize(fragment)
}

// Summary collapses the stripped text and cuts it to at most limit characters,
// appending an ellipsis when something was dropped.
func Summary(fragment string, limit int) string {
	text := strings.Join(strings.Fields(Strip(fragment)), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

// Text renders HTML as readable plain text: block elements end a line and list
// items get a bullet.
func Text(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	withBreaks := listItemPattern.ReplaceAllString(fragment, "• ")
	withBreaks = blockBreakPattern.ReplaceAllString(withBreaks, "\n")

	lines := strings.Split(Strip(withBreaks), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	out := strings.Join(lines, "\n")
	out = blankLinesPattern.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
