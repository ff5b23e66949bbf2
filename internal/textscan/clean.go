package textscan

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanHTML normalizes a value that originated from markup: tags are
// stripped (replaced by a space so adjacent words don't merge), HTML
// entities are decoded, then runs of whitespace collapse to one space and
// the result is trimmed.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(tagRe.ReplaceAllString(s, " "))
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// CollapseWhitespace trims s and squeezes internal whitespace runs without
// touching markup or entities.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
