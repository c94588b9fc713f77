package core

import (
	"html"
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize prepares memory text for storage and comparison: decodes HTML
// entities (models frequently emit &quot; inside directives), strips one
// layer of matching wrapping quotes or backticks, and collapses whitespace
// runs to single spaces. Idempotent.
func Normalize(s string) string {
	s = strings.TrimSpace(html.UnescapeString(s))
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'' || first == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return whitespaceRun.ReplaceAllString(s, " ")
}
