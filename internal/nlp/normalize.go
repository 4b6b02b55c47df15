package nlp

import (
	"regexp"
	"strings"
)

var (
	urlPattern        = regexp.MustCompile(`http\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize prepares raw post text for detection and scoring: URL-like
// tokens are stripped and whitespace runs collapse to single spaces.
// Pure and total; any input yields a (possibly empty) string.
func Normalize(text string) string {
	text = urlPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
