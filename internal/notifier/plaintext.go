package notifier

import (
	"html"
	"regexp"
	"strings"
)

var (
	breakRe      = regexp.MustCompile(`(?i)<\s*(br\s*/?|/p|/h[1-6]|/div|/li|/tr)\s*>`)
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe      = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// PlainText derives a plain-text body from rendered HTML. The result is
// guaranteed to contain no '<' characters.
func PlainText(htmlBody string) string {
	s := breakRe.ReplaceAllString(htmlBody, "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	// Unescaping can reintroduce angle brackets from &lt; entities.
	s = strings.ReplaceAll(s, "<", "")

	s = spaceRe.ReplaceAllString(s, " ")
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	s = strings.Join(lines, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
