package extractors

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
)

var authorNoise = regexp.MustCompile(`(?i)(?:作者|:|：|by\s)`)

// AuthorText returns the author named by a byline element. Elements that
// wrap other markup, and names longer than maxLen runes, are rejected.
func AuthorText(n *html.Node, maxLen int) (string, bool) {
	if dom.FirstElementChild(n) != nil {
		return "", false
	}
	text := strings.TrimSpace(authorNoise.ReplaceAllString(dom.Text(n), ""))
	if text == "" || utf8.RuneCountInString(text) > maxLen {
		return "", false
	}
	return text, true
}
