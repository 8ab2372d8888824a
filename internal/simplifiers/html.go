package simplifiers

import (
	"regexp"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	cjkNewline = regexp.MustCompile(`(\p{Han})\n(\p{Han})`)
	manyBreaks = regexp.MustCompile(`(?:<br\s*/?>\s*){3,}`)
	twoBreaks  = regexp.MustCompile(`<br\s*/?>\s*<br\s*/?>`)
)

const paragraphBreak = "<br/><br/>"

// contentElements is everything the serialized content may carry.
var contentElements = []string{
	"p", "br", "hr", "h1", "h2", "h3", "h4", "h5", "h6",
	"blockquote", "pre", "code", "kbd", "samp", "var",
	"ul", "ol", "li", "dl", "dt", "dd",
	"table", "caption", "colgroup", "col", "thead", "tbody", "tfoot", "tr", "td", "th",
	"a", "img", "span", "div", "section", "article", "header", "footer", "main", "aside",
	"figure", "figcaption", "details", "summary", "address",
	"em", "strong", "b", "i", "u", "s", "del", "ins", "sub", "sup", "small", "mark",
	"q", "cite", "abbr", "time", "ruby", "rt", "rp",
}

// Sanitizer is the final allow-list applied to serialized content. It is
// safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a Sanitizer from per-element attribute allow-lists and
// a set of attributes kept on every element.
func NewSanitizer(elementAttrs map[string][]string, keep []string) *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(contentElements...)
	p.AllowDataAttributes()
	p.AllowAttrs("class").OnElements("span")

	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")

	tags := make([]string, 0, len(elementAttrs))
	for tag := range elementAttrs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		if attrs := elementAttrs[tag]; len(attrs) > 0 {
			p.AllowAttrs(attrs...).OnElements(tag)
		}
	}

	for _, attr := range keep {
		if !strings.HasPrefix(attr, "data-") {
			p.AllowAttrs(attr).Globally()
		}
	}

	return &Sanitizer{policy: p}
}

// Sanitize drops every element and attribute outside the allow-list.
func (s *Sanitizer) Sanitize(content string) string {
	return s.policy.Sanitize(content)
}

// JoinCJKLines removes line breaks that split a run of Han characters,
// left behind by hard-wrapped source.
func JoinCJKLines(content string) string {
	for {
		next := cjkNewline.ReplaceAllString(content, "$1$2")
		if next == content {
			return content
		}
		content = next
	}
}

// TransformNewlines collapses runs of line breaks and, when the content has
// no paragraphs, turns double breaks into paragraph boundaries.
func TransformNewlines(content string) string {
	content = manyBreaks.ReplaceAllString(content, paragraphBreak)
	content = twoBreaks.ReplaceAllString(content, paragraphBreak)

	if strings.Contains(content, paragraphBreak) && !strings.Contains(content, "</p>") {
		bits := strings.Split(content, paragraphBreak)
		for i, bit := range bits {
			bits[i] = "<p>" + bit + "</p>"
		}
		content = strings.Join(bits, "\n")
	}
	return strings.TrimSpace(content)
}
