// Package extractors resolves chapter metadata: title, structured data,
// OpenGraph tags, dates, authors, images and language.
package extractors

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/internal/simplifiers"
)

var titleSeparators = regexp.MustCompile(`[-—–_|<>«»‹›·]`)

const (
	headingThreshold = 0.3
	otherThreshold   = 0.5
	snapThreshold    = 0.9
)

// SplitDoctitle cuts a <title> into its separator-delimited segments.
func SplitDoctitle(doctitle string) []string {
	return titleSeparators.Split(doctitle, -1)
}

// Similarity is 1 - EditDistance(a, b) / max(len(a), len(b)) over the
// trimmed runes of a and b. It is 0 when one string is at least three
// times the length of the other.
func Similarity(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	maxLen, minLen := la, lb
	if minLen > maxLen {
		maxLen, minLen = minLen, maxLen
	}
	if maxLen >= 3*minLen {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// similar compares titles after NFKC folding, so full-width and half-width
// forms of the same text match.
func similar(a, b string) float64 {
	return Similarity(simplifiers.NormalizeUnicode(a), simplifiers.NormalizeUnicode(b))
}

// GuessTitle picks the candidate that best matches the document title and
// removes it from the tree. It returns "" when no candidate qualifies.
func GuessTitle(candidates []*html.Node, doctitle, pageURL string) string {
	segments := SplitDoctitle(doctitle)

	type admitted struct {
		node  *html.Node
		point float64
	}
	var cache []admitted

	for _, n := range candidates {
		if n.Parent == nil {
			continue
		}
		if dom.IsElement(n, "a") {
			if title, ok := titleFromAnchor(n, doctitle, pageURL); ok {
				return title
			}
		} else if a := dom.FindFirst(n, "a"); a != nil {
			if title, ok := titleFromAnchor(a, doctitle, pageURL); ok {
				return title
			}
			continue
		}

		point := bestSegment(dom.Text(n), segments)
		threshold := otherThreshold
		if dom.IsElement(n, "header", "h1", "h2", "h3", "a") {
			threshold = headingThreshold
		}
		titled := dom.MatchSymbols(dom.Identities(n, nil), []string{"title"})
		if point > threshold || titled {
			cache = append(cache, admitted{node: n, point: point})
		}
	}

	if len(cache) == 0 {
		return ""
	}

	sort.SliceStable(cache, func(i, j int) bool {
		return float64(dom.Depth(cache[i].node))*cache[i].point >
			float64(dom.Depth(cache[j].node))*cache[j].point
	})

	node := cache[0].node
	title := dom.Text(node)
	for _, span := range dom.FindAll(node, "span") {
		dom.Remove(span)
	}
	if stripped := dom.Text(node); !dom.IsBlankText(stripped) {
		title = stripped
	}
	if dom.IsBlankText(title) {
		return ""
	}
	dom.Remove(node)

	for _, seg := range segments {
		if similar(seg, title) >= snapThreshold {
			return strings.TrimSpace(seg)
		}
	}
	return strings.TrimSpace(title)
}

func bestSegment(text string, segments []string) float64 {
	best := 0.0
	for _, seg := range segments {
		if p := similar(seg, text); p > best {
			best = p
		}
	}
	return best
}

// titleFromAnchor accepts an anchor that links back to the page itself and
// whose text resembles the document title.
func titleFromAnchor(a *html.Node, doctitle, pageURL string) (string, bool) {
	text := strings.TrimSpace(dom.Text(a))
	title := strings.TrimSpace(dom.Attr(a, "title"))
	if title == "" {
		title = text
	}
	if img := dom.FindFirst(a, "img"); img != nil {
		if alt := strings.TrimSpace(dom.Attr(img, "alt")); alt != "" {
			title = alt
		}
	}
	if title == "" {
		return "", false
	}

	if !SameLink(dom.Attr(a, "href"), pageURL) {
		return "", false
	}
	if utf8.RuneCountInString(title) > utf8.RuneCountInString(doctitle) {
		return "", false
	}
	if !strings.Contains(doctitle, title) && similar(title, doctitle) <= headingThreshold {
		return "", false
	}

	dom.Remove(a)
	if text != "" && strings.Contains(text, title) {
		return text, true
	}
	return title, true
}

// SameLink reports whether href, resolved against pageURL, points at
// pageURL. A trailing slash is ignored.
func SameLink(href, pageURL string) bool {
	href = strings.TrimSpace(href)
	if href == "" || pageURL == "" {
		return false
	}
	resolved := ResolveURL(pageURL, href)
	if resolved == pageURL {
		return true
	}
	return strings.TrimRight(resolved, "/") == strings.TrimRight(pageURL, "/")
}

// ResolveURL resolves ref against base. Unparseable input is returned as is.
func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
