package dom

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Text returns the concatenated text of every text node under n.
// Script and style bodies are skipped.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				if IsElement(c, "script", "style") {
					continue
				}
				walk(c)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// OwnText returns the text of the direct text children of n.
func OwnText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func isNoise(r rune) bool {
	switch r {
	case '|', '<', '>', '(', ')', '[', ']', '-', '：', ':', '【', '】', '●':
		return true
	}
	return unicode.IsSpace(r) || unicode.IsDigit(r)
}

// Pure strips whitespace, digits and separator noise from s.
func Pure(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isNoise(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PureText returns the pure text of n.
func PureText(n *html.Node) string {
	return Pure(Text(n))
}

// PureLen returns the rune length of the pure text of n.
func PureLen(n *html.Node) int {
	return utf8.RuneCountInString(PureText(n))
}

// LinkPureLen sums the pure text length of every anchor under n.
func LinkPureLen(n *html.Node) int {
	total := 0
	for _, a := range FindAll(n, "a") {
		total += PureLen(a)
	}
	return total
}

// NonLinkPureLen is the pure text length of n minus that of its anchors.
func NonLinkPureLen(n *html.Node) int {
	return PureLen(n) - LinkPureLen(n)
}

// IsBlankText reports whether s holds only whitespace.
func IsBlankText(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Identities returns the lower-cased id and class tokens of n, dropping any
// token that contains one of the grid markers.
func Identities(n *html.Node, grid []string) []string {
	var raw []string
	if id := Attr(n, "id"); id != "" {
		raw = append(raw, id)
	}
	raw = append(raw, strings.Fields(Attr(n, "class"))...)

	tokens := make([]string, 0, len(raw))
outer:
	for _, tok := range raw {
		tok = strings.ToLower(tok)
		for _, g := range grid {
			if strings.Contains(tok, g) {
				continue outer
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// MatchSymbols reports whether any symbol is a substring of the space-joined
// identity tokens.
func MatchSymbols(idents, symbols []string) bool {
	if len(idents) == 0 {
		return false
	}
	joined := strings.Join(idents, " ")
	for _, s := range symbols {
		if s != "" && strings.Contains(joined, s) {
			return true
		}
	}
	return false
}

// HasClass reports whether the class attribute of n holds the token.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// OuterHTML renders n including its own tag.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}
