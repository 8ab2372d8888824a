package readability

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/internal/simplifiers"
	"github.com/mrjoshuak/getbook/lexicon"
	"github.com/mrjoshuak/getbook/types"
)

// Finalized is the serialized content root.
type Finalized struct {
	HTML        string
	Attachments map[string][]types.Attachment
	// Text is the whitespace-normalized text of the content, placeholders
	// excluded.
	Text string
}

// Finalize lifts media out of root into attachment records, strips what
// does not belong in the output, and serializes the result.
func (r *Readability) Finalize(root *html.Node) Finalized {
	r.extractAttachments(root)

	for _, n := range dom.Elements(root) {
		if !dom.Attached(n, root) || isPlaceholder(n) {
			continue
		}
		r.cleanNode(n)
	}

	// Cleanup drops whole blocks; only placeholders still in the tree keep
	// a record.
	attachments := r.extractAttachments(root)

	var out string
	if lexicon.Has(r.lex.ContainerTags, dom.TagName(root)) {
		out = dom.InnerHTML(root)
	} else {
		out = dom.OuterHTML(root)
	}

	out = r.sanitizer().Sanitize(out)
	out = simplifiers.JoinCJKLines(out)
	out = simplifiers.TransformNewlines(out)

	return Finalized{
		HTML:        out,
		Attachments: attachments,
		Text:        simplifiers.NormalizeText(plainText(root)),
	}
}

func (r *Readability) sanitizer() *simplifiers.Sanitizer {
	if r.san == nil {
		r.san = simplifiers.NewSanitizer(r.lex.ElementAttributes, r.lex.KeepAttributes)
	}
	return r.san
}

func (r *Readability) cleanNode(n *html.Node) {
	if r.isBlank(n) {
		r.remove(n)
		return
	}
	if r.isIgnored(n) {
		return
	}

	switch dom.TagName(n) {
	case "table":
		r.tableCodeblock(n)
	case "a":
		if isDeadHref(dom.Attr(n, "href")) {
			r.rename(n, "span")
		}
	}
	if n.Parent == nil {
		return
	}

	tag := dom.TagName(n)
	if lexicon.Has(r.lex.UselessTags, tag) {
		r.unwrap(n)
		return
	}
	if tag == "span" && dom.Attr(n, "class") == "" && dom.IsElement(n.Parent, "p") {
		r.unwrap(n)
		return
	}

	r.cleanAttributes(n)
}

// isBlank reports an element with no text, no self-closing content and
// nothing carrying a src.
func (r *Readability) isBlank(n *html.Node) bool {
	tag := dom.TagName(n)
	if lexicon.Has(r.lex.SelfClosing, tag) || tag == "td" || tag == "th" {
		return false
	}
	if dom.FindFirst(n, r.lex.SelfClosing...) != nil {
		return false
	}
	if !dom.IsBlankText(dom.Text(n)) {
		return false
	}
	for _, d := range dom.Elements(n) {
		if dom.HasAttr(d, "src") {
			return false
		}
	}
	return true
}

// isIgnored drops trailing widgets, meta blocks and short negative blocks.
// It reports whether n was removed.
func (r *Readability) isIgnored(n *html.Node) bool {
	idents := dom.Identities(n, r.lex.GridTokens)

	if dom.MatchSymbols(idents, r.lex.IgnoredBottom) {
		dom.RemoveFollowingSiblings(n)
		r.remove(n)
		return true
	}
	if dom.MatchSymbols(idents, r.lex.IgnoredMeta) {
		r.remove(n)
		return true
	}
	if dom.MatchSymbols(idents, r.lex.Negative) && dom.PureLen(n) < r.lex.Thresholds.MinNegativeTextLength {
		r.remove(n)
		return true
	}
	return false
}

// tableCodeblock turns a line-number gutter table into a <pre>.
func (r *Readability) tableCodeblock(n *html.Node) {
	marker := r.lex.CodeBlockMarker
	if marker == "" {
		return
	}
	cells := dom.FindAll(n, "td")
	if len(cells) != 2 {
		return
	}
	if !strings.HasPrefix(strippedText(cells[0]), marker) {
		return
	}
	code := cells[1]
	r.rename(code, "pre")
	r.replace(n, code)
}

func (r *Readability) cleanAttributes(n *html.Node) {
	tag := dom.TagName(n)
	if tag == "span" && dom.Attr(n, "class") != "" {
		if dom.HasClass(n, "tag") || dom.IsElement(n.Parent, "pre", "code") {
			return
		}
	}

	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if r.lex.AllowedAttribute(tag, a.Key) {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// strippedText joins the trimmed text nodes of n.
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(strings.TrimSpace(c.Data))
			}
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// plainText is the text of n with placeholder spans left out.
func plainText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				b.WriteString(c.Data)
				b.WriteByte(' ')
			case isPlaceholder(c), dom.IsElement(c, "script", "style"):
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}
