package readability

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/lexicon"
)

// maxPrecleanPasses bounds the fixpoint loop in Preclean.
const maxPrecleanPasses = 8

var (
	headingTag  = regexp.MustCompile(`^h\d$`)
	displayNone = regexp.MustCompile(`display:\s*none`)
)

// Preclean removes navigation chrome, trailing related-content blocks and
// noise below root. Each sweep visits elements in document order; sweeps
// repeat until one makes no change, so a second call is a no-op.
func (r *Readability) Preclean(root *html.Node) {
	for pass := 1; ; pass++ {
		r.changed = false
		for _, n := range dom.Elements(root) {
			if !dom.Attached(n, root) || isPlaceholder(n) {
				continue
			}
			r.precleanNode(n)
		}
		if !r.changed {
			return
		}
		if pass == maxPrecleanPasses {
			r.log.Warn().Int("passes", pass).Msg("preclean did not settle")
			return
		}
	}
}

func (r *Readability) precleanNode(n *html.Node) {
	if r.cleanIgnored(n) {
		return
	}

	tag := dom.TagName(n)
	switch {
	case lexicon.Has(r.lex.BlockTags, tag):
		r.cleanBlock(n)
	case lexicon.Has(r.lex.MediaTags, tag):
		r.cleanMedia(n)
	case tag == "picture":
		r.cleanPicture(n)
	case tag == "a":
		r.cleanLink(n)
	case tag == "img":
		r.cleanImage(n)
	case tag == "span":
		r.cleanSpan(n)
	case tag == "wbr":
		r.unwrap(n)
	}
}

// cleanIgnored applies the related-content and symbol lexicon rules.
// It reports whether n was removed.
func (r *Readability) cleanIgnored(n *html.Node) bool {
	tag := dom.TagName(n)
	if tag == "p" || tag == "div" || tag == "ul" || tag == "ol" || headingTag.MatchString(tag) {
		if r.isRelatedAfter(n) {
			r.remove(n)
			return true
		}
	}

	idents := dom.Identities(n, r.lex.GridTokens)
	if len(idents) > r.lex.Thresholds.MaxIdentities {
		return false
	}

	for _, key := range idents {
		if containsAny(key, r.lex.ForceKeep) {
			return false
		}
		if containsAny(key, r.lex.Ignored) ||
			hasPrefixAny(key, r.lex.IgnoredPrefix) ||
			hasSuffixAny(key, r.lex.IgnoredSuffix) ||
			containsAny(key, r.lex.IgnoredInContent) {
			r.remove(n)
			return true
		}
	}

	if dom.NonLinkPureLen(n) > r.lex.Thresholds.MinNegativeTextLength {
		return false
	}

	if dom.MatchSymbols(idents, r.lex.Negative) {
		r.remove(n)
		return true
	}
	return false
}

// isRelatedAfter matches short "related articles" style headers by their
// own text.
func (r *Readability) isRelatedAfter(n *html.Node) bool {
	text := strings.ToLower(dom.Pure(dom.OwnText(n)))
	length := utf8.RuneCountInString(text)
	if length == 0 || length > r.lex.Thresholds.MaxRelatedLength {
		return false
	}

	for _, phrase := range r.lex.RelatedPhrases {
		phrase = strings.ToLower(phrase)
		if phrase != "" && strings.Contains(text, phrase) {
			return float64(length)/float64(utf8.RuneCountInString(phrase)) < r.lex.Thresholds.RelatedRatio
		}
	}
	return false
}

func (r *Readability) cleanBlock(n *html.Node) {
	if displayNone.MatchString(dom.Attr(n, "style")) {
		r.remove(n)
		return
	}

	if dom.MatchSymbols(dom.Identities(n, r.lex.GridTokens), []string{"title"}) {
		return
	}

	links := dom.FindAll(n, "a")
	linkLen := 0
	for _, a := range links {
		linkLen += dom.PureLen(a)
	}
	textLen := dom.PureLen(n)
	minPara := r.lex.Thresholds.MinParagraphLength

	if media := dom.FindAll(n, r.lex.MediaTags...); len(media) > 0 {
		if dom.TagName(n) == "table" && textLen == 0 && len(media) == 1 {
			r.replace(n, media[0])
		}
		if textLen-linkLen > minPara*len(media) {
			return
		}
		for _, m := range media {
			r.loadLazySrc(m)
		}
		return
	}

	if len(links) < 2 {
		return
	}
	if textLen-linkLen > minPara {
		return
	}
	if dom.FindFirst(n, "h1", "h2") != nil {
		return
	}

	// link farm; lists go too, identified or not
	r.remove(n)
}

func (r *Readability) cleanMedia(n *html.Node) {
	src := mediaSrc(n)
	if src == "" {
		r.remove(n)
		return
	}
	if containsAny(src, r.lex.PositiveSources) {
		return
	}
	r.remove(n)
}

// mediaSrc returns the address a media element plays, looking at nested
// <source> children when the element has none.
func mediaSrc(n *html.Node) string {
	if src := dom.Attr(n, "src"); src != "" {
		return src
	}
	if dom.IsElement(n, "object") {
		if data := dom.Attr(n, "data"); data != "" {
			return data
		}
	}
	for _, s := range dom.FindAll(n, "source") {
		if src := dom.Attr(s, "src"); src != "" {
			return src
		}
	}
	return ""
}

func (r *Readability) cleanPicture(n *html.Node) {
	img := dom.FindFirst(n, "img")
	if img == nil {
		return
	}
	r.cleanImage(img)
	if dom.Attached(img, n) {
		r.replace(n, img)
	} else {
		r.remove(n)
	}
}

func (r *Readability) cleanLink(n *html.Node) {
	href := dom.Attr(n, "href")
	if containsAny(href, r.lex.NegativeSources) {
		r.remove(n)
		return
	}
	if isDeadHref(href) {
		r.rename(n, "span")
		r.removeAttr(n, "href")
	}
}

func isDeadHref(href string) bool {
	href = strings.TrimSpace(href)
	return href == "#" || strings.HasPrefix(strings.ToLower(href), "javascript:")
}

func (r *Readability) cleanImage(n *html.Node) {
	r.loadLazySrc(n)
	src := dom.Attr(n, "src")
	if src == "" {
		if fields := strings.Fields(dom.Attr(n, "srcset")); len(fields) > 0 {
			src = strings.TrimSuffix(fields[0], ",")
			r.setAttr(n, "src", src)
		}
	}
	if src == "" || strings.HasPrefix(src, "data:") {
		r.remove(n)
	}
}

func (r *Readability) cleanSpan(n *html.Node) {
	for _, c := range dom.Identities(n, r.lex.GridTokens) {
		if strings.Contains(c, "-") {
			return
		}
		if utf8.RuneCountInString(c) > r.lex.Thresholds.MaxClassLength {
			r.remove(n)
			return
		}
	}
}

func (r *Readability) loadLazySrc(n *html.Node) {
	src := r.lazySrc(n)
	if src == "" && n.Parent != nil {
		src = r.lazySrc(n.Parent)
	}
	if src != "" {
		r.setAttr(n, "src", src)
	}
}

func (r *Readability) lazySrc(n *html.Node) string {
	for _, key := range r.lex.LazySrcAttrs {
		if src := dom.Attr(n, key); src != "" {
			return src
		}
	}
	return ""
}

func containsAny(s string, symbols []string) bool {
	for _, sym := range symbols {
		if sym != "" && strings.Contains(s, sym) {
			return true
		}
	}
	return false
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasSuffixAny(s string, suffixes []string) bool {
	for _, p := range suffixes {
		if p != "" && strings.HasSuffix(s, p) {
			return true
		}
	}
	return false
}
