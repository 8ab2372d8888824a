package parser

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/internal/extractors"
)

// trackingParams are query keys dropped by NormalizeURL, besides utm_*.
var trackingParams = []string{"source", "ref", "refer"}

// NormalizeURL canonicalizes a page address: the fragment and tracking
// parameters are dropped, and a missing scheme becomes http.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	u, _, _ = strings.Cut(u, "#")

	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "http://" + u
	}

	base, query, found := strings.Cut(u, "?")
	if !found {
		return u
	}

	var kept []string
	for _, pair := range strings.Split(query, "&") {
		if pair == "" || isTrackingParam(pair) {
			continue
		}
		kept = append(kept, pair)
	}
	if len(kept) == 0 {
		return base
	}
	return base + "?" + strings.Join(kept, "&")
}

func isTrackingParam(pair string) bool {
	key, _, _ := strings.Cut(pair, "=")
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "utm_") {
		return true
	}
	for _, p := range trackingParams {
		if key == p {
			return true
		}
	}
	return false
}

// CanonicalURL returns the page's absolute canonical link, if it declares one.
func CanonicalURL(doc *dom.Document) (string, bool) {
	var href string
	for _, n := range doc.Find("link[rel]").Nodes {
		if !strings.EqualFold(strings.TrimSpace(dom.Attr(n, "rel")), "canonical") {
			continue
		}
		href = strings.TrimSpace(dom.Attr(n, "href"))
		break
	}
	if !strings.HasPrefix(href, "http") {
		return "", false
	}
	return href, true
}

// makeAbsoluteLinks resolves relative anchors and sources in content
// against base. Fragment and protocol-relative links are left alone.
func makeAbsoluteLinks(content *html.Node, base string) {
	if base == "" {
		return
	}
	for _, n := range append([]*html.Node{content}, dom.Elements(content)...) {
		if dom.IsElement(n, "a") {
			href := dom.Attr(n, "href")
			if href != "" && !hasPrefixAny(href, "http", "//", "#") {
				dom.SetAttr(n, "href", extractors.ResolveURL(base, href))
			}
		}
		if src := dom.Attr(n, "src"); src != "" {
			dom.SetAttr(n, "src", extractors.ResolveURL(base, src))
		}
	}
}

func hasPrefixAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
