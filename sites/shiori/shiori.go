// Package shiori adapts go-shiori/go-readability, a port of Mozilla's
// Readability.js, into a content source. It is an alternate engine for
// pages the scoring heuristics handle poorly.
package shiori

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mrjoshuak/getbook/internal/extractors"
	"github.com/mrjoshuak/getbook/parser"
	"github.com/mrjoshuak/getbook/types"
)

type articleKey struct{}

// Source extracts with Readability.js rules. Metadata the article lacks is
// resolved by parser.Fallback.
type Source struct {
	fallback parser.Fallback
}

var (
	_ parser.ContentParser   = Source{}
	_ parser.TitleParser     = Source{}
	_ parser.AuthorParser    = Source{}
	_ parser.PublisherParser = Source{}
	_ parser.PubdateParser   = Source{}
	_ parser.ImageParser     = Source{}
	_ parser.SummaryParser   = Source{}
	_ parser.LangParser      = Source{}
)

// New returns the source.
func New() Source {
	return Source{}
}

// Name implements parser.ContentSource.
func (Source) Name() string { return "readability" }

// ParseContent renders the page and runs Readability.js over it. The article
// is detached from the page document; it is wrapped in a div so it
// serializes without the wrapper.
func (s Source) ParseContent(p *parser.Page) (*html.Node, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, p.Root()); err != nil {
		return nil, types.WrapParseError(err, "ParseContent", "failed to render page")
	}

	pageURL := &url.URL{}
	if p.URL != "" {
		u, err := url.Parse(p.URL)
		if err != nil {
			return nil, types.WrapParseError(err, "ParseContent", "invalid page URL")
		}
		pageURL = u
	}

	article, err := readability.FromReader(&buf, pageURL)
	if err != nil {
		return nil, types.WrapExtractionError(types.ErrNoContent, "ParseContent", err.Error())
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, nil
	}
	p.SetValue(articleKey{}, &article)

	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(article.Content), container)
	if err != nil {
		return nil, types.WrapParseError(err, "ParseContent", "failed to parse article")
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	p.Log.Debug().Int("length", article.Length).Msg("readability article")
	return container, nil
}

func article(p *parser.Page) *readability.Article {
	a, _ := p.Value(articleKey{}).(*readability.Article)
	if a == nil {
		return &readability.Article{}
	}
	return a
}

// ParseTitle implements parser.TitleParser.
func (s Source) ParseTitle(p *parser.Page) string {
	if title := strings.TrimSpace(article(p).Title); title != "" {
		return title
	}
	return s.fallback.ParseTitle(p)
}

// ParseAuthor implements parser.AuthorParser.
func (s Source) ParseAuthor(p *parser.Page) string {
	if byline := strings.TrimSpace(article(p).Byline); byline != "" {
		return byline
	}
	return s.fallback.ParseAuthor(p)
}

// ParsePublisher implements parser.PublisherParser.
func (s Source) ParsePublisher(p *parser.Page) string {
	if site := strings.TrimSpace(article(p).SiteName); site != "" {
		return site
	}
	return s.fallback.ParsePublisher(p)
}

// ParsePubdate implements parser.PubdateParser.
func (s Source) ParsePubdate(p *parser.Page) *time.Time {
	if t := article(p).PublishedTime; t != nil && !t.IsZero() {
		utc := t.UTC()
		return &utc
	}
	return s.fallback.ParsePubdate(p)
}

// ParseImage implements parser.ImageParser.
func (s Source) ParseImage(p *parser.Page) *types.Image {
	if src := article(p).Image; strings.HasPrefix(src, "http") {
		return &types.Image{Src: src}
	}
	return s.fallback.ParseImage(p)
}

// ParseSummary implements parser.SummaryParser.
func (s Source) ParseSummary(p *parser.Page) string {
	if excerpt := strings.TrimSpace(article(p).Excerpt); excerpt != "" {
		return excerpt
	}
	return s.fallback.ParseSummary(p)
}

// ParseLang prefers the script of the title, then the declared language.
func (s Source) ParseLang(p *parser.Page) string {
	if lang := extractors.LangByText(s.ParseTitle(p)); lang != "" {
		return lang
	}
	if lang := article(p).Language; lang != "" {
		return extractors.BaseLanguage(lang)
	}
	return s.fallback.ParseLang(p)
}
