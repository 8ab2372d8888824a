package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/internal/extractors"
	"github.com/mrjoshuak/getbook/internal/readability"
	"github.com/mrjoshuak/getbook/lexicon"
)

// Page is the per-document state shared by the pipeline stages.
type Page struct {
	// URL is the canonical address of the page; links resolve against it.
	URL     string
	Doc     *dom.Document
	Lexicon *lexicon.Lexicon
	Log     zerolog.Logger

	// Schema is the page's JSON-LD article, if it has exactly one.
	Schema *extractors.Schema
	// Content is the selected content root once ParseContent has run.
	Content *html.Node

	rd     *readability.Readability
	title  *string
	values map[any]any
}

// NewPage wraps a parsed document. A nil lexicon means the defaults.
func NewPage(doc *dom.Document, pageURL string, lex *lexicon.Lexicon, logger zerolog.Logger) *Page {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Page{
		URL:     pageURL,
		Doc:     doc,
		Lexicon: lex,
		Log:     logger,
		rd:      readability.New(doc, lex, logger),
	}
}

// Root returns the document node.
func (p *Page) Root() *html.Node {
	return p.Doc.Root()
}

// Readability returns the structural passes bound to this page.
func (p *Page) Readability() *readability.Readability {
	return p.rd
}

// Select runs CSS selectors in order and returns every match, selector by
// selector, each in document order.
func (p *Page) Select(selectors ...string) []*html.Node {
	var out []*html.Node
	for _, sel := range selectors {
		p.Doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			out = append(out, s.Nodes...)
		})
	}
	return out
}

// Resolve makes ref absolute against the page URL.
func (p *Page) Resolve(ref string) string {
	if p.URL == "" {
		return ref
	}
	return extractors.ResolveURL(p.URL, ref)
}

// NewAttachment builds a placeholder span for an embed the pipeline cannot
// keep inline, recorded later as an attachment of the given kind.
func (p *Page) NewAttachment(kind, src string, attrs ...html.Attribute) *html.Node {
	attrs = append([]html.Attribute{
		{Key: "data-attachment", Val: kind},
		{Key: "data-src", Val: src},
	}, attrs...)
	return readability.NewPlaceholder(kind, attrs...)
}

// SetValue keeps source state for the lifetime of the page.
func (p *Page) SetValue(key, val any) {
	if p.values == nil {
		p.values = make(map[any]any)
	}
	p.values[key] = val
}

// Value returns state stored with SetValue, or nil.
func (p *Page) Value(key any) any {
	return p.values[key]
}

// DocTitle returns the text of <title>, and whether the element exists.
func (p *Page) DocTitle() (string, bool) {
	n := p.Doc.Find("title").Get(0)
	if n == nil {
		return "", false
	}
	return strings.TrimSpace(dom.Text(n)), true
}
