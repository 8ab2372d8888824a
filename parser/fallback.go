package parser

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/internal/extractors"
	"github.com/mrjoshuak/getbook/types"
)

// Untitled is the title of a page that offers nothing better.
const Untitled = "Untitled"

var gistScript = regexp.MustCompile(`https://gist\.github\.com/(?:(?:[^/]+/.+)|\d+)\.js`)

var (
	titleRules = []string{
		`a[rel="bookmark"]`, ".entry-title", ".article-title", ".title",
		".tit", ".Title", ".titName", ".heading", ".headline", "#headline",
		".js-issue-title", "#title",
	}
	headingRules = []string{"h2, h3, h1"}
	authorRules  = []string{
		".hentry .vcard .fn", `[itemprop="author"]`,
		".author .fn", "a[rel=author]", ".entry-author",
		"#author", ".author",
	}
	pubdateRules = []string{
		".updated", `[itemprop="datePublished"]`,
		".created", "time[pubdate]", ".published",
		".time", "#datetime", "time[datetime]", ".pubTime",
	}
	contentRules = []string{".hentry .entry-content"}
)

// Fallback is the generic content source. It serves every page no site
// adapter claims, and every capability an adapter leaves out.
type Fallback struct{}

var (
	_ ContentSource   = Fallback{}
	_ Preparer        = Fallback{}
	_ ContentParser   = Fallback{}
	_ TitleParser     = Fallback{}
	_ AuthorParser    = Fallback{}
	_ PublisherParser = Fallback{}
	_ PubdateParser   = Fallback{}
	_ ImageParser     = Fallback{}
	_ SummaryParser   = Fallback{}
	_ LangParser      = Fallback{}
	_ URLNormalizer   = Fallback{}
)

// Name implements ContentSource.
func (Fallback) Name() string { return "fallback" }

// NormalizeURL implements URLNormalizer.
func (Fallback) NormalizeURL(raw string) string { return NormalizeURL(raw) }

// Prepare reads JSON-LD and turns gist embeds into attachments before their
// scripts are stripped.
func (Fallback) Prepare(p *Page) error {
	p.Schema = extractors.ParseSchema(p.Root())

	for _, script := range dom.FindAll(p.Root(), "script") {
		src := dom.Attr(script, "src")
		if !gistScript.MatchString(src) {
			continue
		}
		dom.Replace(script, p.NewAttachment("gist", strings.TrimSuffix(src, ".js")))
	}
	return nil
}

// ParseContent uses the hAtom entry content when present, and otherwise
// scores the whole document.
func (Fallback) ParseContent(p *Page) (*html.Node, error) {
	rd := p.Readability()
	if entries := p.Select(contentRules...); len(entries) > 0 {
		rd.Preclean(entries[0])
		p.Log.Debug().Msg("content from entry-content")
		return entries[0], nil
	}

	rd.Preclean(p.Root())
	return rd.SelectContent(p.Root())
}

// ParseTitle implements TitleParser. The result is cached on the page, since
// resolving it removes the title element from the tree.
func (f Fallback) ParseTitle(p *Page) string {
	if p.title != nil {
		return *p.title
	}
	title, from := f.resolveTitle(p)
	title = strings.TrimSpace(title)
	p.title = &title
	p.Log.Debug().Str("title", title).Str("from", from).Msg("title resolved")
	return title
}

func (Fallback) resolveTitle(p *Page) (string, string) {
	if p.Content != nil {
		if first := dom.FirstElementChild(p.Content); dom.IsElement(first, "h1") {
			title := dom.Text(first)
			dom.Remove(first)
			return title, "content heading"
		}
	}

	doctitle, _ := p.DocTitle()

	if title := extractors.GuessTitle(p.Select(titleRules...), doctitle, p.URL); title != "" {
		return title, "title selectors"
	}
	if title := extractors.GuessTitle(p.Select(headingRules...), doctitle, p.URL); title != "" {
		return title, "headings"
	}

	if entries := p.Select(".hentry .entry-title"); len(entries) == 1 {
		title := dom.Text(entries[0])
		dom.Remove(entries[0])
		if !dom.IsBlankText(title) {
			return title, "entry title"
		}
	}

	for _, a := range p.Select("h1 a", "h2 a", "h3 a") {
		if a.Parent == nil {
			continue
		}
		if href := dom.Attr(a, "href"); href != "" && extractors.SameLink(href, p.URL) {
			title := dom.Text(a)
			dom.Remove(a)
			if !dom.IsBlankText(title) {
				return title, "heading link"
			}
		}
	}

	if title := p.Schema.Title(); title != "" {
		return title, "json-ld"
	}
	if title := extractors.OGTitle(p.Root()); title != "" {
		return title, "opengraph"
	}
	if !dom.IsBlankText(doctitle) {
		return doctitle, "doctitle"
	}
	return Untitled, "default"
}

// ParseAuthor implements AuthorParser.
func (Fallback) ParseAuthor(p *Page) string {
	if author := p.Schema.AuthorName(); author != "" {
		return author
	}

	for _, n := range p.Select(authorRules...) {
		if n.Parent == nil {
			continue
		}
		if author, ok := extractors.AuthorText(n, p.Lexicon.Thresholds.MaxAuthorLength); ok {
			dom.Remove(n)
			return author
		}
	}

	return extractors.MetaAuthor(p.Root())
}

// ParsePubdate implements PubdateParser.
func (Fallback) ParsePubdate(p *Page) *time.Time {
	if date := p.Schema.Pubdate(); date != nil {
		return date
	}
	if date := extractors.OGPubdate(p.Root()); date != nil {
		return date
	}

	for _, n := range p.Select(pubdateRules...) {
		if n.Parent == nil {
			continue
		}
		if date := extractors.ParseDate(dom.Attr(n, "datetime")); date != nil {
			dom.Remove(n)
			return date
		}
		text := dom.Attr(n, "title")
		if text == "" {
			text = dom.Text(n)
		}
		if date := extractors.ParseDate(text); date != nil {
			dom.Remove(n)
			return date
		}
	}

	return extractors.MetaPubdate(p.Root())
}

// ParseImage implements ImageParser.
func (Fallback) ParseImage(p *Page) *types.Image {
	if img := p.Schema.LeadImage(); img != nil {
		return img
	}
	return extractors.OGImage(p.Root())
}

// ParseSummary implements SummaryParser.
func (Fallback) ParseSummary(p *Page) string {
	return extractors.OGSummary(p.Root())
}

// ParsePublisher implements PublisherParser.
func (Fallback) ParsePublisher(p *Page) string {
	if publisher := p.Schema.PublisherName(); publisher != "" {
		return publisher
	}
	return extractors.OGSiteName(p.Root())
}

// ParseLang implements LangParser: the script of the title first, then the
// declared language.
func (f Fallback) ParseLang(p *Page) string {
	if lang := extractors.LangByText(f.ParseTitle(p)); lang != "" {
		return lang
	}
	if lang := extractors.LangByDocument(p.Root()); lang != "" {
		return lang
	}
	return extractors.DefaultLang
}
