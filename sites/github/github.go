// Package github extracts GitHub issues, pull requests and file views.
package github

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/internal/extractors"
	"github.com/mrjoshuak/getbook/parser"
)

// Host is the domain both sources register for.
const Host = "github.com"

const publisher = "GitHub"

var (
	issuePattern = regexp.MustCompile(`https?://(?:www\.)?github\.com/.*?/(?:issues|pull)/\d+`)
	blobPattern  = regexp.MustCompile(`https?://(?:www\.)?github\.com/.*?/blob/.*`)
)

// IssueSource handles issue and pull request threads. Only the opening post
// is extracted.
type IssueSource struct{}

var (
	_ parser.ContentParser   = IssueSource{}
	_ parser.TitleParser     = IssueSource{}
	_ parser.AuthorParser    = IssueSource{}
	_ parser.PublisherParser = IssueSource{}
	_ parser.PubdateParser   = IssueSource{}
	_ parser.LangParser      = IssueSource{}
	_ parser.URLNormalizer   = IssueSource{}
)

// Name implements parser.ContentSource.
func (IssueSource) Name() string { return "github-issue" }

// MatchIssue reports whether u is an issue or pull request.
func MatchIssue(u *url.URL) bool {
	return issuePattern.MatchString(u.String())
}

// NormalizeURL cuts the address down to the thread itself.
func (IssueSource) NormalizeURL(raw string) string {
	if m := issuePattern.FindString(raw); m != "" {
		return m
	}
	return parser.NormalizeURL(raw)
}

// ParseContent returns the body of the opening comment.
func (IssueSource) ParseContent(p *parser.Page) (*html.Node, error) {
	return first(p, "td.markdown-body", ".js-comment-body"), nil
}

// ParseTitle implements parser.TitleParser.
func (IssueSource) ParseTitle(p *parser.Page) string {
	return text(first(p, ".gh-header-title .js-issue-title", "bdi.js-issue-title"))
}

// ParseAuthor implements parser.AuthorParser.
func (IssueSource) ParseAuthor(p *parser.Page) string {
	return text(first(p, ".gh-header-meta a.author"))
}

// ParsePublisher implements parser.PublisherParser.
func (IssueSource) ParsePublisher(*parser.Page) string { return publisher }

// ParsePubdate implements parser.PubdateParser.
func (IssueSource) ParsePubdate(p *parser.Page) *time.Time {
	n := first(p, ".gh-header-meta [datetime]")
	if n == nil {
		return nil
	}
	return extractors.ParseDate(dom.Attr(n, "datetime"))
}

// ParseLang leaves the language to the title script.
func (IssueSource) ParseLang(*parser.Page) string { return "" }

// BlobSource handles rendered files, typically READMEs and docs.
type BlobSource struct{}

var (
	_ parser.ContentParser   = BlobSource{}
	_ parser.TitleParser     = BlobSource{}
	_ parser.AuthorParser    = BlobSource{}
	_ parser.PublisherParser = BlobSource{}
	_ parser.LangParser      = BlobSource{}
	_ parser.URLNormalizer   = BlobSource{}
)

// Name implements parser.ContentSource.
func (BlobSource) Name() string { return "github-blob" }

// MatchBlob reports whether u is a file view.
func MatchBlob(u *url.URL) bool {
	return blobPattern.MatchString(u.String())
}

// NormalizeURL drops the query and fragment of a file view.
func (BlobSource) NormalizeURL(raw string) string {
	m := blobPattern.FindString(raw)
	if m == "" {
		return parser.NormalizeURL(raw)
	}
	m, _, _ = strings.Cut(m, "?")
	m, _, _ = strings.Cut(m, "#")
	return m
}

// ParseContent returns the rendered file.
func (BlobSource) ParseContent(p *parser.Page) (*html.Node, error) {
	return first(p, `article[itemprop="text"]`), nil
}

// ParseTitle takes a leading heading of the file, or the breadcrumb path.
func (BlobSource) ParseTitle(p *parser.Page) string {
	if p.Content != nil {
		if h := dom.FirstElementChild(p.Content); dom.IsElement(h, "h1", "h2", "h3") {
			title := dom.Text(h)
			dom.Remove(h)
			return title
		}
	}
	return text(first(p, "div.breadcrumb"))
}

// ParseAuthor implements parser.AuthorParser.
func (BlobSource) ParseAuthor(p *parser.Page) string {
	return text(first(p, `span[itemprop="author"]`))
}

// ParsePublisher implements parser.PublisherParser.
func (BlobSource) ParsePublisher(*parser.Page) string { return publisher }

// ParseLang leaves the language to the title script.
func (BlobSource) ParseLang(*parser.Page) string { return "" }

// Register adds both sources to reg.
func Register(reg *parser.Registry) {
	reg.Register(Host, MatchIssue, IssueSource{})
	reg.Register(Host, MatchBlob, BlobSource{})
}

func first(p *parser.Page, selectors ...string) *html.Node {
	if nodes := p.Select(selectors...); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(dom.Text(n))
}
