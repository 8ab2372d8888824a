package parser

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/types"
)

var para = "<p>" + strings.Repeat("word", 25) + "</p>"

const blogHead = `<html lang="en"><head>
	<title>Hello World - Example Blog</title>
	<meta property="og:site_name" content="Example Blog">
	<meta name="description" content="A description.">
	<meta property="article:published_time" content="2019-05-06T07:08:09Z">
	<link rel="canonical" href="https://example.com/posts/hello">
</head>`

func blogPage(body string) string {
	return blogHead + `<body><div id="wrap">` +
		`<h1><a href="/posts/hello">Hello World</a></h1>` +
		`<span class="author">By Jane Doe</span>` +
		`<div class="post-body">` + body + `</div>` +
		`</div><script>var tracking = 1;</script></body></html>`
}

func parseDoc(t *testing.T, page string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	return doc
}

func parse(t *testing.T, source ContentSource, pageURL, page string) (*types.Chapter, error) {
	t.Helper()
	return New(source).Parse(context.Background(), pageURL, strings.NewReader(page))
}

func TestParseBlogPost(t *testing.T) {
	body := para + para + `<p>` + strings.Repeat("word", 25) + ` <a href="/other">more</a></p>` +
		`<img src="/img/a.png" width="10">`

	ch, err := parse(t, nil, "http://example.com/posts/hello?utm_source=x", blogPage(body))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/posts/hello", ch.URL)
	assert.Equal(t, "Hello World", ch.Title)
	assert.Equal(t, "Jane Doe", ch.Author)
	assert.Equal(t, "Example Blog", ch.Publisher)
	assert.Equal(t, "A description.", ch.Summary)
	assert.Equal(t, "en", ch.Lang)
	require.NotNil(t, ch.Pubdate)
	assert.Equal(t, 2019, ch.Pubdate.Year())

	assert.Contains(t, ch.Content, `<a href="https://example.com/other">more</a>`)
	assert.NotContains(t, ch.Content, "tracking")
	assert.NotContains(t, ch.Content, "Jane Doe")

	require.Len(t, ch.Attachments["img"], 1)
	assert.Equal(t, "https://example.com/img/a.png", ch.Attachments["img"][0].Src())
	assert.Equal(t, 1, strings.Count(ch.Content, `class="tag tag-img"`))
}

func TestParseSummaryFallsBackToContent(t *testing.T) {
	page := `<html><head><title>Plain</title></head><body><div class="post-body">` +
		para + para + para + `</div></body></html>`

	ch, err := parse(t, nil, "https://example.com/plain", page)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/plain", ch.URL)
	assert.Equal(t, 120, utf8.RuneCountInString(ch.Summary))
	assert.True(t, strings.HasPrefix(ch.Summary, "wordword"))
	assert.Equal(t, "Plain", ch.Title)
	assert.Equal(t, "en", ch.Lang)
}

func TestParseGistEmbed(t *testing.T) {
	body := para + para + para + `<script src="https://gist.github.com/user/abc123.js"></script>`

	ch, err := parse(t, nil, "https://example.com/posts/hello", blogPage(body))
	require.NoError(t, err)

	require.Len(t, ch.Attachments["gist"], 1)
	assert.Equal(t, "https://gist.github.com/user/abc123", ch.Attachments["gist"][0].Src())
	assert.Contains(t, ch.Content, `data-attachment="gist"`)
}

func TestParseEntryContentShortcut(t *testing.T) {
	page := `<html><head><title>Short</title></head><body><div class="hentry">` +
		`<h2 class="entry-title">Entry Heading</h2>` +
		`<div class="entry-content"><p>only a little text</p></div></div></body></html>`

	ch, err := parse(t, nil, "https://example.com/e", page)
	require.NoError(t, err)

	assert.Equal(t, "<p>only a little text</p>", ch.Content)
	assert.Equal(t, "only a little text", ch.Summary)
}

func TestParseNoContent(t *testing.T) {
	_, err := parse(t, nil, "https://example.com/x", `<html><body><p>tiny</p></body></html>`)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoContent)
}

func TestParseNilBody(t *testing.T) {
	_, err := New(nil).Parse(context.Background(), "https://example.com", nil)

	assert.ErrorIs(t, err, types.ErrNoDocument)
}

func TestParseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Parse(ctx, "https://example.com/posts/hello", strings.NewReader(blogPage(para+para+para)))

	assert.ErrorIs(t, err, context.Canceled)
}

// titleOnly overrides title and language; everything else falls back.
type titleOnly struct{ title string }

func (titleOnly) Name() string                { return "title-only" }
func (s titleOnly) ParseTitle(*Page) string   { return "  " + s.title + "  " }
func (titleOnly) ParseLang(*Page) string      { return "" }
func (titleOnly) ParsePublisher(*Page) string { return "Custom" }

func TestParseDispatchesCapabilities(t *testing.T) {
	ch, err := parse(t, titleOnly{title: "中文标题"}, "https://example.com/posts/hello", blogPage(para+para+para))
	require.NoError(t, err)

	assert.Equal(t, "中文标题", ch.Title)
	assert.Equal(t, "zh", ch.Lang, "language falls back to the title script")
	assert.Equal(t, "Custom", ch.Publisher)
	assert.Equal(t, "Jane Doe", ch.Author)
}

type emptyContent struct{}

func (emptyContent) Name() string                           { return "empty" }
func (emptyContent) ParseContent(*Page) (*html.Node, error) { return nil, nil }

func TestParseAdapterWithoutContent(t *testing.T) {
	_, err := parse(t, emptyContent{}, "https://example.com/posts/hello", blogPage(para+para+para))

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoContent)
	assert.True(t, types.IsExtractionError(err))
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com/a", "http://example.com/a"},
		{" https://example.com/a#frag ", "https://example.com/a"},
		{"https://example.com/a?utm_source=x&utm_medium=y", "https://example.com/a"},
		{"https://example.com/a?id=1&ref=hn&b=2", "https://example.com/a?id=1&b=2"},
		{"https://example.com/a?resource=1&source=x", "https://example.com/a?resource=1"},
		{"https://example.com/a?", "https://example.com/a"},
		{"http://example.com:8080/a?refer=z", "http://example.com:8080/a"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	doc := parseDoc(t, `<html><head><link rel="canonical" href="https://x/c"></head></html>`)
	got, ok := CanonicalURL(doc)
	assert.True(t, ok)
	assert.Equal(t, "https://x/c", got)

	_, ok = CanonicalURL(parseDoc(t, `<html><head><link rel="canonical" href="/relative"></head></html>`))
	assert.False(t, ok)
}

func TestMakeAbsoluteLinks(t *testing.T) {
	doc := parseDoc(t, `<html><body><div id="c">`+
		`<a href="rel/page">r</a><a href="#top">f</a><a href="//cdn/x">p</a>`+
		`<img src="../i.png"></div></body></html>`)
	content := doc.Find("#c").Get(0)

	makeAbsoluteLinks(content, "https://example.com/a/b")

	out := doc.Find("#c")
	hrefs := out.Find("a").Map(func(_ int, s *goquery.Selection) string {
		v, _ := s.Attr("href")
		return v
	})
	assert.Equal(t, []string{"https://example.com/a/rel/page", "#top", "//cdn/x"}, hrefs)
	src, _ := out.Find("img").Attr("src")
	assert.Equal(t, "https://example.com/i.png", src)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	issues := titleOnly{title: "issue"}
	reg.Register("www.Example.com", func(u *url.URL) bool {
		return strings.Contains(u.Path, "/issues/")
	}, issues)

	assert.Equal(t, issues, reg.Lookup("https://example.com/a/issues/1"))
	assert.Equal(t, issues, reg.Lookup("http://www.example.com/a/issues/2"))
	assert.IsType(t, Fallback{}, reg.Lookup("https://example.com/a/wiki"))
	assert.IsType(t, Fallback{}, reg.Lookup("https://other.org/a/issues/1"))

	var none *Registry
	assert.IsType(t, Fallback{}, none.Lookup("https://example.com"))

	assert.Equal(t, "https://example.com/a/wiki", reg.NormalizeURL("https://example.com/a/wiki?utm_campaign=z#x"))
	assert.Equal(t, map[string][]string{"example.com": {"title-only"}}, reg.Sources())
}
