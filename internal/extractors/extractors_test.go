package extractors

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
)

func parse(t *testing.T, page string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	return doc
}

func nodes(doc *dom.Document, selector string) []*html.Node {
	return doc.Find(selector).Nodes
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Headline", "Headline", 1},
		{"one edit", "kitten", "sitten", 1 - 1.0/6},
		{"trims", "  abc ", "abc", 1},
		{"three times longer", "abc", "abcabcabc", 0},
		{"empty", "", "abc", 0},
		{"runes not bytes", "中文标题", "中文标", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSplitDoctitle(t *testing.T) {
	got := SplitDoctitle("Headline – Example Site | Blog")
	assert.Equal(t, []string{"Headline ", " Example Site ", " Blog"}, got)
}

func TestGuessTitleSelfLink(t *testing.T) {
	doc := parse(t, `<html><head><title>Headline – Example Site</title></head>`+
		`<body><h1><a href="https://x/y">Headline</a></h1><p>body</p></body></html>`)

	title := GuessTitle(nodes(doc, "h1"), "Headline – Example Site", "https://x/y")

	assert.Equal(t, "Headline", title)
	assert.Equal(t, 0, doc.Find("h1 a").Length(), "the title anchor is extracted")
}

func TestGuessTitleSelfLinkTrailingSlash(t *testing.T) {
	doc := parse(t, `<html><body><h2><a href="/post/">Post Name</a></h2></body></html>`)

	title := GuessTitle(nodes(doc, "h2"), "Post Name · Site", "https://example.com/post")

	assert.Equal(t, "Post Name", title)
}

func TestGuessTitleImageAlt(t *testing.T) {
	doc := parse(t, `<html><body><h1><a href="https://x/y"><img alt="Logo Title" src="a.png"></a></h1></body></html>`)

	title := GuessTitle(nodes(doc, "h1"), "Logo Title - Site", "https://x/y")

	assert.Equal(t, "Logo Title", title)
}

func TestGuessTitleIgnoresForeignLinks(t *testing.T) {
	doc := parse(t, `<html><body><h1><a href="https://other/z">Headline</a></h1></body></html>`)

	title := GuessTitle(nodes(doc, "h1"), "Headline - Site", "https://x/y")

	assert.Empty(t, title)
	assert.Equal(t, 1, doc.Find("h1").Length())
}

func TestGuessTitleBySimilarity(t *testing.T) {
	doc := parse(t, `<html><body><div>
		<h2>Menu</h2>
		<div><h1>The Real Story Title<span class="sub">a subtitle</span></h1></div>
	</div></body></html>`)

	title := GuessTitle(nodes(doc, "h2, h1"), "The Real Story Title | Example News", "https://x/y")

	assert.Equal(t, "The Real Story Title", title)
	assert.Equal(t, 0, doc.Find("h1").Length())
	assert.Equal(t, 1, doc.Find("h2").Length())
}

func TestGuessTitleIdentityAdmitted(t *testing.T) {
	doc := parse(t, `<html><body><div class="post-title">Completely different words</div></body></html>`)

	title := GuessTitle(nodes(doc, ".post-title"), "Headline - Site", "https://x/y")

	assert.Equal(t, "Completely different words", title)
}

func TestGuessTitleNothingAdmitted(t *testing.T) {
	doc := parse(t, `<html><body><p class="lead">Nothing alike at all here</p></body></html>`)

	assert.Empty(t, GuessTitle(nodes(doc, "p"), "Headline - Site", "https://x/y"))
}

func TestSameLink(t *testing.T) {
	assert.True(t, SameLink("https://x/y", "https://x/y"))
	assert.True(t, SameLink("/y/", "https://x/y"))
	assert.True(t, SameLink("y", "https://x/y"))
	assert.False(t, SameLink("", "https://x/y"))
	assert.False(t, SameLink("/z", "https://x/y"))
}

func TestLangByText(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"你好世界", "zh"},
		{"今日は こんにちは", "ja"},
		{"안녕 하세요", "kr"},
		{"안녕 中文", "kr"},
		{"plain ascii", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, LangByText(tt.text))
		})
	}
}

func TestLangByDocument(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"html lang", `<html lang="en-US"><body>x</body></html>`, "en"},
		{"lowercase region", `<html lang="zh-cn"><body>x</body></html>`, "zh"},
		{"content language", `<html><head><meta http-equiv="Content-Language" content="de, fr"></head><body></body></html>`, "de"},
		{"none", `<html><body>x</body></html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.page)
			assert.Equal(t, tt.want, LangByDocument(doc.Root()))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
		none  bool
	}{
		{name: "rfc3339", value: "2021-03-04T05:06:07+02:00", want: time.Date(2021, 3, 4, 3, 6, 7, 0, time.UTC)},
		{name: "date only", value: "2021-03-04", want: time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)},
		{name: "parenthesized", value: "(2021-03-04)", want: time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)},
		{name: "too short", value: "2021", none: true},
		{name: "garbage", value: "not a date at all", none: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.value)
			if tt.none {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseSchema(t *testing.T) {
	doc := parse(t, `<html><head>
		<script type="application/ld+json">
		<!-- {"@type": "BlogPosting",
		  "headline": "LD Headline",
		  "author": [{"@type": "Person", "name": "Ada"}],
		  "publisher": {"name": "Example Press"},
		  "image": {"url": "https://x/i.jpg", "width": 800, "height": "600"},
		  "datePublished": "2020-01-02T03:04:05Z"} -->
		</script>
		<script type="application/ld+json">{"@type": "Organization", "name": "Org"}</script>
	</head><body></body></html>`)

	s := ParseSchema(doc.Root())
	require.NotNil(t, s)

	assert.Equal(t, "LD Headline", s.Title())
	assert.Equal(t, "Ada", s.AuthorName())
	assert.Equal(t, "Example Press", s.PublisherName())

	img := s.LeadImage()
	require.NotNil(t, img)
	assert.Equal(t, "https://x/i.jpg", img.Src)
	assert.Equal(t, "800", img.Width)
	assert.Equal(t, "600", img.Height)

	date := s.Pubdate()
	require.NotNil(t, date)
	assert.Equal(t, 2020, date.Year())
}

func TestParseSchemaRequiresExactlyOneArticle(t *testing.T) {
	block := `<script type="application/ld+json">{"@type": "Article", "name": "A"}</script>`

	assert.Nil(t, ParseSchema(parse(t, "<html><head>"+block+block+"</head></html>").Root()))
	assert.Nil(t, ParseSchema(parse(t, "<html><head></head></html>").Root()))
	assert.NotNil(t, ParseSchema(parse(t, "<html><head>"+block+"</head></html>").Root()))
}

func TestSchemaStringImageAndAuthor(t *testing.T) {
	doc := parse(t, `<html><head><script type="application/ld+json">
		{"@type": ["NewsArticle"], "name": "N", "author": "Bob", "image": "https://x/a.png"}
	</script></head></html>`)

	s := ParseSchema(doc.Root())
	require.NotNil(t, s)
	assert.Equal(t, "Bob", s.AuthorName())
	assert.Equal(t, "https://x/a.png", s.LeadImage().Src)

	var empty *Schema
	assert.Empty(t, empty.Title())
	assert.Nil(t, empty.LeadImage())
}

func TestParseSchemaGraph(t *testing.T) {
	doc := parse(t, `<html><head><script type="application/ld+json">
		{"@context": "https://schema.org", "@graph": [
		  {"@type": "WebSite", "name": "Site"},
		  {"@type": "Article", "headline": "In Graph", "author": 42, "publisher": {"name": ["odd"]},
		   "image": [1, 2], "datePublished": "2021-03-04"}
		]}
	</script></head></html>`)

	s := ParseSchema(doc.Root())
	require.NotNil(t, s)
	assert.Equal(t, []string{"Article"}, s.Types)
	assert.Equal(t, "In Graph", s.Title())
	assert.Empty(t, s.Author)
	assert.Empty(t, s.Publisher)
	assert.Nil(t, s.Image)
	require.NotNil(t, s.Published)
	assert.Equal(t, 2021, s.Published.Year())
}

func TestParseSchemaTopLevelList(t *testing.T) {
	doc := parse(t, `<html><head><script type="application/ld+json">
		[{"@type": "Organization", "name": "Org"}, {"@type": "BlogPosting", "name": "Listed"}]
	</script></head></html>`)

	s := ParseSchema(doc.Root())
	require.NotNil(t, s)
	assert.Equal(t, "Listed", s.Title())
}

func TestParseSchemaCDATA(t *testing.T) {
	doc := parse(t, `<html><head><script type="application/ld+json">
		//<![CDATA[
		{"@type": "Article", "name": "Wrapped", "author": ["Cy"]}
		//]]>
	</script></head></html>`)

	s := ParseSchema(doc.Root())
	require.NotNil(t, s)
	assert.Equal(t, "Wrapped", s.Title())
	assert.Equal(t, "Cy", s.AuthorName())
}

func TestOpenGraph(t *testing.T) {
	doc := parse(t, `<html><head>
		<meta property="og:title" content=" OG Title ">
		<meta name="description" content="Plain description">
		<meta property="og:site_name" content="Example">
		<meta property="article:published_time" content="2019-05-06T07:08:09Z">
		<meta property="og:image" content="https://x/cover.jpg">
		<meta property="og:image:width" content="1200">
		<meta name="twitter:creator" content="@writer">
	</head><body></body></html>`)
	root := doc.Root()

	assert.Equal(t, "OG Title", OGTitle(root))
	assert.Equal(t, "Plain description", OGSummary(root))
	assert.Equal(t, "Example", OGSiteName(root))
	assert.Equal(t, "writer", MetaAuthor(root))

	date := OGPubdate(root)
	require.NotNil(t, date)
	assert.Equal(t, 2019, date.Year())

	img := OGImage(root)
	require.NotNil(t, img)
	assert.Equal(t, "https://x/cover.jpg", img.Src)
	assert.Equal(t, "1200", img.Width)
	assert.Empty(t, img.Height)
}

func TestOGImageSkipsIcons(t *testing.T) {
	for _, src := range []string{"https://x/logo.png", "/relative.jpg", "https://x/avatar/1.jpg"} {
		doc := parse(t, `<html><head><meta property="og:image" content="`+src+`"></head></html>`)
		assert.Nil(t, OGImage(doc.Root()), src)
	}
}

func TestAuthorText(t *testing.T) {
	tests := []struct {
		page string
		want string
		ok   bool
	}{
		{`<span class="author">By Jane Doe</span>`, "Jane Doe", true},
		{`<span class="author">作者：张三</span>`, "张三", true},
		{`<span class="author"><a href="/u">Jane</a></span>`, "", false},
		{`<span class="author">` + strings.Repeat("x", 60) + `</span>`, "", false},
	}

	for _, tt := range tests {
		doc := parse(t, "<html><body>"+tt.page+"</body></html>")
		got, ok := AuthorText(doc.Find(".author").Get(0), 48)
		assert.Equal(t, tt.ok, ok, tt.page)
		assert.Equal(t, tt.want, got, tt.page)
	}
}
