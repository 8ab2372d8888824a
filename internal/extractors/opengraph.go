package extractors

import (
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/types"
)

// Meta lookups, in priority order. Each expression selects <meta> elements
// whose content attribute carries the value.
var (
	ogTitles = []string{
		"//meta[@property='og:title']",
		"//meta[@name='twitter:title']",
		"//meta[@name='og:title']",
	}
	ogSummaries = []string{
		"//meta[@property='og:description']",
		"//meta[@name='twitter:description']",
		"//meta[@name='og:description']",
		"//meta[@name='description']",
	}
	ogPubdates = []string{
		"//meta[@property='article:published_time']",
		"//meta[@name='article:published_time']",
	}
	ogImages = []string{
		"//meta[@property='og:image']",
		"//meta[@name='twitter:image']",
		"//meta[@property='og:image:src']",
		"//meta[@name='twitter:image:src']",
		"//meta[@name='og:image:src']",
	}
	ogImageWidths = []string{
		"//meta[@property='og:image:width']",
		"//meta[@name='twitter:image:width']",
		"//meta[@name='og:image:width']",
	}
	ogImageHeights = []string{
		"//meta[@property='og:image:height']",
		"//meta[@name='twitter:image:height']",
		"//meta[@name='og:image:height']",
	}
	ogSiteNames = []string{"//meta[@property='og:site_name']"}
	metaAuthors = []string{"//meta[@name='author']"}
	metaCreator = []string{"//meta[@name='twitter:creator']"}
	metaPubdate = []string{"//meta[@name='pubdate']"}
)

// ignoredImages marks icons and avatars that are never a lead image.
var ignoredImages = []string{"apple-touch", "avatar", "logo", "icon"}

// MetaContent returns the content of the first meta element matched by the
// expressions, tried in order. It reports false when none matched.
func MetaContent(root *html.Node, exprs []string) (string, bool) {
	for _, expr := range exprs {
		n, err := htmlquery.Query(root, expr)
		if err != nil || n == nil {
			continue
		}
		return htmlquery.SelectAttr(n, "content"), true
	}
	return "", false
}

func metaValue(root *html.Node, exprs []string) string {
	v, _ := MetaContent(root, exprs)
	return strings.TrimSpace(v)
}

// OGTitle returns the OpenGraph or Twitter card title.
func OGTitle(root *html.Node) string {
	return metaValue(root, ogTitles)
}

// OGSummary returns the page description.
func OGSummary(root *html.Node) string {
	return metaValue(root, ogSummaries)
}

// OGPubdate returns article:published_time in UTC.
func OGPubdate(root *html.Node) *time.Time {
	return ParseDate(metaValue(root, ogPubdates))
}

// OGSiteName returns og:site_name.
func OGSiteName(root *html.Node) string {
	return metaValue(root, ogSiteNames)
}

// MetaPubdate returns <meta name="pubdate"> in UTC.
func MetaPubdate(root *html.Node) *time.Time {
	return ParseDate(metaValue(root, metaPubdate))
}

// MetaAuthor returns <meta name="author">, else the Twitter creator handle
// without its @.
func MetaAuthor(root *html.Node) string {
	if v, ok := MetaContent(root, metaAuthors); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := MetaContent(root, metaCreator); ok {
		return strings.TrimSpace(strings.ReplaceAll(v, "@", ""))
	}
	return ""
}

// OGImage returns the card image when it is an absolute http(s) URL that
// does not look like an icon.
func OGImage(root *html.Node) *types.Image {
	src := metaValue(root, ogImages)
	if !strings.HasPrefix(src, "http") {
		return nil
	}
	for _, key := range ignoredImages {
		if strings.Contains(src, key) {
			return nil
		}
	}
	return &types.Image{
		Src:    src,
		Width:  metaValue(root, ogImageWidths),
		Height: metaValue(root, ogImageHeights),
	}
}
