package extractors

import (
	"strings"
	"unicode"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/text/language"
)

// DefaultLang is used when neither text nor markup names a language.
const DefaultLang = "en"

// LangByText detects Japanese, Korean and Chinese from the scripts present
// in text. Kana wins over Hangul, Hangul over Han. It returns "" for text
// in none of them.
func LangByText(text string) string {
	var hangul, han bool
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			return "ja"
		case unicode.Is(unicode.Hangul, r):
			hangul = true
		case unicode.Is(unicode.Han, r):
			han = true
		}
	}
	switch {
	case hangul:
		return "kr"
	case han:
		return "zh"
	}
	return ""
}

// LangByDocument reads the declared language from <html lang>, then
// xml:lang, then a Content-Language http-equiv meta. It returns the base
// language subtag, or "".
func LangByDocument(root *html.Node) string {
	node := htmlquery.FindOne(root, "//html")
	if node == nil {
		return ""
	}

	lang := htmlquery.SelectAttr(node, "lang")
	if lang == "" {
		lang = htmlquery.SelectAttr(node, "xml:lang")
	}
	if lang != "" {
		return BaseLanguage(lang)
	}

	for _, meta := range htmlquery.Find(node, "//meta[@http-equiv]") {
		if !strings.EqualFold(htmlquery.SelectAttr(meta, "http-equiv"), "content-language") {
			continue
		}
		content := htmlquery.SelectAttr(meta, "content")
		if content == "" {
			return ""
		}
		return BaseLanguage(content)
	}
	return ""
}

// BaseLanguage reduces a language tag or list ("de, fr", "en-US") to the
// base subtag of its first entry.
func BaseLanguage(tag string) string {
	tag = strings.TrimSpace(strings.Split(tag, ",")[0])
	if tag == "" {
		return ""
	}
	if t, err := language.Parse(tag); err == nil {
		if base, conf := t.Base(); conf != language.No {
			return base.String()
		}
	}
	return strings.ToLower(strings.Split(tag, "-")[0])
}
