// Package parser runs the extraction pipeline over one document and defines
// the contract site-specific content sources implement.
package parser

import (
	"time"

	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/types"
)

// ContentSource is an extraction strategy for a family of pages. A source
// implements any subset of the capability interfaces below; every
// capability it lacks is served by Fallback.
type ContentSource interface {
	Name() string
}

// Preparer inspects the raw document before structural cleanup. It is the
// place to read data that lives in scripts.
type Preparer interface {
	Prepare(p *Page) error
}

// ContentParser locates the content root.
type ContentParser interface {
	ParseContent(p *Page) (*html.Node, error)
}

// TitleParser resolves the chapter title.
type TitleParser interface {
	ParseTitle(p *Page) string
}

// AuthorParser resolves the author name.
type AuthorParser interface {
	ParseAuthor(p *Page) string
}

// PublisherParser resolves the publisher or site name.
type PublisherParser interface {
	ParsePublisher(p *Page) string
}

// PubdateParser resolves the publication time.
type PubdateParser interface {
	ParsePubdate(p *Page) *time.Time
}

// ImageParser resolves the lead image.
type ImageParser interface {
	ParseImage(p *Page) *types.Image
}

// SummaryParser resolves a short description.
type SummaryParser interface {
	ParseSummary(p *Page) string
}

// LangParser resolves the content language.
type LangParser interface {
	ParseLang(p *Page) string
}

// URLNormalizer canonicalizes the URLs a source handles.
type URLNormalizer interface {
	NormalizeURL(raw string) string
}
