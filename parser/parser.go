package parser

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/mrjoshuak/getbook/internal/dom"
	"github.com/mrjoshuak/getbook/internal/extractors"
	"github.com/mrjoshuak/getbook/internal/simplifiers"
	"github.com/mrjoshuak/getbook/lexicon"
	"github.com/mrjoshuak/getbook/types"
)

// Option configures a Parser.
type Option func(*Parser)

// WithLexicon replaces the built-in lexicon.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(p *Parser) {
		if lex != nil {
			p.lex = lex
		}
	}
}

// WithLogger sets the logger used for pipeline events.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Parser) {
		p.log = logger
	}
}

// Parser runs the extraction pipeline with one content source. A Parser
// holds no per-document state and may be used from several goroutines.
type Parser struct {
	source   ContentSource
	fallback Fallback
	lex      *lexicon.Lexicon
	log      zerolog.Logger
}

// New creates a Parser. A nil source means Fallback.
func New(source ContentSource, opts ...Option) *Parser {
	if source == nil {
		source = Fallback{}
	}
	p := &Parser{
		source: source,
		lex:    lexicon.Default(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Source returns the content source the parser dispatches to.
func (p *Parser) Source() ContentSource {
	return p.source
}

// Parse reads an HTML document and extracts its chapter. pageURL is used for
// link resolution unless the document declares a canonical link.
func (p *Parser) Parse(ctx context.Context, pageURL string, body io.Reader) (*types.Chapter, error) {
	if body == nil {
		return nil, types.WrapParseError(types.ErrNoDocument, "Parse", "nothing to read")
	}
	doc, err := dom.Parse(body)
	if err != nil {
		return nil, err
	}
	return p.ParseDocument(ctx, pageURL, doc)
}

// ParseDocument extracts the chapter of an already parsed document. The
// document is modified in place and must not be reused.
func (p *Parser) ParseDocument(ctx context.Context, pageURL string, doc *dom.Document) (*types.Chapter, error) {
	if canonical, ok := CanonicalURL(doc); ok {
		pageURL = canonical
	}

	logger := p.log.With().Str("source", p.source.Name()).Str("url", pageURL).Logger()
	page := NewPage(doc, pageURL, p.lex, logger)
	rd := page.Readability()

	if err := p.prepare(page); err != nil {
		return nil, err
	}
	rd.KillTags(page.Root())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := p.parseContent(page)
	if err != nil {
		return nil, err
	}
	page.Content = content

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chapter := &types.Chapter{URL: pageURL}
	chapter.Author = strings.TrimSpace(p.parseAuthor(page))
	chapter.Summary = strings.TrimSpace(p.parseSummary(page))
	chapter.Pubdate = p.parsePubdate(page)
	chapter.Image = p.parseImage(page)

	chapter.Title = strings.TrimSpace(p.parseTitle(page))
	if chapter.Title == "" {
		chapter.Title = Untitled
	}
	page.title = &chapter.Title

	chapter.Lang = p.parseLang(page)
	if chapter.Lang == "" {
		chapter.Lang = extractors.LangByText(chapter.Title)
	}
	if chapter.Lang == "" {
		chapter.Lang = extractors.DefaultLang
	}
	chapter.Publisher = strings.TrimSpace(p.parsePublisher(page))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	makeAbsoluteLinks(content, pageURL)
	final := rd.Finalize(content)
	chapter.Content = final.HTML
	chapter.Attachments = final.Attachments

	if chapter.Summary == "" {
		chapter.Summary = final.Text
	}
	chapter.Summary = simplifiers.Truncate(chapter.Summary, p.lex.Thresholds.SummaryLength)

	logger.Debug().
		Str("title", chapter.Title).
		Str("lang", chapter.Lang).
		Int("attachments", chapter.AttachmentCount()).
		Msg("chapter extracted")

	return chapter, nil
}

func (p *Parser) prepare(page *Page) error {
	// The fallback always reads the structured data; an adapter's preparer
	// runs after it so it can override the result.
	if err := p.fallback.Prepare(page); err != nil {
		return err
	}
	if pr, ok := p.source.(Preparer); ok && !isFallback(p.source) {
		if err := pr.Prepare(page); err != nil {
			return types.WrapParseError(err, "Prepare", p.source.Name())
		}
	}
	return nil
}

func (p *Parser) parseContent(page *Page) (*html.Node, error) {
	cp, ok := p.source.(ContentParser)
	if !ok {
		cp = p.fallback
	}
	content, err := cp.ParseContent(page)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, types.WrapExtractionError(types.ErrNoContent, "ParseContent", p.source.Name())
	}
	return content, nil
}

func (p *Parser) parseTitle(page *Page) string {
	if tp, ok := p.source.(TitleParser); ok {
		return tp.ParseTitle(page)
	}
	return p.fallback.ParseTitle(page)
}

func (p *Parser) parseAuthor(page *Page) string {
	if ap, ok := p.source.(AuthorParser); ok {
		return ap.ParseAuthor(page)
	}
	return p.fallback.ParseAuthor(page)
}

func (p *Parser) parsePublisher(page *Page) string {
	if pp, ok := p.source.(PublisherParser); ok {
		return pp.ParsePublisher(page)
	}
	return p.fallback.ParsePublisher(page)
}

func (p *Parser) parsePubdate(page *Page) *time.Time {
	if pp, ok := p.source.(PubdateParser); ok {
		return pp.ParsePubdate(page)
	}
	return p.fallback.ParsePubdate(page)
}

func (p *Parser) parseImage(page *Page) *types.Image {
	if ip, ok := p.source.(ImageParser); ok {
		return ip.ParseImage(page)
	}
	return p.fallback.ParseImage(page)
}

func (p *Parser) parseSummary(page *Page) string {
	if sp, ok := p.source.(SummaryParser); ok {
		return sp.ParseSummary(page)
	}
	return p.fallback.ParseSummary(page)
}

func (p *Parser) parseLang(page *Page) string {
	if lp, ok := p.source.(LangParser); ok {
		return lp.ParseLang(page)
	}
	return p.fallback.ParseLang(page)
}

func isFallback(src ContentSource) bool {
	_, ok := src.(Fallback)
	return ok
}
