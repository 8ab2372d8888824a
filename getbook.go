package getbook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrjoshuak/getbook/fetch"
	"github.com/mrjoshuak/getbook/internal/readability"
	"github.com/mrjoshuak/getbook/lexicon"
	"github.com/mrjoshuak/getbook/parser"
	"github.com/mrjoshuak/getbook/sites"
	"github.com/mrjoshuak/getbook/types"
)

const (
	// DefaultTimeout bounds a single extraction.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBufferSize caps the bytes read from a document.
	DefaultMaxBufferSize = 16 << 20
)

// Extractor turns HTML documents into chapters.
type Extractor interface {
	// Extract parses html as the page at pageURL. An empty html fetches the
	// page first.
	Extract(ctx context.Context, pageURL, html string) (*Chapter, error)

	// ExtractFromReader parses the document read from r.
	ExtractFromReader(ctx context.Context, pageURL string, r io.Reader) (*Chapter, error)

	// Fetch downloads pageURL and parses it.
	Fetch(ctx context.Context, pageURL string) (*Chapter, error)
}

// Option configures an Extractor.
type Option func(*options)

type options struct {
	timeout  time.Duration
	maxBuf   int64
	lex      *lexicon.Lexicon
	log      zerolog.Logger
	registry *parser.Registry
	fetcher  *fetch.Fetcher
}

// WithTimeout bounds the time spent parsing one document. Fetching is bounded
// by the fetcher's own timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithMaxBufferSize caps the bytes read from a document. Larger documents
// fail with ErrDocumentLarge.
func WithMaxBufferSize(n int64) Option {
	return func(o *options) {
		o.maxBuf = n
	}
}

// WithLexicon replaces the built-in tag and pattern tables.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(o *options) {
		o.lex = lex
	}
}

// WithLogger sets the logger for pipeline events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

// WithRegistry replaces the site adapters.
func WithRegistry(reg *parser.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

type chapterExtractor struct {
	options
}

// New creates an Extractor. By default pages are routed through the built-in
// site adapters and everything else uses the scoring heuristics.
//
// Example:
//
//	ext := getbook.New(
//	    getbook.WithTimeout(10*time.Second),
//	    getbook.WithLogger(logger),
//	)
func New(opts ...Option) Extractor {
	o := options{
		timeout: DefaultTimeout,
		maxBuf:  DefaultMaxBufferSize,
		lex:     lexicon.Default(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = sites.NewRegistry()
	}
	if o.fetcher == nil {
		o.fetcher = fetch.New(fetch.WithLogger(o.log))
	}
	return &chapterExtractor{options: o}
}

func (e *chapterExtractor) Extract(ctx context.Context, pageURL, html string) (*Chapter, error) {
	if strings.TrimSpace(html) == "" {
		if pageURL == "" {
			return nil, types.WrapParseError(types.ErrNoDocument, "Extract", "no html and no url")
		}
		return e.Fetch(ctx, pageURL)
	}
	if int64(len(html)) > e.maxBuf {
		return nil, types.WrapParseError(types.ErrDocumentLarge, "Extract", fmt.Sprintf("%d bytes", len(html)))
	}
	return e.extract(ctx, pageURL, html)
}

func (e *chapterExtractor) ExtractFromReader(ctx context.Context, pageURL string, r io.Reader) (*Chapter, error) {
	if r == nil {
		return nil, types.WrapParseError(types.ErrNoDocument, "ExtractFromReader", "nothing to read")
	}
	raw, err := io.ReadAll(io.LimitReader(r, e.maxBuf+1))
	if err != nil {
		return nil, types.WrapParseError(err, "ExtractFromReader", "failed to read document")
	}
	if int64(len(raw)) > e.maxBuf {
		return nil, types.WrapParseError(types.ErrDocumentLarge, "ExtractFromReader", fmt.Sprintf("limit %d bytes", e.maxBuf))
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, types.WrapParseError(types.ErrNoDocument, "ExtractFromReader", "empty document")
	}
	return e.extract(ctx, pageURL, string(raw))
}

func (e *chapterExtractor) Fetch(ctx context.Context, pageURL string) (*Chapter, error) {
	resp, err := e.fetcher.Fetch(ctx, e.registry.NormalizeURL(pageURL))
	if err != nil {
		return nil, err
	}
	return e.extract(ctx, resp.URL, resp.Body)
}

// extract runs the parse in a goroutine so a pathological document cannot
// hold the caller past the timeout.
func (e *chapterExtractor) extract(ctx context.Context, pageURL, html string) (*Chapter, error) {
	if pageURL != "" {
		pageURL = e.registry.NormalizeURL(pageURL)
	}
	source := e.registry.Lookup(pageURL)
	p := parser.New(source, parser.WithLexicon(e.lex), parser.WithLogger(e.log))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		chapter *Chapter
		err     error
	}
	resultCh := make(chan result, 1)

	go func() {
		ch, err := p.Parse(ctx, pageURL, strings.NewReader(html))
		resultCh <- result{ch, err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) {
			return nil, timeoutError(e.timeout)
		}
		return res.chapter, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, timeoutError(e.timeout)
		}
		return nil, ctx.Err()
	}
}

func timeoutError(d time.Duration) error {
	return types.WrapError(types.ErrTimeout, types.TimeoutError, "Extract", fmt.Sprintf("after %v", d))
}

// ReplaceAttachments rewrites every attachment placeholder in content with
// the markup fn returns for it. An empty result keeps the placeholder.
// Placeholders whose record cannot be decoded are left as they are.
func ReplaceAttachments(content string, fn func(Attachment) (string, error)) (string, error) {
	return readability.ReplacePlaceholders(content, fn, zerolog.Nop())
}
