// Package fetch downloads pages for extraction: per-domain user agents and
// rate limits, charset decoding, and line ending normalization.
package fetch

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/mrjoshuak/getbook/types"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxBodySize caps the bytes read from a response.
	DefaultMaxBodySize = 10 << 20

	// DefaultUserAgent announces a desktop browser and the common link
	// preview crawlers, which many sites serve full markup to.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_12_2) AppleWebKit/602.3.12" +
		" (KHTML, like Gecko) Version/10.0.2 Safari/602.3.12" +
		" facebookexternalhit/1.1 Facebot Twitterbot/1.0"
)

var metaCharset = regexp.MustCompile(`(?i)<meta[^>]*charset\s*=\s*["']?([\w-]+)`)

// charsetAliases maps declared charsets to the decoder that reads the page
// correctly in practice.
var charsetAliases = map[string]string{
	"gb2312":     "gbk",
	"iso-8859-1": "utf-8",
}

// hostAgents overrides the user agent for hosts that misbehave with a
// browser one.
var hostAgents = map[string]string{
	"t.co": "curl",
}

// Response is a fetched page.
type Response struct {
	// URL is the final address after redirects.
	URL       string
	Body      string
	Charset   string
	UserAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithClient replaces the HTTP client. Its timeout is left untouched.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithRateLimit allows rps requests per second to each host.
func WithRateLimit(rps float64, burst int) Option {
	return func(f *Fetcher) {
		f.rps = rps
		f.burst = max(burst, 1)
	}
}

// WithMaxBodySize caps the bytes read from a response.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBody = n
	}
}

// WithUserAgent replaces the default user agent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithLogger sets the logger for request events.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.log = logger
	}
}

// Fetcher retrieves pages over HTTP. It is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBody   int64
	userAgent string
	rps       float64
	burst     int
	log       zerolog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultTimeout,
		maxBody:   DefaultMaxBodySize,
		userAgent: DefaultUserAgent,
		log:       zerolog.Nop(),
		limiters:  make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

// UserAgent returns the user agent sent to rawURL.
func (f *Fetcher) UserAgent(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ua, ok := hostAgents[strings.ToLower(u.Hostname())]; ok {
			return ua
		}
	}
	return f.userAgent
}

// Fetch downloads rawURL and decodes it to UTF-8 text. A failed request, a
// non-200 status and an empty body are reported as *types.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	if err := f.wait(ctx, u.Hostname()); err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	ua := f.UserAgent(rawURL)
	req.Header.Set("User-Agent", ua)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	f.log.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("fetched")

	if resp.StatusCode != http.StatusOK {
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(raw)) > f.maxBody {
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: types.ErrDocumentLarge}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, name, err := Decode(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	return &Response{
		URL:       resp.Request.URL.String(),
		Body:      body,
		Charset:   name,
		UserAgent: ua,
	}, nil
}

func (f *Fetcher) wait(ctx context.Context, host string) error {
	if f.rps <= 0 {
		return nil
	}
	host = strings.ToLower(host)

	f.mu.Lock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(f.rps), f.burst)
		f.limiters[host] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}

// Decode converts raw to UTF-8 using the charset declared in the
// Content-Type header or a meta tag, falling back to sniffing. Line endings
// are normalized to LF. It returns the text and the charset used.
func Decode(raw []byte, contentType string) (string, string, error) {
	label := declaredCharset(raw, contentType)
	if alias, ok := charsetAliases[label]; ok {
		label = alias
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		enc, name, _ = charset.DetermineEncoding(raw, contentType)
	}

	text, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", name, types.WrapFetchError(err, "Decode", "failed to decode "+name)
	}
	return normalizeNewlines(string(text)), name, nil
}

func declaredCharset(raw []byte, contentType string) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if cs := params["charset"]; cs != "" {
			return strings.ToLower(strings.TrimSpace(cs))
		}
	}
	head := raw
	if len(head) > 4096 {
		head = head[:4096]
	}
	if m := metaCharset.FindSubmatch(head); m != nil {
		return strings.ToLower(string(m[1]))
	}
	return ""
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
