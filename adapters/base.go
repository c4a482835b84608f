package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"spice-scraper/internal/types"
	"spice-scraper/utils"

	"github.com/PuerkitoBio/goquery"
)

// SiteAdapter encodes one site dialect: how its pages are fetched, how
// product links are found on a listing, and how product detail markup is
// parsed. Each dialect owns its own selector logic; adding a site means
// adding an adapter, never touching shared code.
type SiteAdapter interface {
	// Dialect identifies the site this adapter handles.
	Dialect() types.Dialect

	// FetchPage retrieves and parses one page using the dialect's fetch
	// strategy (plain HTTP or a rendered browser session).
	FetchPage(ctx context.Context, pageURL string) (*goquery.Document, error)

	// ProductLinks returns the product detail URLs found on a listing
	// page, in document order, resolved absolute. An empty result means
	// the page carries no product grid and may itself be a product page.
	ProductLinks(doc *goquery.Document, pageURL string) []string

	// NextPage returns the URL of the following listing page, or "" when
	// the dialect does not paginate or no further page exists.
	NextPage(doc *goquery.Document, pageURL string) string

	// ParseProducts extracts the products described by a fetched page.
	// Listing-style dialects may return several; detail pages return one.
	ParseProducts(ctx context.Context, doc *goquery.Document, pageURL string) ([]types.ParsedProduct, error)

	// Close releases the adapter's network and browser resources.
	Close()
}

// Reporter receives fine-grained progress ticks while a product's
// variants are resolved one browser re-render at a time.
type Reporter interface {
	Expand(n int)
	Advance()
}

// SessionFactory opens a browser session for one page.
type SessionFactory func(ctx context.Context) (utils.Session, error)

// Option customizes adapter construction.
type Option func(*BaseAdapter)

// WithTransport routes static HTTP fetches through rt. Tests use this to
// serve canned listing and product pages.
func WithTransport(rt http.RoundTripper) Option {
	return func(b *BaseAdapter) {
		b.transport = rt
	}
}

// WithSessionFactory replaces the headless browser as the source of page
// sessions.
func WithSessionFactory(factory SessionFactory) Option {
	return func(b *BaseAdapter) {
		b.newSession = factory
	}
}

// WithProgress attaches a progress reporter for variant-level ticks.
func WithProgress(r Reporter) Option {
	return func(b *BaseAdapter) {
		b.progress = r
	}
}

// New builds the adapter for a site dialect.
func New(dialect types.Dialect, config *types.Config, logger types.Logger, opts ...Option) (SiteAdapter, error) {
	switch dialect {
	case types.DialectSafrans:
		return NewSafransAdapter(config, logger, opts...), nil
	case types.DialectGarsvielas:
		return NewGarsvielasAdapter(config, logger, opts...), nil
	case types.DialectCikade:
		return NewCikadeAdapter(config, logger, opts...), nil
	default:
		return nil, fmt.Errorf("no adapter found for dialect: %s", dialect)
	}
}

// BaseAdapter provides the fetch clients and helpers shared by all site
// adapters.
type BaseAdapter struct {
	config        *types.Config
	logger        types.Logger
	transport     http.RoundTripper
	httpClient    *utils.HTTPClient
	browserClient *utils.BrowserClient
	newSession    SessionFactory
	progress      Reporter
}

// NewBaseAdapter creates a base adapter with initialized HTTP and
// browser clients, after applying any options.
func NewBaseAdapter(config *types.Config, logger types.Logger, opts ...Option) *BaseAdapter {
	b := &BaseAdapter{
		config: config,
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}

	var httpOpts []utils.HTTPOption
	if b.transport != nil {
		httpOpts = append(httpOpts, utils.WithTransport(b.transport))
	}
	b.httpClient = utils.NewHTTPClient(config, logger, httpOpts...)

	if b.newSession == nil {
		b.browserClient = utils.NewBrowserClient(config, logger)
		b.newSession = b.browserClient.NewSession
	}

	return b
}

// fetchStatic retrieves a page over plain HTTP and parses it.
func (b *BaseAdapter) fetchStatic(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := b.httpClient.Get(ctx, pageURL)
	if err != nil {
		return nil, classifyFetch(pageURL, err)
	}

	doc, err := b.ParseHTML(string(body))
	if err != nil {
		return nil, &ParseError{Kind: ParseMalformedDOM, URL: pageURL, Err: err}
	}
	return doc, nil
}

// fetchBrowser renders a page in a browser tab, waits for waitSelector,
// and parses the settled DOM. The tab is closed before returning.
func (b *BaseAdapter) fetchBrowser(ctx context.Context, pageURL, waitSelector string) (*goquery.Document, error) {
	session, err := b.newSession(ctx)
	if err != nil {
		return nil, classifyFetch(pageURL, err)
	}
	defer session.Close()

	if err := session.Navigate(pageURL, waitSelector); err != nil {
		return nil, classifyFetch(pageURL, err)
	}

	return b.documentFromSession(session, pageURL)
}

// documentFromSession parses the session's current DOM.
func (b *BaseAdapter) documentFromSession(session utils.Session, pageURL string) (*goquery.Document, error) {
	html, err := session.HTML()
	if err != nil {
		return nil, classifyFetch(pageURL, err)
	}

	doc, err := b.ParseHTML(html)
	if err != nil {
		return nil, &ParseError{Kind: ParseMalformedDOM, URL: pageURL, Err: err}
	}
	return doc, nil
}

// ParseHTML parses HTML content into a goquery document
func (b *BaseAdapter) ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// ExtractText returns the trimmed text of the first element matching
// selector, or "" when nothing matches. Absence is tolerated here;
// callers decide which fields are mandatory.
func (b *BaseAdapter) ExtractText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// ResolveURL makes href absolute against the page it appeared on.
func (b *BaseAdapter) ResolveURL(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func (b *BaseAdapter) reportExpand(n int) {
	if b.progress != nil && n > 0 {
		b.progress.Expand(n)
	}
}

func (b *BaseAdapter) reportAdvance() {
	if b.progress != nil {
		b.progress.Advance()
	}
}

// Config returns the config field of the BaseAdapter
func (b *BaseAdapter) Config() *types.Config {
	return b.config
}

// Close cleans up resources
func (b *BaseAdapter) Close() {
	if b.httpClient != nil {
		b.httpClient.Close()
	}
	if b.browserClient != nil {
		b.browserClient.Close()
	}
}
