// Package scraper drives crawls end to end: it discovers product pages
// through a site adapter, parses and normalizes each product, counts
// progress while the crawl runs, and returns whatever was collected
// even when the crawl is cut short.
package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"spice-scraper/adapters"
	"spice-scraper/internal/progress"
	"spice-scraper/internal/types"
	"spice-scraper/normalize"
)

// Engine runs crawls against any supported site dialect. One engine
// serves many requests; crawls run one at a time so the progress
// tracker always describes a single crawl.
type Engine struct {
	config      *types.Config
	logger      types.Logger
	metrics     *Metrics
	tracker     *progress.Tracker
	adapterOpts []adapters.Option

	mu sync.Mutex
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithMetrics attaches Prometheus collectors to the engine.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithAdapterOptions forwards options to every adapter the engine
// builds. Tests use this to inject canned transports and sessions.
func WithAdapterOptions(opts ...adapters.Option) EngineOption {
	return func(e *Engine) {
		e.adapterOpts = append(e.adapterOpts, opts...)
	}
}

// New creates a crawl engine.
func New(config *types.Config, logger types.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		config:  config,
		logger:  logger,
		tracker: progress.NewTracker(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Progress exposes the tracker polled while a crawl runs.
func (e *Engine) Progress() *progress.Tracker {
	return e.tracker
}

// Crawl scrapes target and returns normalized records in discovery
// order. Individual product failures are logged and skipped; when the
// crawl itself is stopped, the records collected so far are returned
// alongside the error that stopped it.
func (e *Engine) Crawl(ctx context.Context, target types.CrawlTarget) ([]types.ProductRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tracker.Begin(0)
	defer e.tracker.Finish()

	adapter, err := adapters.New(target.Dialect, e.config, e.logger, append(e.adapterOpts, adapters.WithProgress(e.tracker))...)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	startTime := time.Now()
	e.logger.Infof("Starting %s crawl of %s", target.Dialect, target.URL)

	e.logger.Info("Step 1: Discovering product pages...")
	doc, err := e.fetchPage(ctx, adapter, target.URL, "listing")
	if err != nil {
		e.metrics.IncError(err)
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	links := e.discoverLinks(ctx, adapter, doc, target.URL, target.MaxProducts)
	if len(links) == 0 {
		e.logger.Debugf("No product links on %s, parsing it in place", target.URL)
		return e.scrapeInPlace(ctx, adapter, doc, target.URL, target.MaxProducts)
	}

	e.logger.Infof("Found %d product pages", len(links))
	e.tracker.Begin(len(links))

	e.logger.Info("Step 2: Scraping products...")
	var records []types.ProductRecord
	processed := 0
	for i, link := range links {
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		default:
		}

		e.logger.Debugf("Processing product %d/%d: %s", i+1, len(links), link)
		recs, err := e.scrapeProduct(ctx, adapter, link)
		if err != nil {
			e.logger.Warnf("Failed to scrape %s: %v", link, err)
			e.metrics.IncError(err)
			e.tracker.Advance()
			continue
		}

		records = append(records, recs...)
		e.metrics.IncProducts()
		e.metrics.AddRecords(len(recs))
		processed++
		e.tracker.Advance()
	}

	e.logger.Infof("Crawl completed in %v", time.Since(startTime))
	e.logger.Infof("Successfully processed %d/%d products, %d records", processed, len(links), len(records))

	return records, nil
}

// scrapeProduct fetches one product page and turns it into records.
func (e *Engine) scrapeProduct(ctx context.Context, adapter adapters.SiteAdapter, productURL string) ([]types.ProductRecord, error) {
	doc, err := e.fetchPage(ctx, adapter, productURL, "product")
	if err != nil {
		return nil, err
	}

	parsed, err := adapter.ParseProducts(ctx, doc, productURL)
	if err != nil {
		return nil, err
	}

	var records []types.ProductRecord
	for _, product := range parsed {
		records = append(records, normalize.Records(product)...)
	}
	return records, nil
}

// scrapeInPlace treats the already fetched page as the product source:
// either a tile listing carrying all product data inline, or a product
// detail URL handed to the crawl directly.
func (e *Engine) scrapeInPlace(ctx context.Context, adapter adapters.SiteAdapter, doc *goquery.Document, pageURL string, limit int) ([]types.ProductRecord, error) {
	// Begin before parsing so variant expansion lands on a live total.
	e.tracker.Begin(1)

	parsed, err := adapter.ParseProducts(ctx, doc, pageURL)
	if err != nil {
		e.logger.Warnf("No products extracted from %s: %v", pageURL, err)
		e.metrics.IncError(err)
		return nil, nil
	}
	if limit > 0 && len(parsed) > limit {
		parsed = parsed[:limit]
	}
	e.tracker.Expand(len(parsed) - 1)

	var records []types.ProductRecord
	for _, product := range parsed {
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		default:
		}

		recs := normalize.Records(product)
		records = append(records, recs...)
		e.metrics.IncProducts()
		e.metrics.AddRecords(len(recs))
		e.tracker.Advance()
	}

	e.logger.Infof("Extracted %d records from %s", len(records), pageURL)
	return records, nil
}

// fetchPage runs one adapter fetch with metrics around it.
func (e *Engine) fetchPage(ctx context.Context, adapter adapters.SiteAdapter, pageURL, phase string) (*goquery.Document, error) {
	start := time.Now()
	doc, err := adapter.FetchPage(ctx, pageURL)
	e.metrics.ObserveFetch(time.Since(start))
	if err != nil {
		return nil, err
	}
	e.metrics.IncPage(phase)
	return doc, nil
}
