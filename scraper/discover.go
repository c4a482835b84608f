package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"spice-scraper/adapters"
)

// visitedPagesCap bounds the pagination guard; a category deeper than
// this many pages is cut off rather than followed without end.
const visitedPagesCap = 128

// discoverLinks walks the listing and its pagination chain, collecting
// product links until the chain ends or limit is reached. Pagination
// failures stop discovery but never fail the crawl; whatever was found
// up to that point is used.
func (e *Engine) discoverLinks(ctx context.Context, adapter adapters.SiteAdapter, doc *goquery.Document, pageURL string, limit int) []string {
	visited, _ := lru.New[string, struct{}](visitedPagesCap)
	visited.Add(pageURL, struct{}{})

	links := adapter.ProductLinks(doc, pageURL)
	next := adapter.NextPage(doc, pageURL)

	for next != "" && (limit == 0 || len(links) < limit) {
		if visited.Contains(next) {
			e.logger.Debugf("Pagination loops back to %s, stopping discovery", next)
			break
		}
		visited.Add(next, struct{}{})

		if ctx.Err() != nil {
			break
		}

		nextDoc, err := e.fetchPage(ctx, adapter, next, "listing")
		if err != nil {
			e.logger.Warnf("Failed to fetch listing page %s: %v", next, err)
			e.metrics.IncError(err)
			break
		}

		links = append(links, adapter.ProductLinks(nextDoc, next)...)
		next = adapter.NextPage(nextDoc, next)
	}

	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}
	return links
}
