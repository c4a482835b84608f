package adapters

import (
	"context"
	"regexp"
	"strings"

	"spice-scraper/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// safransCategoryPath marks catalogue URLs. Category pages and product
// pages share this prefix; products sit at least one segment deeper.
const safransCategoryPath = "/garsvielas_/garsvielas_un_garsaugi/"

// safransDefaultWeight is assumed when a product page offers no weight
// control at all; loose spices on the site are priced per kilogram.
const safransDefaultWeight = "1 kg"

var safransPriceRe = regexp.MustCompile(`\d+[.,]\d+\s*€`)

// SafransAdapter handles extraction for safrans.lv. The catalogue is
// rendered server-side, so plain HTTP is enough.
type SafransAdapter struct {
	*BaseAdapter
}

// NewSafransAdapter creates a new Safrans adapter
func NewSafransAdapter(config *types.Config, logger types.Logger, opts ...Option) *SafransAdapter {
	return &SafransAdapter{
		BaseAdapter: NewBaseAdapter(config, logger, opts...),
	}
}

// Dialect returns the site this adapter handles
func (s *SafransAdapter) Dialect() types.Dialect {
	return types.DialectSafrans
}

// FetchPage retrieves a page over plain HTTP
func (s *SafransAdapter) FetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	return s.fetchStatic(ctx, pageURL)
}

// ProductLinks collects catalogue anchors in document order, separating
// products from category links by path depth.
func (s *SafransAdapter) ProductLinks(doc *goquery.Document, pageURL string) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, safransCategoryPath) {
			return
		}
		abs := s.ResolveURL(pageURL, href)
		if abs == "" {
			return
		}
		if strings.Count(strings.TrimSuffix(abs, "/"), "/") < 5 {
			return
		}
		links = append(links, abs)
	})
	return links
}

// NextPage always returns ""; a category lists all its products on one
// page.
func (s *SafransAdapter) NextPage(doc *goquery.Document, pageURL string) string {
	return ""
}

// ParseProducts extracts the single product described by a detail page.
// Weight options are radio labels, with a select fallback for older
// templates; a page without either sells loose and defaults to 1 kg.
func (s *SafransAdapter) ParseProducts(ctx context.Context, doc *goquery.Document, pageURL string) ([]types.ParsedProduct, error) {
	name := s.ExtractText(doc, "h2.title")
	if name == "" {
		name = s.ExtractText(doc, "h1")
	}
	if name == "" {
		return nil, &ParseError{Kind: ParseNoName, URL: pageURL}
	}

	price := s.ExtractText(doc, "h2.price")
	if price == "" {
		// Some templates inline the price; fall back to the first
		// price-shaped text anywhere on the page.
		price = safransPriceRe.FindString(doc.Text())
	}
	if price == "" {
		s.logger.Warnf("No price found on %s", pageURL)
	}

	var weights []string
	doc.Find("label.radio").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			weights = append(weights, text)
		}
	})
	if len(weights) == 0 {
		doc.Find("select option").Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				weights = append(weights, text)
			}
		})
	}
	if len(weights) == 0 {
		s.logger.Debugf("No weight options on %s, assuming %s", pageURL, safransDefaultWeight)
		weights = []string{safransDefaultWeight}
	}

	return []types.ParsedProduct{{
		URL:         pageURL,
		Name:        name,
		PriceText:   price,
		WeightTexts: weights,
	}}, nil
}
