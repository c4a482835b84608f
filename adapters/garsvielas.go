package adapters

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"spice-scraper/internal/types"
	"spice-scraper/normalize"

	"github.com/PuerkitoBio/goquery"
)

// Wix storefront hooks for garsvielas.lv. Class names are mangled on
// every deploy; data-hook attributes are the only stable handles.
const (
	garsvielasPopupClose   = `span[class*="close"]`
	garsvielasPriceAnchors = `span[data-hook="price-range-from"], span[data-hook="product-item-price-to-pay"]`
	garsvielasTileName     = `h3[data-hook="product-item-name"]`
	garsvielasTileLayout   = `[data-hook="product-item-name-and-price-layout"]`
	garsvielasPriceToPay   = `[data-hook="product-item-price-to-pay"]`
	garsvielasPriceFrom    = `[data-hook="price-range-from"]`
)

// garsvielasNameWeightRe captures a weight token trailing or embedded in
// a tile name, e.g. "Anīsa sēklas 100g".
var garsvielasNameWeightRe = regexp.MustCompile(`(?i)\s+(\d+(?:[.,]\d+)?\s*(?:kg|g|ml|l))(?:\s+|$)`)

// GarsvielasAdapter handles extraction for garsvielas.lv, a Wix
// storefront that builds its DOM client-side. Listing tiles already
// carry name, weight and price, so the listing itself is parsed as
// product content and no per-product navigation happens.
type GarsvielasAdapter struct {
	*BaseAdapter
}

// NewGarsvielasAdapter creates a new Garsvielas adapter
func NewGarsvielasAdapter(config *types.Config, logger types.Logger, opts ...Option) *GarsvielasAdapter {
	return &GarsvielasAdapter{
		BaseAdapter: NewBaseAdapter(config, logger, opts...),
	}
}

// Dialect returns the site this adapter handles
func (g *GarsvielasAdapter) Dialect() types.Dialect {
	return types.DialectGarsvielas
}

// FetchPage renders the page in a browser session. Plain HTTP returns an
// empty shell here. A promo popup may cover the grid and is dismissed
// before waiting for prices to hydrate.
func (g *GarsvielasAdapter) FetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	session, err := g.newSession(ctx)
	if err != nil {
		return nil, classifyFetch(pageURL, err)
	}
	defer session.Close()

	if err := session.Navigate(pageURL, "body"); err != nil {
		return nil, classifyFetch(pageURL, err)
	}

	if session.Dismiss(garsvielasPopupClose) {
		g.logger.Debug("Dismissed promo popup")
	}

	if err := session.WaitVisible(garsvielasPriceAnchors); err != nil {
		return nil, classifyFetch(pageURL, err)
	}

	return g.documentFromSession(session, pageURL)
}

// ProductLinks returns nothing: tiles on the listing are complete
// products and the page is parsed in place.
func (g *GarsvielasAdapter) ProductLinks(doc *goquery.Document, pageURL string) []string {
	return nil
}

// NextPage always returns ""; the storefront loads its grid on one page.
func (g *GarsvielasAdapter) NextPage(doc *goquery.Document, pageURL string) string {
	return ""
}

// ParseProducts walks the product tiles. A weight token inside the tile
// name becomes the product weight, the name keeps the part before it.
// The paid price is preferred over the "from" range price.
func (g *GarsvielasAdapter) ParseProducts(ctx context.Context, doc *goquery.Document, pageURL string) ([]types.ParsedProduct, error) {
	var products []types.ParsedProduct

	doc.Find(garsvielasTileName).Each(func(_ int, sel *goquery.Selection) {
		name := normalize.CleanText(sel.Text())
		if name == "" {
			return
		}

		var weights []string
		if m := garsvielasNameWeightRe.FindStringSubmatchIndex(name); m != nil {
			if trimmed := strings.TrimSpace(name[:m[0]]); trimmed != "" {
				weights = []string{name[m[2]:m[3]]}
				name = trimmed
			}
		}

		var price string
		if container := sel.Closest(garsvielasTileLayout); container.Length() > 0 {
			price = strings.TrimSpace(container.Find(garsvielasPriceToPay).First().Text())
			if price == "" {
				price = strings.TrimSpace(container.Find(garsvielasPriceFrom).First().Text())
			}
		}
		if price == "" {
			g.logger.Warnf("No price found for %s", name)
		}

		products = append(products, types.ParsedProduct{
			URL:         pageURL,
			Name:        name,
			PriceText:   price,
			WeightTexts: weights,
		})
	})

	if len(products) == 0 {
		return nil, &ParseError{Kind: ParseMalformedDOM, URL: pageURL, Err: errors.New("no product tiles found")}
	}
	return products, nil
}
