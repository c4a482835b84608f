package adapters

import (
	"context"
	"strings"

	"spice-scraper/internal/types"
	"spice-scraper/normalize"
	"spice-scraper/utils"

	"github.com/PuerkitoBio/goquery"
)

// WooCommerce selectors for cikade.lv.
const (
	cikadeProductLink    = "h3.name a"
	cikadeNextPage       = ".woocommerce-pagination a.next.page-numbers"
	cikadeTitle          = "h1.product_title"
	cikadeWeightSelect   = "select#svars"
	cikadeBasePrice      = ".price .amount"
	cikadeShortDesc      = ".woocommerce-product-details__short-description"
	cikadeVariationPrice = ".woocommerce-variation-price .amount"
)

// CikadeAdapter handles extraction for cikade.lv, a WooCommerce shop.
// Weighted products carry a variation dropdown whose price only exists
// after the storefront script re-renders it, so options are selected in
// a live session and read back one at a time.
type CikadeAdapter struct {
	*BaseAdapter
}

// NewCikadeAdapter creates a new Cikade adapter
func NewCikadeAdapter(config *types.Config, logger types.Logger, opts ...Option) *CikadeAdapter {
	return &CikadeAdapter{
		BaseAdapter: NewBaseAdapter(config, logger, opts...),
	}
}

// Dialect returns the site this adapter handles
func (c *CikadeAdapter) Dialect() types.Dialect {
	return types.DialectCikade
}

// FetchPage renders the page in a browser session; most markup is
// server-side but variation data hydrates client-side.
func (c *CikadeAdapter) FetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	return c.fetchBrowser(ctx, pageURL, "body")
}

// ProductLinks collects category-page product anchors in document order.
func (c *CikadeAdapter) ProductLinks(doc *goquery.Document, pageURL string) []string {
	var links []string
	doc.Find(cikadeProductLink).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		if abs := c.ResolveURL(pageURL, href); abs != "" {
			links = append(links, abs)
		}
	})
	return links
}

// NextPage follows WooCommerce pagination.
func (c *CikadeAdapter) NextPage(doc *goquery.Document, pageURL string) string {
	href, ok := doc.Find(cikadeNextPage).First().Attr("href")
	if !ok {
		return ""
	}
	return c.ResolveURL(pageURL, href)
}

// ParseProducts extracts the product on a detail page. A product with a
// weight dropdown is resolved option by option in a live session;
// single-SKU products read the base price directly, with the weight
// taken from the short description or, failing that, the product name.
func (c *CikadeAdapter) ParseProducts(ctx context.Context, doc *goquery.Document, pageURL string) ([]types.ParsedProduct, error) {
	name := c.ExtractText(doc, cikadeTitle)
	if name == "" {
		return nil, &ParseError{Kind: ParseNoName, URL: pageURL}
	}

	var options []types.VariantOption
	doc.Find(cikadeWeightSelect + " option").Each(func(_ int, sel *goquery.Selection) {
		value, _ := sel.Attr("value")
		if strings.TrimSpace(value) == "" {
			return // "Izvēlies variantu" placeholder
		}
		label := normalize.CleanText(sel.Text())
		if label == "" {
			label = value
		}
		options = append(options, types.VariantOption{Value: value, Label: label})
	})

	product := types.ParsedProduct{
		URL:       pageURL,
		Name:      name,
		PriceText: c.ExtractText(doc, cikadeBasePrice),
	}

	if len(options) == 0 {
		if token, ok := normalize.WeightToken(c.ExtractText(doc, cikadeShortDesc)); ok {
			product.WeightTexts = []string{token}
		} else if token, ok := normalize.WeightToken(name); ok {
			product.WeightTexts = []string{token}
		}
		return []types.ParsedProduct{product}, nil
	}

	variants, err := c.resolveVariants(ctx, pageURL, options, product.PriceText)
	if err != nil {
		return nil, err
	}
	product.Variants = variants
	return []types.ParsedProduct{product}, nil
}

// resolveVariants drives the weight dropdown in a live session: select
// an option, wait for the variation price to re-render, read it, move
// on. Progress grows by one unit per extra option up front and ticks as
// each option lands; the caller's per-product advance covers the last.
func (c *CikadeAdapter) resolveVariants(ctx context.Context, pageURL string, options []types.VariantOption, fallbackPrice string) ([]types.VariantOption, error) {
	session, err := c.newSession(ctx)
	if err != nil {
		return nil, classifyFetch(pageURL, err)
	}
	defer session.Close()

	if err := session.Navigate(pageURL, cikadeTitle); err != nil {
		return nil, classifyFetch(pageURL, err)
	}

	c.reportExpand(len(options) - 1)

	variants := make([]types.VariantOption, 0, len(options))
	for i, option := range options {
		if err := ctx.Err(); err != nil {
			return nil, classifyFetch(pageURL, err)
		}

		priceText, err := c.settleOption(session, option.Value)
		if err != nil {
			c.logger.Warnf("Variant %s on %s did not settle: %v", option.Value, pageURL, err)
			priceText = fallbackPrice
		}

		variants = append(variants, types.VariantOption{
			Value:     option.Value,
			Label:     option.Label,
			PriceText: priceText,
		})

		if i < len(options)-1 {
			c.reportAdvance()
		}
	}

	return variants, nil
}

// settleOption selects one dropdown value and waits for the variation
// price to re-render before reading it.
func (c *CikadeAdapter) settleOption(session utils.Session, value string) (string, error) {
	if err := session.SelectOption(cikadeWeightSelect, value); err != nil {
		return "", err
	}
	if err := session.WaitVisible(cikadeVariationPrice); err != nil {
		return "", err
	}
	return session.Text(cikadeVariationPrice)
}
