// Package normalize converts raw price and weight text captured from
// product pages into canonical numeric values and derives price per
// kilogram. Parsing failures degrade to the "N/A" sentinel instead of
// returning errors so that partially described products still produce
// usable records.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"spice-scraper/internal/types"
)

var (
	numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	weightRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(kg|g|ml|l)\b`)

	// priceCleaner drops tokens that commonly wrap Latvian price text,
	// e.g. "No 2,10 €" ("from 2.10 €") on range-priced listings.
	priceCleaner = strings.NewReplacer("No", "", "EUR", "", "€", "")
)

// unitToGrams maps a recognized unit token to its gram multiplier.
// Milliliters and liters are converted 1:1 as if they were grams; no
// density correction is applied for liquid products.
var unitToGrams = map[string]float64{
	"g":  1,
	"kg": 1000,
	"ml": 1,
	"l":  1000,
}

// ParsePrice extracts the first numeric value from price text, accepting
// both decimal-comma and decimal-point forms.
func ParsePrice(text string) types.Amount {
	match := numberRe.FindString(priceCleaner.Replace(text))
	if match == "" {
		return types.Amount{}
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return types.Amount{}
	}
	return types.AmountOf(value)
}

// ParseWeight extracts the first value-plus-unit token from weight text
// and converts it to grams.
func ParseWeight(text string) types.Amount {
	m := weightRe.FindStringSubmatch(text)
	if m == nil {
		return types.Amount{}
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return types.Amount{}
	}
	return types.AmountOf(value * unitToGrams[strings.ToLower(m[2])])
}

// WeightToken reports the first weight-like token found in free text,
// e.g. "250 g" in "Maisiņš 250 g, papīra iepakojumā".
func WeightToken(text string) (string, bool) {
	m := weightRe.FindString(text)
	if m == "" {
		return "", false
	}
	return CleanText(m), true
}

// PricePerKg derives the per-kilogram price, rounded to two decimals.
// Defined only when both operands are valid and the weight is positive.
func PricePerKg(price, grams types.Amount) types.Amount {
	if !price.Valid || !grams.Valid || grams.Value <= 0 {
		return types.Amount{}
	}
	return types.AmountOf(round2(price.Value / (grams.Value / 1000)))
}

// BuildRecord assembles a ProductRecord from raw page text. The raw
// fields keep the captured text (whitespace collapsed) so the output
// stays auditable against the source page; empty captures become "N/A".
func BuildRecord(name, priceText, weightText string) types.ProductRecord {
	rawPrice := CleanText(priceText)
	rawWeight := CleanText(weightText)

	price := ParsePrice(rawPrice)
	grams := ParseWeight(rawWeight)

	if rawPrice == "" {
		rawPrice = types.NotAvailable
	}
	if rawWeight == "" {
		rawWeight = types.NotAvailable
	}

	return types.ProductRecord{
		Name:        CleanText(name),
		RawPrice:    rawPrice,
		RawWeight:   rawWeight,
		Price:       price,
		WeightGrams: grams,
		PricePerKg:  PricePerKg(price, grams),
	}
}

// Records expands one parsed product into its output records. Variants
// take precedence: each selectable option becomes its own record with
// the option's price and weight, discarding the product's top-level
// price text. Without variants, a product listing several weight texts
// yields one record per weight sharing the page price, and a product
// with no weight information at all yields a single record.
func Records(p types.ParsedProduct) []types.ProductRecord {
	if len(p.Variants) > 0 {
		records := make([]types.ProductRecord, 0, len(p.Variants))
		for _, v := range p.Variants {
			records = append(records, BuildRecord(p.Name, v.PriceText, v.Label))
		}
		return records
	}

	if len(p.WeightTexts) > 0 {
		records := make([]types.ProductRecord, 0, len(p.WeightTexts))
		for _, weight := range p.WeightTexts {
			records = append(records, BuildRecord(p.Name, p.PriceText, weight))
		}
		return records
	}

	return []types.ProductRecord{BuildRecord(p.Name, p.PriceText, "")}
}

// CleanText collapses runs of whitespace into single spaces and trims
// the ends.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
