package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"spice-scraper/internal/types"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  float64
		valid bool
	}{
		{name: "decimal comma with trailing euro", text: "12,50 €", want: 12.50, valid: true},
		{name: "decimal point with leading euro", text: "€12.50", want: 12.50, valid: true},
		{name: "latvian from prefix", text: "No 2,10 €", want: 2.10, valid: true},
		{name: "eur code", text: "EUR 3,00", want: 3.00, valid: true},
		{name: "bare integer", text: "7", want: 7, valid: true},
		{name: "range keeps first value", text: "2,50 € – 10,00 €", want: 2.50, valid: true},
		{name: "empty", text: "", valid: false},
		{name: "no number", text: "price on request", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.text)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, got.Value, 0.0001)
			}
		})
	}
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  float64
		valid bool
	}{
		{name: "kilograms without space", text: "1kg", want: 1000, valid: true},
		{name: "grams with space", text: "250 g", want: 250, valid: true},
		{name: "liters decimal point", text: "0.5l", want: 500, valid: true},
		{name: "milliliters", text: "100 ml", want: 100, valid: true},
		{name: "decimal comma kilograms", text: "1,5 kg", want: 1500, valid: true},
		{name: "uppercase unit", text: "500 G", want: 500, valid: true},
		{name: "token inside sentence", text: "maisiņš 40 g ar aizdari", want: 40, valid: true},
		{name: "empty", text: "", valid: false},
		{name: "no unit", text: "liels iepakojums", valid: false},
		{name: "unit before number", text: "g 100", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseWeight(tt.text)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, got.Value, 0.0001)
			}
		})
	}
}

func TestWeightToken(t *testing.T) {
	token, ok := WeightToken("Melnie pipari, maisiņš 250 g, papīra iepakojumā")
	require.True(t, ok)
	assert.Equal(t, "250 g", token)

	token, ok = WeightToken("bez svara norādes")
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestPricePerKg(t *testing.T) {
	tests := []struct {
		name  string
		price types.Amount
		grams types.Amount
		want  float64
		valid bool
	}{
		{name: "quarter kilo", price: types.AmountOf(5.00), grams: types.AmountOf(250), want: 20.00, valid: true},
		{name: "rounds to two decimals", price: types.AmountOf(1.00), grams: types.AmountOf(300), want: 3.33, valid: true},
		{name: "exact kilo", price: types.AmountOf(8.40), grams: types.AmountOf(1000), want: 8.40, valid: true},
		{name: "missing price", grams: types.AmountOf(250), valid: false},
		{name: "missing weight", price: types.AmountOf(5.00), valid: false},
		{name: "zero weight", price: types.AmountOf(5.00), grams: types.AmountOf(0), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PricePerKg(tt.price, tt.grams)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, got.Value, 0.0001)
			}
		})
	}
}

func TestBuildRecord(t *testing.T) {
	record := BuildRecord("  Kanēlis\n malts ", "12,50 €", "250 g")

	assert.Equal(t, "Kanēlis malts", record.Name)
	assert.Equal(t, "12,50 €", record.RawPrice)
	assert.Equal(t, "250 g", record.RawWeight)
	require.True(t, record.Price.Valid)
	assert.InDelta(t, 12.50, record.Price.Value, 0.0001)
	require.True(t, record.WeightGrams.Valid)
	assert.InDelta(t, 250, record.WeightGrams.Value, 0.0001)
	require.True(t, record.PricePerKg.Valid)
	assert.InDelta(t, 50.00, record.PricePerKg.Value, 0.0001)
}

func TestBuildRecord_MissingFields(t *testing.T) {
	record := BuildRecord("Safrāns", "", "")

	assert.Equal(t, types.NotAvailable, record.RawPrice)
	assert.Equal(t, types.NotAvailable, record.RawWeight)
	assert.False(t, record.Price.Valid)
	assert.False(t, record.WeightGrams.Valid)
	assert.False(t, record.PricePerKg.Valid)
}

func TestBuildRecord_UnparseableWeight(t *testing.T) {
	record := BuildRecord("Garšvielu maisījums", "4,20 €", "liels iepakojums")

	assert.Equal(t, "liels iepakojums", record.RawWeight)
	assert.True(t, record.Price.Valid)
	assert.False(t, record.WeightGrams.Valid)
	assert.False(t, record.PricePerKg.Valid)
}

func TestRecords_VariantsTakePrecedence(t *testing.T) {
	product := types.ParsedProduct{
		Name:      "Paprika kūpināta",
		PriceText: "No 2,00 €",
		Variants: []types.VariantOption{
			{Value: "100-g", Label: "100 g", PriceText: "2,00 €"},
			{Value: "250-g", Label: "250 g", PriceText: "4,50 €"},
			{Value: "1-kg", Label: "1 kg", PriceText: "16,00 €"},
		},
	}

	records := Records(product)
	require.Len(t, records, 3)

	for _, record := range records {
		assert.Equal(t, "Paprika kūpināta", record.Name)
	}
	assert.Equal(t, "100 g", records[0].RawWeight)
	assert.InDelta(t, 20.00, records[0].PricePerKg.Value, 0.0001)
	assert.Equal(t, "250 g", records[1].RawWeight)
	assert.InDelta(t, 18.00, records[1].PricePerKg.Value, 0.0001)
	assert.Equal(t, "1 kg", records[2].RawWeight)
	assert.InDelta(t, 16.00, records[2].PricePerKg.Value, 0.0001)
}

func TestRecords_WeightTextsSharePrice(t *testing.T) {
	product := types.ParsedProduct{
		Name:        "Kumīns",
		PriceText:   "3,00 €",
		WeightTexts: []string{"100 g", "1 kg"},
	}

	records := Records(product)
	require.Len(t, records, 2)

	assert.InDelta(t, 30.00, records[0].PricePerKg.Value, 0.0001)
	assert.InDelta(t, 3.00, records[1].PricePerKg.Value, 0.0001)
	assert.Equal(t, records[0].RawPrice, records[1].RawPrice)
}

func TestRecords_BareProduct(t *testing.T) {
	product := types.ParsedProduct{Name: "Vaniļas ekstrakts", PriceText: "9,90 €"}

	records := Records(product)
	require.Len(t, records, 1)

	assert.Equal(t, types.NotAvailable, records[0].RawWeight)
	assert.True(t, records[0].Price.Valid)
	assert.False(t, records[0].PricePerKg.Valid)
}
