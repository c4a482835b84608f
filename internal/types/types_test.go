package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountJSON(t *testing.T) {
	record := ProductRecord{
		Name:        "Kanēlis malts",
		RawPrice:    "2,50 €",
		RawWeight:   "250 g",
		Price:       AmountOf(2.5),
		WeightGrams: AmountOf(250),
		PricePerKg:  AmountOf(10),
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":2.5`)
	assert.Contains(t, string(data), `"weight_grams":250`)

	var decoded ProductRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, record, decoded)
}

func TestAmountJSON_NotAvailable(t *testing.T) {
	data, err := json.Marshal(ProductRecord{Name: "Safrāns"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":"N/A"`)
	assert.Contains(t, string(data), `"price_per_kg":"N/A"`)

	var decoded ProductRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Price.Valid)
	assert.False(t, decoded.PricePerKg.Valid)
}

func TestAmountJSON_RejectsUnknownString(t *testing.T) {
	var a Amount
	err := json.Unmarshal([]byte(`"soon"`), &a)
	assert.Error(t, err)
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "2.50", AmountOf(2.5).String())
	assert.Equal(t, "N/A", Amount{}.String())
}

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		url     string
		dialect Dialect
		wantErr bool
	}{
		{url: "https://safrans.lv/garsvielas_/garsvielas_un_garsaugi/", dialect: DialectSafrans},
		{url: "https://www.garsvielas.lv/gar%C5%A1vielas", dialect: DialectGarsvielas},
		{url: "https://cikade.lv/product-category/garsvielas/", dialect: DialectCikade},
		{url: "https://WWW.SAFRANS.LV/kaut-kas", dialect: DialectSafrans},
		{url: "https://example.com/shop", wantErr: true},
		{url: "://not a url", wantErr: true},
	}

	for _, tt := range tests {
		dialect, err := DetectDialect(tt.url)
		if tt.wantErr {
			assert.Error(t, err, tt.url)
			continue
		}
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.dialect, dialect, tt.url)
	}
}

func TestNewCrawlTarget(t *testing.T) {
	target, err := NewCrawlTarget("https://cikade.lv/product-category/garsvielas/", 5)
	require.NoError(t, err)
	assert.Equal(t, DialectCikade, target.Dialect)
	assert.Equal(t, 5, target.MaxProducts)

	_, err = NewCrawlTarget("https://cikade.lv/x", -1)
	assert.Error(t, err)

	_, err = NewCrawlTarget("https://unknown.example/x", 5)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "zero delay is allowed", mutate: func(c *Config) { c.RequestDelay = 0 }},
		{name: "negative delay", mutate: func(c *Config) { c.RequestDelay = -1 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "zero max products", mutate: func(c *Config) { c.DefaultMaxProducts = 0 }, wantErr: true},
		{name: "empty user agent", mutate: func(c *Config) { c.UserAgent = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
