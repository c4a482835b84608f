package types

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// NotAvailable is the sentinel rendered for any value that could not be
// determined. It is a user-visible contract: both the JSON and CSV
// boundaries emit this exact string, never an empty field or null.
const NotAvailable = "N/A"

// Amount is a numeric field that may be unavailable. It marshals to a
// JSON number when set and to the NotAvailable sentinel otherwise.
type Amount struct {
	Value float64
	Valid bool
}

// AmountOf wraps a known numeric value.
func AmountOf(v float64) Amount {
	return Amount{Value: v, Valid: true}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(a.Value)
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*a = Amount{Value: num, Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a number or %q", NotAvailable)
	}
	if s != NotAvailable {
		return fmt.Errorf("amount must be a number or %q, got %q", NotAvailable, s)
	}
	*a = Amount{}
	return nil
}

func (a Amount) String() string {
	if !a.Valid {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", a.Value)
}

// ProductRecord is one output row: one (product, variant) pair. Records
// are immutable once produced and keep discovery order in the result
// sequence.
type ProductRecord struct {
	Name        string `json:"name"`
	RawPrice    string `json:"raw_price"`
	RawWeight   string `json:"raw_weight"`
	Price       Amount `json:"price"`
	WeightGrams Amount `json:"weight_grams"`
	PricePerKg  Amount `json:"price_per_kg"`
}

// VariantOption is one selectable weight/size control on a product
// page. Value drives the selection; Label carries the human-visible
// weight text; PriceText is filled in once the option has been
// selected and its price re-rendered.
type VariantOption struct {
	Value     string
	Label     string
	PriceText string
}

// ParsedProduct is the raw extraction result for one product page or
// listing tile, before normalization.
type ParsedProduct struct {
	URL       string
	Name      string
	PriceText string
	// WeightTexts holds weight options that all share PriceText. Empty
	// means the page exposed no weight at all.
	WeightTexts []string
	// Variants holds selectable options carrying their own prices.
	// When non-empty they take precedence over PriceText/WeightTexts.
	Variants []VariantOption
}

// Dialect identifies the site-specific markup and interaction rules
// one adapter encodes.
type Dialect string

const (
	DialectSafrans    Dialect = "safrans"
	DialectGarsvielas Dialect = "garsvielas"
	DialectCikade     Dialect = "cikade"
)

// DetectDialect maps a URL to the dialect owning its host.
func DetectDialect(rawURL string) (Dialect, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case strings.HasSuffix(host, "safrans.lv"):
		return DialectSafrans, nil
	case strings.HasSuffix(host, "garsvielas.lv"):
		return DialectGarsvielas, nil
	case strings.HasSuffix(host, "cikade.lv"):
		return DialectCikade, nil
	}
	return "", fmt.Errorf("unsupported site %q: expected safrans.lv, garsvielas.lv or cikade.lv", host)
}

// CrawlTarget describes one scrape request. It lives for the duration
// of the request and is never persisted.
type CrawlTarget struct {
	URL     string
	Dialect Dialect
	// MaxProducts caps how many product pages the crawl visits.
	// Zero means uncapped.
	MaxProducts int
}

// NewCrawlTarget validates rawURL, detects its dialect and applies the
// product cap.
func NewCrawlTarget(rawURL string, maxProducts int) (CrawlTarget, error) {
	if maxProducts < 0 {
		return CrawlTarget{}, fmt.Errorf("max products must not be negative, got %d", maxProducts)
	}
	dialect, err := DetectDialect(rawURL)
	if err != nil {
		return CrawlTarget{}, err
	}
	return CrawlTarget{URL: rawURL, Dialect: dialect, MaxProducts: maxProducts}, nil
}

// Config holds the crawl configuration shared by the CLI and the API.
type Config struct {
	RequestDelay       time.Duration
	Timeout            time.Duration
	DefaultMaxProducts int
	UserAgent          string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RequestDelay:       1 * time.Second,
		Timeout:            60 * time.Second,
		DefaultMaxProducts: 10,
		UserAgent:          "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.RequestDelay < 0 {
		return fmt.Errorf("request delay must not be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DefaultMaxProducts < 1 {
		return fmt.Errorf("default max products must be at least 1")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}
	return nil
}

// Logger defines the logging interface.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
