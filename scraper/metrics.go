package scraper

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"spice-scraper/adapters"
)

// Metrics bundles Prometheus collectors for the crawl engine.
type Metrics struct {
	Registry            *prometheus.Registry
	PagesFetchedTotal   *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
	ProductsParsed      prometheus.Counter
	RecordsEmittedTotal prometheus.Counter
	ErrorsTotal         *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pagesFetched := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "Total pages fetched by the crawl engine.",
		},
		[]string{"phase"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "Page fetch latency, browser sessions included.",
			Buckets: prometheus.DefBuckets,
		},
	)
	productsParsed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_products_parsed_total",
			Help: "Total product pages parsed successfully.",
		},
	)
	recordsEmitted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_records_emitted_total",
			Help: "Total normalized records emitted, one per weight variant.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total crawl errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(pagesFetched, fetchDuration, productsParsed, recordsEmitted, errorsTotal)

	return &Metrics{
		Registry:            registry,
		PagesFetchedTotal:   pagesFetched,
		FetchDuration:       fetchDuration,
		ProductsParsed:      productsParsed,
		RecordsEmittedTotal: recordsEmitted,
		ErrorsTotal:         errorsTotal,
	}
}

// IncPage increments the fetched pages counter for a crawl phase.
func (m *Metrics) IncPage(phase string) {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.WithLabelValues(phase).Inc()
}

// ObserveFetch records how long a page fetch took.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncProducts increments the parsed products counter.
func (m *Metrics) IncProducts() {
	if m == nil {
		return
	}
	m.ProductsParsed.Inc()
}

// AddRecords adds to the emitted records counter.
func (m *Metrics) AddRecords(n int) {
	if m == nil {
		return
	}
	m.RecordsEmittedTotal.Add(float64(n))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(err error) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorTypeLabel(err)).Inc()
}

func errorTypeLabel(err error) string {
	var fetchErr *adapters.FetchError
	if errors.As(err, &fetchErr) {
		return string(fetchErr.Kind)
	}
	var parseErr *adapters.ParseError
	if errors.As(err, &parseErr) {
		return string(parseErr.Kind)
	}
	return "other"
}
