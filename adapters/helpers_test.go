package adapters

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"spice-scraper/internal/types"
	"spice-scraper/utils"
)

func testConfig() *types.Config {
	config := types.DefaultConfig()
	config.RequestDelay = 0
	return config
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// fakeSession serves canned markup and variation prices in place of a
// live browser tab.
type fakeSession struct {
	htmlByURL    map[string]string // markup served per navigated URL
	priceByValue map[string]string // variation price per selected option
	failWait     map[string]bool   // option values whose re-render never settles
	failSelect   map[string]bool   // option values whose control cannot be driven
	navigateErr  error

	currentURL   string
	currentValue string
	navigated    []string
	selected     []string
	dismissed    []string
	waited       []string
	closed       int
}

func (f *fakeSession) Navigate(url, waitSelector string) error {
	if f.navigateErr != nil {
		return f.navigateErr
	}
	f.currentURL = url
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeSession) WaitVisible(selector string) error {
	f.waited = append(f.waited, selector)
	if f.failWait[f.currentValue] {
		return fmt.Errorf("failed to wait for element %s: timeout", selector)
	}
	return nil
}

func (f *fakeSession) Text(selector string) (string, error) {
	return f.priceByValue[f.currentValue], nil
}

func (f *fakeSession) HTML() (string, error) {
	html, ok := f.htmlByURL[f.currentURL]
	if !ok {
		return "", fmt.Errorf("no page loaded for %s", f.currentURL)
	}
	return html, nil
}

func (f *fakeSession) Dismiss(selector string) bool {
	f.dismissed = append(f.dismissed, selector)
	return true
}

func (f *fakeSession) SelectOption(selector, value string) error {
	if f.failSelect[value] {
		return fmt.Errorf("no element matches selector %s", selector)
	}
	f.currentValue = value
	f.selected = append(f.selected, value)
	return nil
}

func (f *fakeSession) Close() {
	f.closed++
}

func (f *fakeSession) factory() SessionFactory {
	return func(ctx context.Context) (utils.Session, error) {
		return f, nil
	}
}

// fakeReporter records progress ticks.
type fakeReporter struct {
	expands  []int
	advances int
}

func (r *fakeReporter) Expand(n int) {
	r.expands = append(r.expands, n)
}

func (r *fakeReporter) Advance() {
	r.advances++
}
