package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"spice-scraper/internal/types"
	"spice-scraper/utils"
)

func main() {
	config := types.DefaultConfig()

	logger := &debugLogger{}

	// Test each dialect's listing selectors against the live sites
	fmt.Println("=== Testing Safrans ===")
	testStatic("https://safrans.lv/garsvielas_/garsvielas_un_garsaugi/", "a[href*='/garsvielas_/garsvielas_un_garsaugi/']", config, logger)

	fmt.Println("\n=== Testing Garsvielas ===")
	testRendered("https://www.garsvielas.lv/garšvielas", "h3[data-hook='product-item-name']", config, logger)

	fmt.Println("\n=== Testing Cikade ===")
	testRendered("https://cikade.lv/produktu-kategorija/garsvielas/", "h3.name a", config, logger)
}

func testStatic(pageURL, selector string, config *types.Config, logger types.Logger) {
	client := utils.NewHTTPClient(config, logger)
	defer client.Close()

	body, err := client.Get(context.Background(), pageURL)
	if err != nil {
		log.Printf("Failed to get page: %v", err)
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		log.Printf("Failed to parse HTML: %v", err)
		return
	}

	report(doc, selector)
}

func testRendered(pageURL, selector string, config *types.Config, logger types.Logger) {
	browserClient := utils.NewBrowserClient(config, logger)
	defer browserClient.Close()

	session, err := browserClient.NewSession(context.Background())
	if err != nil {
		log.Printf("Failed to open session: %v", err)
		return
	}
	defer session.Close()

	if err := session.Navigate(pageURL, "body"); err != nil {
		log.Printf("Failed to load page: %v", err)
		return
	}

	html, err := session.HTML()
	if err != nil {
		log.Printf("Failed to get page content: %v", err)
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("Failed to parse HTML: %v", err)
		return
	}

	report(doc, selector)
}

func report(doc *goquery.Document, selector string) {
	fmt.Printf("Total links found: %d\n", doc.Find("a").Length())

	matches := doc.Find(selector)
	fmt.Printf("Elements matching %s: %d\n", selector, matches.Length())

	// Print a sample of what the selector sees
	matches.Each(func(i int, s *goquery.Selection) {
		if i >= 10 {
			return
		}
		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		fmt.Printf("  %d: href='%s', text='%s'\n", i+1, href, text)
	})
}

type debugLogger struct{}

func (d *debugLogger) Debug(args ...interface{})                 { fmt.Println(args...) }
func (d *debugLogger) Info(args ...interface{})                  { fmt.Println(args...) }
func (d *debugLogger) Warn(args ...interface{})                  { fmt.Println(args...) }
func (d *debugLogger) Error(args ...interface{})                 { fmt.Println(args...) }
func (d *debugLogger) Debugf(format string, args ...interface{}) { fmt.Printf(format+"\n", args...) }
func (d *debugLogger) Infof(format string, args ...interface{})  { fmt.Printf(format+"\n", args...) }
func (d *debugLogger) Warnf(format string, args ...interface{})  { fmt.Printf(format+"\n", args...) }
func (d *debugLogger) Errorf(format string, args ...interface{}) { fmt.Printf(format+"\n", args...) }
