package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"spice-scraper/export"
	"spice-scraper/internal/types"
	"spice-scraper/scraper"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		urlFlag      = flag.String("url", "", "Category or product URL to scrape (safrans.lv, garsvielas.lv, cikade.lv)")
		limitFlag    = flag.Int("limit", 10, "Maximum products to scrape (0 for no cap)")
		csvFlag      = flag.String("csv", "", "Write results to this CSV file")
		jsonFlag     = flag.String("json", "", "Write results to this JSON file")
		requestDelay = flag.Duration("delay", 1*time.Second, "Delay between requests")
		timeout      = flag.Duration("timeout", 60*time.Second, "Per-page timeout")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *urlFlag == "" {
		log.Fatal("--url flag is required")
	}

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	// Set log level from LOG_LEVEL env if present
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// Create configuration
	config := types.DefaultConfig()
	config.RequestDelay = *requestDelay
	config.Timeout = *timeout

	if err := config.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	target, err := types.NewCrawlTarget(*urlFlag, *limitFlag)
	if err != nil {
		logger.Fatalf("Invalid target: %v", err)
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	engine := scraper.New(config, logger)

	records, err := engine.Crawl(ctx, target)
	if err != nil {
		if len(records) == 0 {
			logger.Fatalf("Crawl failed: %v", err)
		}
		logger.Warnf("Crawl ended early, keeping partial results: %v", err)
	}

	printTable(records)

	if *csvFlag != "" {
		if err := export.WriteCSVFile(*csvFlag, records); err != nil {
			logger.Fatalf("Failed to write CSV file: %v", err)
		}
		logger.Infof("Results written to: %s", *csvFlag)
	}
	if *jsonFlag != "" {
		if err := export.WriteJSONFile(*jsonFlag, records); err != nil {
			logger.Fatalf("Failed to write JSON file: %v", err)
		}
		logger.Infof("Results written to: %s", *jsonFlag)
	}

	logger.Infof("Total records: %d", len(records))
}

// printTable writes a fixed-width summary of the records to stdout.
func printTable(records []types.ProductRecord) {
	if len(records) == 0 {
		fmt.Println("No products were found.")
		return
	}

	fmt.Println("\nScraped Products:")
	fmt.Println(strings.Repeat("-", 90))
	fmt.Printf("%-50s %-10s %-10s %-10s\n", "Product Name", "Price (€)", "Weight", "Price/kg")
	fmt.Println(strings.Repeat("-", 90))
	for _, record := range records {
		fmt.Printf("%-50s %-10s %-10s %-10s\n", truncate(record.Name, 50), record.Price, record.RawWeight, record.PricePerKg)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
