package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"spice-scraper/export"
	"spice-scraper/internal/types"
	"spice-scraper/scraper"
)

// Server holds the API server state. One crawl engine serves all
// requests; the engine itself serializes crawls.
type Server struct {
	logger  *logrus.Logger
	config  *types.Config
	engine  *scraper.Engine
	metrics *scraper.Metrics
}

// NewServer creates a new API server. Extra engine options are applied
// after the metrics hookup; tests use them to inject canned transports.
func NewServer(config *types.Config, logger *logrus.Logger, opts ...scraper.EngineOption) *Server {
	metrics := scraper.NewMetrics()
	engineOpts := append([]scraper.EngineOption{scraper.WithMetrics(metrics)}, opts...)

	return &Server{
		logger:  logger,
		config:  config,
		engine:  scraper.New(config, logger, engineOpts...),
		metrics: metrics,
	}
}

// setCORS allows the browser frontend to call from any origin.
func (s *Server) setCORS(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// handleScrape crawls the requested URL and returns the records as a
// JSON array or as CSV content wrapped in a JSON object.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	s.setCORS(w)

	// Handle preflight requests
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		s.sendError(w, "url parameter is required", http.StatusBadRequest)
		return
	}

	limit := s.config.DefaultMaxProducts
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 1 {
			s.sendError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		s.sendError(w, "format must be csv or json", http.StatusBadRequest)
		return
	}

	target, err := types.NewCrawlTarget(rawURL, limit)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Infof("Received URL: %s", rawURL)

	// Create context with timeout
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	records, err := s.engine.Crawl(ctx, target)
	if err != nil {
		if len(records) == 0 {
			s.logger.Errorf("Crawl failed: %v", err)
			s.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.logger.Warnf("Crawl ended early, returning partial results: %v", err)
	}

	if len(records) == 0 {
		s.logger.Warn("No products were successfully scraped")
		s.sendError(w, "no product information could be found on the page", http.StatusNotFound)
		return
	}

	s.logger.Infof("Successfully scraped %d records", len(records))

	if format == "csv" {
		s.sendJSON(w, http.StatusOK, map[string]string{"csv_content": export.Render(records)})
		return
	}
	s.sendJSON(w, http.StatusOK, records)
}

// handleProgress reports crawl completion for the polling frontend.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.setCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]int{"progress": s.engine.Progress().Percent()})
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// sendJSON writes payload as the response body.
func (s *Server) sendJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	s.sendJSON(w, statusCode, map[string]string{"error": message})
}

// Start starts the API server
func (s *Server) Start(port string) error {
	// Setup routes
	http.HandleFunc("/scrape", s.handleScrape)
	http.HandleFunc("/progress", s.handleProgress)
	http.HandleFunc("/health", s.handleHealth)
	http.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	s.logger.Infof("Starting API server on port %s", port)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  GET /scrape   - Scrape a category or product URL")
	s.logger.Info("  GET /progress - Completion percentage of the running crawl")
	s.logger.Info("  GET /health   - Health check")
	s.logger.Info("  GET /metrics  - Prometheus metrics")

	return http.ListenAndServe(":"+port, nil)
}

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	config := types.DefaultConfig()
	if err := config.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Get port from environment variable, default to 8080
	serverPort := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
		fmt.Printf("Using port from environment variable API_PORT: %s\n", serverPort)
	} else {
		fmt.Printf("No API_PORT environment variable found, using default: %s\n", serverPort)
	}

	server := NewServer(config, logger)

	// Start the server
	log.Printf("Starting API server on port %s", serverPort)
	log.Fatal(server.Start(serverPort))
}
