// Package export renders normalized product records for the outward
// interfaces: CSV for download and indented JSON for files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"spice-scraper/internal/types"
)

// Header is the CSV header row.
const Header = "Product Name,Price (€),Weight,Price per kg (€)"

// Render returns the CSV document for records: the header followed by
// one row per record. Every value is double-quoted, and commas inside
// product names are replaced by spaces so rows stay four fields wide
// for naive consumers.
func Render(records []types.ProductRecord) string {
	var builder strings.Builder
	builder.WriteString(Header)
	builder.WriteByte('\n')
	for _, record := range records {
		builder.WriteString(row(record))
		builder.WriteByte('\n')
	}
	return builder.String()
}

// WriteCSVFile renders records and writes them to filename, creating
// parent directories as needed.
func WriteCSVFile(filename string, records []types.ProductRecord) error {
	if err := ensureDir(filename); err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(Render(records)), 0o644); err != nil {
		return fmt.Errorf("write csv file: %w", err)
	}
	return nil
}

// WriteJSONFile writes records to filename as an indented JSON array.
func WriteJSONFile(filename string, records []types.ProductRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := ensureDir(filename); err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// row renders one record as four double-quoted fields. Amounts print
// with two decimals or as the availability sentinel.
func row(record types.ProductRecord) string {
	name := strings.ReplaceAll(record.Name, ",", " ")
	fields := []string{
		quote(name),
		quote(record.Price.String()),
		quote(record.RawWeight),
		quote(record.PricePerKg.String()),
	}
	return strings.Join(fields, ",")
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
