// Package export writes collected listings to tabular files. CSV is the
// durability contract and is always written, even when nothing was
// collected; the spreadsheet mirror is best-effort.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopcrawl/shopcrawl/internal/extract"
)

// Headers is the fixed column order of every output file.
var Headers = []string{"product_name", "price", "rating", "product_url"}

// FileStem builds the per-run output name, e.g. "flipkart_blue_shoes".
func FileStem(siteID, query string) string {
	return fmt.Sprintf("%s_%s", siteID, strings.ReplaceAll(strings.TrimSpace(query), " ", "_"))
}

// WriteCSV writes the listings with a header row. A zero-listing scrape
// still produces a headers-only file.
func WriteCSV(path string, listings []extract.Listing) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, l := range listings {
		if err := w.Write([]string{l.Name, l.Price, l.Rating, l.URL}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
