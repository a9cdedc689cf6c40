package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/shopcrawl/shopcrawl/internal/extract"
)

// WriteXLSX mirrors the listings into a spreadsheet with the same columns
// as the CSV. Callers treat a failure here as a skipped secondary export,
// not a scrape failure.
func WriteXLSX(path string, listings []extract.Listing) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &Headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for i, l := range listings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []string{l.Name, l.Price, l.Rating, l.URL}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
