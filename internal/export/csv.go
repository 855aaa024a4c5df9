// Package export writes assembled invoices to the grouped output formats:
// one CSV per business and a single XLSX workbook with a sheet per business.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"invoicebooks/internal/assemble"
	"invoicebooks/internal/models"
)

// WriteGroupedCSV writes "<Business>_invoices.csv" into dir for every
// business that received items, and returns the paths written. Empty buckets
// produce no file.
func WriteGroupedCSV(dir string, batch *assemble.Batch) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	for _, business := range batch.Businesses() {
		rows := assemble.Rows(batch.Invoices(business))
		path := filepath.Join(dir, business.Display()+"_invoices.csv")
		if err := writeCSVFile(path, rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeCSVFile(path string, rows []models.ExportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Fields()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
