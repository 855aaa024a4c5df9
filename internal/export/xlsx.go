package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"invoicebooks/internal/assemble"
	"invoicebooks/internal/models"
)

// WriteWorkbook writes the whole batch to one XLSX workbook with a sheet per
// business that received items.
func WriteWorkbook(path string, batch *assemble.Batch) error {
	f := excelize.NewFile()
	defer f.Close()

	businesses := batch.Businesses()
	if len(businesses) == 0 {
		return fmt.Errorf("nothing to export")
	}

	for i, business := range businesses {
		sheet := business.Display()
		if i == 0 {
			// Rename the default sheet instead of leaving an empty "Sheet1".
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		rows := assemble.Rows(batch.Invoices(business))
		if err := writeSheet(f, sheet, rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// InvoiceWorkbook renders one persisted invoice (items plus totals) as XLSX
// bytes for download.
func InvoiceWorkbook(inv models.Invoice, items []models.InvoiceItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoice"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{
		"Reference Number", "Job Title", "Location", "Quantity", "Unit", "Average Cost", "Total",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, item := range items {
		values := []interface{}{
			item.ReferenceNumber, item.JobTitle, item.Location,
			nullableInt(item.Quantity), item.Unit,
			nullableFloat(item.AverageCost), nullableFloat(item.Total),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write item row: %w", err)
		}
		row++
	}

	row++ // blank separator before totals
	totals := [][]interface{}{
		{"Subtotal", inv.Subtotal},
		{"Billing Fee (10%)", inv.BillingFee()},
		{"Grand Total", inv.GrandTotal},
	}
	for _, t := range totals {
		cell, _ := excelize.CoordinatesToCellName(6, row)
		if err := f.SetSheetRow(sheet, cell, &t); err != nil {
			return nil, fmt.Errorf("write totals: %w", err)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, rows []models.ExportRow) error {
	header := make([]interface{}, len(models.ExportHeader))
	for i, h := range models.ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		fields := row.Fields()
		values := make([]interface{}, len(fields))
		for j, v := range fields {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

func nullableInt(p *int64) interface{} {
	if p == nil {
		return ""
	}
	return *p
}

func nullableFloat(p *float64) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
