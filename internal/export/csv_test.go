package export_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"invoicebooks/internal/assemble"
	"invoicebooks/internal/export"
	"invoicebooks/internal/models"
)

func TestWriteGroupedCSV(t *testing.T) {
	batch := assemble.NewBatch()
	batch.Add(
		models.LineItem{
			Business:         models.BusinessMcLain,
			NewInvoiceNumber: "MCL-1",
			InvoiceDate:      "07/01/2025",
			Company:          "Acme",
			JobKey:           "JK-1",
			ReferenceNumber:  "R-1",
			JobTitle:         "Driver",
			Location:         "Mobile, AL",
			Quantity:         "2",
			Unit:             "hours",
			AverageCost:      "10.00",
			Total:            "20.00",
		},
		models.LineItem{
			Business:         models.BusinessEverett,
			NewInvoiceNumber: "EVE-1",
			ReferenceNumber:  "R-2",
			JobTitle:         "Clerk",
			Total:            "5.00",
		},
	)

	dir := t.TempDir()
	written, err := export.WriteGroupedCSV(dir, batch)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	// Everett writes first, then McLain; only non-empty buckets get a file.
	want := []string{
		filepath.Join(dir, "Everett_invoices.csv"),
		filepath.Join(dir, "McLain_invoices.csv"),
	}
	if len(written) != len(want) {
		t.Fatalf("written got=%v want=%v", written, want)
	}
	for i := range want {
		if written[i] != want[i] {
			t.Fatalf("written got=%v want=%v", written, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "Whittingham_invoices.csv")); !os.IsNotExist(err) {
		t.Error("empty bucket produced a file")
	}

	f, err := os.Open(written[1])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	// Header + 1 item + 4 summary rows + separator.
	if len(records) != 7 {
		t.Fatalf("records got=%d want=7", len(records))
	}
	for i, name := range models.ExportHeader {
		if records[0][i] != name {
			t.Fatalf("header[%d] got=%q want=%q", i, records[0][i], name)
		}
	}
	if records[1][0] != "MCL-1" {
		t.Errorf("item InvoiceNumber got=%q want=%q", records[1][0], "MCL-1")
	}
	if records[2][10] != "SUBTOTAL - Invoice MCL-1" {
		t.Errorf("subtotal label got=%q", records[2][10])
	}
	if records[3][10] != "20.00" {
		t.Errorf("subtotal got=%q want=%q", records[3][10], "20.00")
	}
	if records[5][10] != "22.00" {
		t.Errorf("grand total got=%q want=%q", records[5][10], "22.00")
	}
}
