package pipeline_test

import (
	"errors"
	"testing"

	"invoicebooks/internal/assemble"
	"invoicebooks/internal/models"
	"invoicebooks/internal/parser"
	"invoicebooks/internal/pipeline"
)

const goodExport = `Invoice #USI25-00123
Itemization details 07/01/2025 to 07/31/2025
Company,Job Key,Reference Number,Job Title,Location,Quantity,Unit,Average Cost,Total
Acme,JK-1,R-1,Driver,"Little Rock, AR",2,hours,10,20.00
Acme,JK-2,R-2,Welder,"Huntsville, AL",1,hours,15,15.00
Acme,JK-3,R-3,Clerk,"Memphis, TN",1,hours,9,9.00
`

func TestProcessFile_EndToEnd(t *testing.T) {
	p := pipeline.New(models.Directory{}, nil)

	items, err := p.ProcessFile("july.csv", []byte(goodExport))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items got=%d want=3", len(items))
	}

	tests := []struct {
		idx      int
		business models.Business
		client   string
		number   string
	}{
		{0, models.BusinessEverett, "Danny Everett", "EVE-00123"},
		{1, models.BusinessMcLain, "Angela Pruitt", "PRU-00123"},
		{2, models.BusinessOthers, "Jeanette Hurley", "HUR-00123"},
	}
	for _, tt := range tests {
		item := items[tt.idx]
		if item.Business != tt.business {
			t.Errorf("item %d Business got=%v want=%v", tt.idx, item.Business, tt.business)
		}
		if item.ClientName != tt.client {
			t.Errorf("item %d ClientName got=%q want=%q", tt.idx, item.ClientName, tt.client)
		}
		if item.NewInvoiceNumber != tt.number {
			t.Errorf("item %d NewInvoiceNumber got=%q want=%q", tt.idx, item.NewInvoiceNumber, tt.number)
		}
	}
}

func TestProcessFile_DirectoryResolution(t *testing.T) {
	dir := models.Directory{
		"everett": {{ID: "c-7", Name: "Rita Calhoun", Business: "everett", Locations: "Little Rock"}},
	}
	p := pipeline.New(dir, nil)

	items, err := p.ProcessFile("july.csv", []byte(goodExport))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if items[0].ClientID != "c-7" {
		t.Errorf("ClientID got=%q want=%q", items[0].ClientID, "c-7")
	}
	if items[0].NewInvoiceNumber != "CAL-00123" {
		t.Errorf("NewInvoiceNumber got=%q want=%q", items[0].NewInvoiceNumber, "CAL-00123")
	}
}

func TestProcessBatch_BadFileDoesNotAbortBatch(t *testing.T) {
	p := pipeline.New(models.Directory{}, nil)
	batch := assemble.NewBatch()

	files := map[string][]byte{
		"good.csv": []byte(goodExport),
		"bad.csv":  []byte("no table signature anywhere\n"),
	}
	results := p.ProcessBatch(batch, files, []string{"bad.csv", "good.csv"})

	if len(results) != 2 {
		t.Fatalf("results got=%d want=2", len(results))
	}

	var malformed *parser.MalformedInputError
	if results[0].Err == nil || !errors.As(results[0].Err, &malformed) {
		t.Errorf("bad.csv error got=%v want MalformedInputError", results[0].Err)
	}
	if results[1].Err != nil {
		t.Errorf("good.csv error got=%v want nil", results[1].Err)
	}
	if results[1].Items != 3 {
		t.Errorf("good.csv items got=%d want=3", results[1].Items)
	}
	if batch.Len() != 3 {
		t.Errorf("batch items got=%d want=3 (only the good file merges)", batch.Len())
	}
}
