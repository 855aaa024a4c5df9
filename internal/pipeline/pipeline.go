// Package pipeline ties the export parser, the location classifier and the
// client resolver together into the per-file transform that turns raw CSV
// text into invoice-ready line items.
package pipeline

import (
	"log/slog"

	"invoicebooks/internal/assemble"
	"invoicebooks/internal/classify"
	"invoicebooks/internal/models"
	"invoicebooks/internal/parser"
)

// Processor runs the CSV-to-invoice transform for one batch. The client
// directory is read-only reference data supplied by the caller and refreshed
// before each batch.
type Processor struct {
	parser *parser.ExportParser
	dir    models.Directory
	logger *slog.Logger
}

func New(dir models.Directory, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		parser: parser.NewExportParser(),
		dir:    dir,
		logger: logger,
	}
}

// ProcessFile transforms one export file into fully resolved line items:
// parse, normalize, classify, resolve, synthesize the new invoice number.
// A missing table signature or an unparseable body fails the whole file;
// per-row anomalies (missing fields, unmatched locations, directory misses)
// are resolved by defaulting and never abort the file.
func (p *Processor) ProcessFile(filename string, content []byte) ([]models.LineItem, error) {
	parsed, err := p.parser.Parse(filename, content)
	if err != nil {
		return nil, err
	}

	items := parsed.Items
	for i := range items {
		item := &items[i]
		item.Business = classify.Classify(item.Location, item.JobTitle)

		res := classify.Resolve(item.Business, item.Location, p.dir)
		item.ClientName = res.ClientName
		item.ClientCode = res.ClientCode
		item.ClientID = res.ClientID
		item.LastName = res.LastName
		item.NewInvoiceNumber = assemble.SynthesizeNumber(res.ClientCode, item.InvoiceNumber)
	}

	p.logger.Info("file_processed",
		"file", filename,
		"items", len(items),
		"invoice_number", parsed.InvoiceNumber,
		"invoice_date", parsed.InvoiceDate,
	)
	return items, nil
}

// FileResult records the outcome of one file in a batch run.
type FileResult struct {
	File  string
	Items int
	Err   error
}

// ProcessBatch runs every file through the transform and merges the survivors
// into the accumulator. Files are independent: a failed file is reported in
// its result and the batch continues. The merge into batch is serialized here
// (single writer), which is the only ordering discipline the transform needs.
func (p *Processor) ProcessBatch(batch *assemble.Batch, files map[string][]byte, order []string) []FileResult {
	results := make([]FileResult, 0, len(order))
	for _, name := range order {
		items, err := p.ProcessFile(name, files[name])
		if err != nil {
			p.logger.Error("file_failed", "file", name, "error", err.Error())
			results = append(results, FileResult{File: name, Err: err})
			continue
		}
		batch.Add(items...)
		results = append(results, FileResult{File: name, Items: len(items)})
	}
	return results
}
