package parser

import (
	"encoding/csv"
	"fmt"
	"strings"

	"invoicebooks/internal/models"
)

// tableSignature marks the real tabular header inside an export file. The
// decorative prose lines above it never start with this exact prefix.
const tableSignature = "Company,Job Key,Reference Number"

// sourceSummaryTotals are the Total values of the subtotal/tax trailer rows
// the export embeds at the bottom of its own table. Those rows are discarded
// before normalization.
var sourceSummaryTotals = map[string]bool{
	"Total cost":   true,
	"Tax":          true,
	"Total amount": true,
}

// MalformedInputError reports an export file without the expected CSV header
// signature. It is fatal for that file only; the rest of a batch continues.
type MalformedInputError struct {
	File string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("could not find CSV header row in %s", e.File)
}

// ParsedExport is the result of parsing one export file: the header metadata
// plus the normalized, filtered line items in source order. Items are not yet
// classified or client-resolved.
type ParsedExport struct {
	File          string
	InvoiceNumber string
	InvoiceDate   string
	Items         []models.LineItem
}

// ExportParser parses the itemized CSV billing exports.
type ExportParser struct{}

func NewExportParser() *ExportParser {
	return &ExportParser{}
}

// Parse extracts the header metadata and the tabular body from one export
// file. It returns a *MalformedInputError when the table signature is absent
// and a wrapped csv error when the body itself cannot be parsed; both abort
// this file without producing partial output.
func (p *ExportParser) Parse(filename string, content []byte) (*ParsedExport, error) {
	lines := splitLines(string(content))

	info := ExtractHeaderInfo(lines)

	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, tableSignature) {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, &MalformedInputError{File: filename}
	}

	table := strings.Join(lines[start:], "\n")
	r := csv.NewReader(strings.NewReader(table))
	r.FieldsPerRecord = -1 // trailer rows are often shorter than the header

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv table in %s: %w", filename, err)
	}
	if len(records) == 0 {
		return nil, &MalformedInputError{File: filename}
	}

	header := records[0]
	result := &ParsedExport{
		File:          filename,
		InvoiceNumber: info.InvoiceNumber,
		InvoiceDate:   info.InvoiceDate,
	}

	for _, record := range records[1:] {
		raw := make(RawRow, len(header))
		for i, name := range header {
			if i < len(record) {
				raw[name] = record[i]
			} else {
				raw[name] = ""
			}
		}

		if isSourceSummaryRow(raw) {
			continue
		}

		item := NormalizeRow(raw)
		item.InvoiceNumber = info.InvoiceNumber
		item.InvoiceDate = info.InvoiceDate
		item.OriginalInvoiceDate = info.InvoiceDate

		// Rows without a reference number and job title are embedded summary
		// or blank lines, not billable items.
		if item.ReferenceNumber == "" || item.JobTitle == "" {
			continue
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

// isSourceSummaryRow matches the export's own subtotal/tax lines: blank
// company and job key with a known label in the Total column.
func isSourceSummaryRow(raw RawRow) bool {
	return raw["Company"] == "" && raw["Job Key"] == "" && sourceSummaryTotals[raw["Total"]]
}

// splitLines splits on newlines, tolerating CRLF endings.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
