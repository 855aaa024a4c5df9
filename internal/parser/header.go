package parser

import (
	"regexp"
	"strings"
)

// HeaderInfo holds the invoice metadata embedded in the free-text lines that
// precede the tabular section of an export file.
type HeaderInfo struct {
	InvoiceNumber string
	InvoiceDate   string
}

var (
	invoiceNumberRe = regexp.MustCompile(`(?i)invoice #([A-Z0-9-]+)`)
	invoiceDateRe   = regexp.MustCompile(`Itemization details\s+(.+)`)
)

// ExtractHeaderInfo scans the raw file lines for the invoice number and the
// itemization date range. The number is only looked for on the first line;
// the date on the first line containing "Itemization details". Either field
// may come back empty; that is an anomaly downstream stages must tolerate,
// not an error.
func ExtractHeaderInfo(lines []string) HeaderInfo {
	var info HeaderInfo

	if len(lines) > 0 {
		if m := invoiceNumberRe.FindStringSubmatch(lines[0]); m != nil {
			info.InvoiceNumber = m[1]
		}
	}

	for _, line := range lines {
		if !strings.Contains(line, "Itemization details") {
			continue
		}
		if m := invoiceDateRe.FindStringSubmatch(line); m != nil {
			date := strings.TrimSpace(m[1])
			info.InvoiceDate = strings.ReplaceAll(date, `"`, "")
		}
		break
	}

	return info
}
