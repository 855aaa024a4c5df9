package parser

import (
	"fmt"
	"strconv"
	"strings"

	"invoicebooks/internal/models"
)

// RawRow is one parsed CSV data row, keyed by the source column names exactly
// as they appear in the file.
type RawRow map[string]string

// canonicalFields maps each canonical field to the source headers it may
// arrive under. The export occasionally flips between pretty and snake_case
// headers; the first non-empty value wins.
var canonicalFields = []struct {
	pretty string
	snake  string
	assign func(*models.LineItem, string)
}{
	{"Company", "company", func(it *models.LineItem, v string) { it.Company = v }},
	{"Job Key", "job_key", func(it *models.LineItem, v string) { it.JobKey = v }},
	{"Reference Number", "reference_number", func(it *models.LineItem, v string) { it.ReferenceNumber = v }},
	{"Job Title", "job_title", func(it *models.LineItem, v string) { it.JobTitle = v }},
	{"Location", "location", func(it *models.LineItem, v string) { it.Location = v }},
	{"Quantity", "quantity", func(it *models.LineItem, v string) { it.Quantity = v }},
	{"Unit", "unit", func(it *models.LineItem, v string) { it.Unit = v }},
	{"Average Cost", "average_cost", func(it *models.LineItem, v string) { it.AverageCost = v }},
	{"Total", "total", func(it *models.LineItem, v string) { it.Total = v }},
	{"Currency", "currency", func(it *models.LineItem, v string) { it.Currency = v }},
}

// NormalizeRow maps a raw row onto the canonical line-item fields and
// reformats the numeric ones. Absent fields default to the empty string;
// normalizing an already-canonical row is a no-op.
func NormalizeRow(raw RawRow) models.LineItem {
	var item models.LineItem
	for _, f := range canonicalFields {
		v := raw[f.pretty]
		if v == "" {
			v = raw[f.snake]
		}
		f.assign(&item, v)
	}
	formatNumericValues(&item)
	return item
}

// formatNumericValues rewrites total and average_cost to exactly two decimal
// places and quantity to its truncated integer, but only when the source
// value actually parses as a number. Empty or non-numeric values pass through
// untouched; they are never coerced to zero.
func formatNumericValues(item *models.LineItem) {
	if v, ok := parseDecimal(item.Total); ok {
		item.Total = fmt.Sprintf("%.2f", v)
	}
	if v, ok := parseDecimal(item.AverageCost); ok {
		item.AverageCost = fmt.Sprintf("%.2f", v)
	}
	if _, ok := parseDecimal(item.Quantity); ok {
		item.Quantity = strconv.Itoa(truncateInt(item.Quantity))
	}
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// truncateInt performs a base-10 leading-digits parse: "2.9" becomes 2,
// "-3.7" becomes -3. Rounding is deliberately not applied; quantity has
// always been truncated while the money fields are rounded.
func truncateInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
