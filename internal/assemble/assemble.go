// Package assemble groups resolved line items into invoices, computes the
// subtotal and fixed-markup grand total, and emits the export row layout with
// per-invoice summary trailers.
package assemble

import (
	"fmt"
	"strconv"
	"strings"

	"invoicebooks/internal/models"
)

// MarkupRate is the fixed billing fee applied on top of every invoice
// subtotal. It is not configurable.
const MarkupRate = 1.10

// legacyNumberPrefix is stripped from source invoice numbers before the
// client code is prepended.
const legacyNumberPrefix = "USI25"

// SynthesizeNumber builds the new invoice number from a client code and the
// original number extracted from the export header: the legacy prefix (and
// its trailing dash) is stripped and the client code prepended. An empty
// original number yields "<code>-".
func SynthesizeNumber(clientCode, original string) string {
	cleaned := strings.TrimSpace(original)
	cleaned = strings.TrimPrefix(cleaned, legacyNumberPrefix)
	cleaned = strings.TrimPrefix(cleaned, "-")
	return clientCode + "-" + cleaned
}

// Invoice is one assembled billing unit: the items sharing a synthesized
// invoice number, in source order, with computed totals.
type Invoice struct {
	Number     string
	Items      []models.LineItem
	Subtotal   float64
	GrandTotal float64
}

// InvoiceDate returns the invoice date carried by the first item, which is
// the date extracted from the source file header.
func (inv Invoice) InvoiceDate() string {
	if len(inv.Items) == 0 {
		return ""
	}
	return inv.Items[0].InvoiceDate
}

// Assemble groups items by their synthesized invoice number, preserving
// source order within each group and first-appearance order across groups.
// Items with a non-numeric or empty total contribute zero to the subtotal.
func Assemble(items []models.LineItem) []Invoice {
	var order []string
	groups := make(map[string][]models.LineItem)
	for _, item := range items {
		num := item.NewInvoiceNumber
		if _, seen := groups[num]; !seen {
			order = append(order, num)
		}
		groups[num] = append(groups[num], item)
	}

	invoices := make([]Invoice, 0, len(order))
	for _, num := range order {
		group := groups[num]
		var subtotal float64
		for _, item := range group {
			if v, err := strconv.ParseFloat(strings.TrimSpace(item.Total), 64); err == nil {
				subtotal += v
			}
		}
		invoices = append(invoices, Invoice{
			Number:     num,
			Items:      group,
			Subtotal:   subtotal,
			GrandTotal: subtotal * MarkupRate,
		})
	}
	return invoices
}

// Rows flattens assembled invoices into the export layout: each invoice's
// items followed by the four summary rows (subtotal label and amount, grand
// total label and amount) and one blank separator row.
func Rows(invoices []Invoice) []models.ExportRow {
	var rows []models.ExportRow
	for _, inv := range invoices {
		for _, item := range inv.Items {
			rows = append(rows, itemRow(item))
		}
		rows = append(rows,
			summaryRow(fmt.Sprintf("SUBTOTAL - Invoice %s", inv.Number)),
			summaryRow(fmt.Sprintf("%.2f", inv.Subtotal)),
			summaryRow(fmt.Sprintf("GRAND TOTAL + 10%% - Invoice %s", inv.Number)),
			summaryRow(fmt.Sprintf("%.2f", inv.GrandTotal)),
			summaryRow(""),
		)
	}
	return rows
}

func itemRow(item models.LineItem) models.ExportRow {
	return models.ExportRow{
		InvoiceNumber:   item.NewInvoiceNumber,
		InvoiceDate:     item.InvoiceDate,
		Company:         item.Company,
		JobKey:          item.JobKey,
		ReferenceNumber: item.ReferenceNumber,
		JobTitle:        item.JobTitle,
		Location:        item.Location,
		Quantity:        item.Quantity,
		Unit:            item.Unit,
		AverageCost:     item.AverageCost,
		Total:           item.Total,
	}
}

// summaryRow builds a trailer row: every field blank except Total.
func summaryRow(total string) models.ExportRow {
	return models.ExportRow{Total: total}
}
