package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"invoicebooks/internal/models"
)

// sortColumns whitelists the ORDER BY targets for invoice list queries.
var sortColumns = map[string]string{
	"created_at":     "i.created_at",
	"updated_at":     "i.updated_at",
	"invoice_date":   "i.invoice_date",
	"invoice_number": "i.invoice_number",
	"subtotal":       "i.subtotal",
	"grand_total":    "i.grand_total",
	"status":         "i.status",
}

// SaveAssembledInvoice persists one assembled invoice with its items. When an
// invoice with the same number already exists (the same synthesized key seen
// in an earlier batch), the items are appended to it and its totals
// recomputed; that is how merged invoices accumulate.
func (db *DB) SaveAssembledInvoice(inv *models.Invoice, items []models.InvoiceItem) (string, error) {
	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var invoiceID string
	var subtotal float64
	err = tx.QueryRow(`SELECT id, subtotal FROM invoices WHERE invoice_number = ?`, inv.InvoiceNumber).
		Scan(&invoiceID, &subtotal)
	switch {
	case err == sql.ErrNoRows:
		invoiceID = uuid.NewString()
		_, err = tx.Exec(`
			INSERT INTO invoices (id, invoice_number, invoice_date, business, client_name, client_code, client_id, subtotal, grand_total)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, invoiceID, inv.InvoiceNumber, inv.InvoiceDate, inv.Business.Key(),
			inv.ClientName, inv.ClientCode, inv.ClientID, inv.Subtotal, inv.GrandTotal)
		if err != nil {
			return "", fmt.Errorf("insert invoice: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("query invoice by number: %w", err)
	default:
		subtotal += inv.Subtotal
		_, err = tx.Exec(`
			UPDATE invoices
			SET subtotal = ?, grand_total = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, subtotal, subtotal*1.10, invoiceID)
		if err != nil {
			return "", fmt.Errorf("update invoice totals: %w", err)
		}
	}

	for i := range items {
		if err := insertItem(tx, invoiceID, &items[i]); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return invoiceID, nil
}

func insertItem(tx *sql.Tx, invoiceID string, item *models.InvoiceItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.InvoiceID = invoiceID
	_, err := tx.Exec(`
		INSERT INTO invoice_items (id, invoice_id, company, job_key, reference_number, job_title,
			location, quantity, unit, average_cost, total, currency, original_invoice_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, invoiceID, item.Company, item.JobKey, item.ReferenceNumber, item.JobTitle,
		item.Location, item.Quantity, item.Unit, item.AverageCost, item.Total,
		item.Currency, item.OriginalInvoiceDate)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// ListInvoices returns a page of invoices matching the filter plus the total
// match count for pagination.
func (db *DB) ListInvoices(filter models.InvoiceFilter) ([]models.Invoice, int, error) {
	var conditions []string
	var params []any

	if filter.Status != "" {
		conditions = append(conditions, "i.status = ?")
		params = append(params, filter.Status)
	}
	if filter.Business != "" {
		conditions = append(conditions, "i.business = ?")
		params = append(params, filter.Business)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(i.invoice_number LIKE ? OR i.invoice_date LIKE ? OR i.client_name LIKE ?)")
		like := "%" + filter.Search + "%"
		params = append(params, like, like, like)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM invoices i"+where, params...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	sortBy, ok := sortColumns[filter.SortBy]
	if !ok {
		sortBy = "i.created_at"
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	query := `
		SELECT i.id, i.invoice_number, i.invoice_date, i.business, i.client_name, i.client_code, i.client_id,
			   i.subtotal, i.grand_total, i.status, i.notes, i.created_at, i.updated_at,
			   COUNT(p.id), COALESCE(SUM(p.amount), 0)
		FROM invoices i
		LEFT JOIN payments p ON p.invoice_id = i.id
	` + where + `
		GROUP BY i.id
		ORDER BY ` + sortBy + ` ` + order + `
		LIMIT ? OFFSET ?`
	params = append(params, limit, (page-1)*limit)

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func scanInvoice(rows *sql.Rows) (models.Invoice, error) {
	var inv models.Invoice
	var business string
	if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.InvoiceDate, &business,
		&inv.ClientName, &inv.ClientCode, &inv.ClientID,
		&inv.Subtotal, &inv.GrandTotal, &inv.Status, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.PaymentCount, &inv.PaidAmount); err != nil {
		return inv, fmt.Errorf("scan invoice: %w", err)
	}
	inv.Business = models.ParseBusinessKey(business)
	return inv, nil
}

// GetInvoice returns a single invoice by ID.
func (db *DB) GetInvoice(id string) (*models.Invoice, error) {
	var inv models.Invoice
	var business string
	err := db.QueryRow(`
		SELECT i.id, i.invoice_number, i.invoice_date, i.business, i.client_name, i.client_code, i.client_id,
			   i.subtotal, i.grand_total, i.status, i.notes, i.created_at, i.updated_at,
			   COUNT(p.id), COALESCE(SUM(p.amount), 0)
		FROM invoices i
		LEFT JOIN payments p ON p.invoice_id = i.id
		WHERE i.id = ?
		GROUP BY i.id
	`, id).Scan(&inv.ID, &inv.InvoiceNumber, &inv.InvoiceDate, &business,
		&inv.ClientName, &inv.ClientCode, &inv.ClientID,
		&inv.Subtotal, &inv.GrandTotal, &inv.Status, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.PaymentCount, &inv.PaidAmount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invoice not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query invoice: %w", err)
	}
	inv.Business = models.ParseBusinessKey(business)
	return &inv, nil
}

// GetInvoiceItems returns the line items of an invoice in insertion order.
func (db *DB) GetInvoiceItems(invoiceID string) ([]models.InvoiceItem, error) {
	rows, err := db.Query(`
		SELECT id, invoice_id, company, job_key, reference_number, job_title,
			   location, quantity, unit, average_cost, total, currency, original_invoice_date
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY rowid
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("query invoice items: %w", err)
	}
	defer rows.Close()

	var items []models.InvoiceItem
	for rows.Next() {
		var item models.InvoiceItem
		var quantity sql.NullInt64
		var avgCost, total sql.NullFloat64
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Company, &item.JobKey,
			&item.ReferenceNumber, &item.JobTitle, &item.Location, &quantity,
			&item.Unit, &avgCost, &total, &item.Currency, &item.OriginalInvoiceDate); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		if quantity.Valid {
			item.Quantity = &quantity.Int64
		}
		if avgCost.Valid {
			item.AverageCost = &avgCost.Float64
		}
		if total.Valid {
			item.Total = &total.Float64
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateInvoiceStatus sets the invoice status.
func (db *DB) UpdateInvoiceStatus(id, status string) error {
	result, err := db.Exec(`
		UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, id)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("invoice not found")
	}
	return nil
}

// DeleteInvoice removes an invoice with its items and payments.
func (db *DB) DeleteInvoice(id string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM payments WHERE invoice_id = ?`, id); err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM invoice_items WHERE invoice_id = ?`, id); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("invoice not found")
	}
	return tx.Commit()
}

// MergeInvoices builds a custom invoice from the items of the given source
// invoices. Item copies keep their original_invoice_date; the sources are
// left untouched. Returns the new invoice's ID.
func (db *DB) MergeInvoices(sourceIDs []string, invoiceNumber, invoiceDate string) (string, error) {
	if len(sourceIDs) == 0 {
		return "", fmt.Errorf("no source invoices")
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var business, clientName, clientCode, clientID string
	var sourceNumbers []string
	var subtotal float64

	for _, srcID := range sourceIDs {
		var num, bus, cname, ccode, cid string
		var sub float64
		err := tx.QueryRow(`
			SELECT invoice_number, business, client_name, client_code, client_id, subtotal
			FROM invoices WHERE id = ?
		`, srcID).Scan(&num, &bus, &cname, &ccode, &cid, &sub)
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("invoice %s not found", srcID)
		}
		if err != nil {
			return "", fmt.Errorf("query source invoice: %w", err)
		}
		sourceNumbers = append(sourceNumbers, num)
		subtotal += sub
		// First source provides the merged invoice's identity fields.
		if business == "" {
			business, clientName, clientCode, clientID = bus, cname, ccode, cid
		}
	}

	newID := uuid.NewString()
	notes := "Merged from " + strings.Join(sourceNumbers, ", ")
	_, err = tx.Exec(`
		INSERT INTO invoices (id, invoice_number, invoice_date, business, client_name, client_code, client_id, subtotal, grand_total, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, newID, invoiceNumber, invoiceDate, business, clientName, clientCode, clientID,
		subtotal, subtotal*1.10, notes)
	if err != nil {
		return "", fmt.Errorf("insert merged invoice: %w", err)
	}

	for _, srcID := range sourceIDs {
		_, err = tx.Exec(`
			INSERT INTO invoice_items (id, invoice_id, company, job_key, reference_number, job_title,
				location, quantity, unit, average_cost, total, currency, original_invoice_date)
			SELECT lower(hex(randomblob(16))), ?, company, job_key, reference_number, job_title,
				location, quantity, unit, average_cost, total, currency, original_invoice_date
			FROM invoice_items WHERE invoice_id = ?
		`, newID, srcID)
		if err != nil {
			return "", fmt.Errorf("copy items from %s: %w", srcID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return newID, nil
}
