package database

import (
	"fmt"

	"github.com/google/uuid"

	"invoicebooks/internal/models"
)

// CreatePayment records a payment against an invoice and marks the invoice
// paid when the recorded payments cover its grand total. Returns the payment
// ID and whether the invoice flipped to paid.
func (db *DB) CreatePayment(invoiceID string, amount float64, notes string) (string, bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return "", false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var grandTotal float64
	if err := tx.QueryRow(`SELECT grand_total FROM invoices WHERE id = ?`, invoiceID).Scan(&grandTotal); err != nil {
		return "", false, fmt.Errorf("query invoice: %w", err)
	}

	paymentID := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO payments (id, invoice_id, amount, notes) VALUES (?, ?, ?, ?)
	`, paymentID, invoiceID, amount, notes)
	if err != nil {
		return "", false, fmt.Errorf("insert payment: %w", err)
	}

	var totalPaid float64
	if err := tx.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ?
	`, invoiceID).Scan(&totalPaid); err != nil {
		return "", false, fmt.Errorf("sum payments: %w", err)
	}

	fullyPaid := totalPaid >= grandTotal
	if fullyPaid {
		_, err = tx.Exec(`
			UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
		`, models.StatusPaid, invoiceID)
		if err != nil {
			return "", false, fmt.Errorf("mark invoice paid: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit: %w", err)
	}
	return paymentID, fullyPaid, nil
}

// GetPayments returns all payments for an invoice, oldest first.
func (db *DB) GetPayments(invoiceID string) ([]models.Payment, error) {
	rows, err := db.Query(`
		SELECT id, invoice_id, amount, payment_date, notes
		FROM payments
		WHERE invoice_id = ?
		ORDER BY payment_date, id
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentDate, &p.Notes); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetDashboardStats returns the headline invoice counters and amounts.
func (db *DB) GetDashboardStats() (*models.DashboardStats, error) {
	var stats models.DashboardStats
	err := db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'paid' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(grand_total), 0),
			COALESCE(SUM(CASE WHEN status IN ('pending', 'sent') THEN grand_total ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'paid' THEN grand_total ELSE 0 END), 0)
		FROM invoices
	`).Scan(&stats.TotalInvoices, &stats.PendingInvoices, &stats.PaidInvoices,
		&stats.TotalAmount, &stats.PendingAmount, &stats.PaidAmount)
	if err != nil {
		return nil, fmt.Errorf("query dashboard stats: %w", err)
	}
	return &stats, nil
}
