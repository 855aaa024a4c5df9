package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"invoicebooks/internal/export"
	"invoicebooks/internal/jobs"
	"invoicebooks/internal/logger"
	"invoicebooks/internal/mailer"
	"invoicebooks/internal/models"
)

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func invoiceJSON(inv models.Invoice) map[string]any {
	return map[string]any{
		"id":             inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"invoice_date":   inv.InvoiceDate,
		"business":       inv.Business.Key(),
		"client_name":    inv.ClientName,
		"client_code":    inv.ClientCode,
		"client_id":      inv.ClientID,
		"subtotal":       inv.Subtotal,
		"grand_total":    inv.GrandTotal,
		"status":         inv.Status,
		"notes":          inv.Notes,
		"created_at":     inv.CreatedAt,
		"updated_at":     inv.UpdatedAt,
		"payment_count":  inv.PaymentCount,
		"paid_amount":    inv.PaidAmount,
	}
}

func itemJSON(item models.InvoiceItem) map[string]any {
	return map[string]any{
		"id":                    item.ID,
		"invoice_id":            item.InvoiceID,
		"company":               item.Company,
		"job_key":               item.JobKey,
		"reference_number":      item.ReferenceNumber,
		"job_title":             item.JobTitle,
		"location":              item.Location,
		"quantity":              item.Quantity,
		"unit":                  item.Unit,
		"average_cost":          item.AverageCost,
		"total":                 item.Total,
		"original_invoice_date": item.OriginalInvoiceDate,
	}
}

func paymentJSON(p models.Payment) map[string]any {
	return map[string]any{
		"id":           p.ID,
		"invoice_id":   p.InvoiceID,
		"amount":       p.Amount,
		"payment_date": p.PaymentDate,
		"notes":        p.Notes,
	}
}

// Upload receives one or more CSV exports and queues a processing job
// for each. Processing runs in the background; clients poll the job
// endpoint with the returned IDs.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	l := logger.FromContext(r.Context())

	// 32MB covers a full month of exports comfortably.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	uploads := r.MultipartForm.File["files"]
	if len(uploads) == 0 {
		respondError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	var results []map[string]any
	for _, header := range uploads {
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("%s is not a CSV file", header.Filename))
			return
		}

		file, err := header.Open()
		if err != nil {
			l.Error("upload_open_error", "filename", header.Filename, "error", err.Error())
			respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}

		stored, err := h.files.Save(header.Filename, file)
		file.Close()
		if err != nil {
			l.Error("upload_save_error", "filename", header.Filename, "error", err.Error())
			respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
			return
		}

		jobID, err := h.db.EnqueueJob("process_upload", jobs.ProcessUploadPayload{
			StoredFile:   stored,
			OriginalName: header.Filename,
		})
		if err != nil {
			h.files.Delete(stored)
			l.Error("upload_job_error", "filename", header.Filename, "error", err.Error())
			respondError(w, http.StatusInternalServerError, "Failed to queue processing job")
			return
		}

		l.Info("upload_queued", "filename", header.Filename, "stored_file", stored, "job_id", jobID)
		results = append(results, map[string]any{
			"filename": header.Filename,
			"status":   "queued",
			"job_id":   jobID,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Files queued for processing",
		"results": results,
	})
}

// InvoicesList returns invoices with filtering and pagination.
func (h *Handler) InvoicesList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filter := models.InvoiceFilter{
		Status:    q.Get("status"),
		Business:  q.Get("business"),
		Search:    q.Get("search"),
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	invoices, total, err := h.db.ListInvoices(filter)
	if err != nil {
		dbError(w, r, "invoice_list_error", err)
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	pages := (total + filter.Limit - 1) / filter.Limit

	out := make([]map[string]any, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoiceJSON(inv))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"invoices": out,
		"pagination": map[string]any{
			"page":  filter.Page,
			"limit": filter.Limit,
			"total": total,
			"pages": pages,
		},
	})
}

// InvoicesShow returns a single invoice with its items and payments.
func (h *Handler) InvoicesShow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	invoice, err := h.db.GetInvoice(id)
	if err != nil {
		dbError(w, r, "invoice_get_error", err)
		return
	}

	items, err := h.db.GetInvoiceItems(id)
	if err != nil {
		dbError(w, r, "invoice_items_error", err)
		return
	}

	payments, err := h.db.GetPayments(id)
	if err != nil {
		dbError(w, r, "invoice_payments_error", err)
		return
	}

	itemsOut := make([]map[string]any, 0, len(items))
	for _, item := range items {
		itemsOut = append(itemsOut, itemJSON(item))
	}
	paymentsOut := make([]map[string]any, 0, len(payments))
	for _, p := range payments {
		paymentsOut = append(paymentsOut, paymentJSON(p))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"invoice":  invoiceJSON(*invoice),
		"items":    itemsOut,
		"payments": paymentsOut,
	})
}

// InvoicesUpdateStatus sets the invoice status.
func (h *Handler) InvoicesUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !models.ValidStatus(body.Status) {
		respondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	if err := h.db.UpdateInvoiceStatus(id, body.Status); err != nil {
		dbError(w, r, "invoice_status_error", err)
		return
	}

	logger.FromContext(r.Context()).Info("invoice_status_updated", "invoice_id", id, "status", body.Status)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Status updated successfully"})
}

// InvoicesDelete removes an invoice with its items and payments.
func (h *Handler) InvoicesDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.db.DeleteInvoice(id); err != nil {
		dbError(w, r, "invoice_delete_error", err)
		return
	}

	logger.FromContext(r.Context()).Info("invoice_deleted", "invoice_id", id)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Invoice deleted"})
}

// PaymentsCreate records a payment against an invoice. The invoice flips
// to paid once recorded payments cover the grand total.
func (h *Handler) PaymentsCreate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body struct {
		Amount float64 `json:"amount"`
		Notes  string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid payment amount")
		return
	}

	paymentID, fullyPaid, err := h.db.CreatePayment(id, body.Amount, body.Notes)
	if err != nil {
		dbError(w, r, "payment_create_error", err)
		return
	}

	logger.FromContext(r.Context()).Info("payment_recorded",
		"invoice_id", id, "payment_id", paymentID, "amount", body.Amount, "fully_paid", fullyPaid)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Payment recorded successfully",
		"payment_id": paymentID,
		"fully_paid": fullyPaid,
	})
}

// InvoicesSend emails the rendered invoice to the client and marks the
// invoice as sent.
func (h *Handler) InvoicesSend(w http.ResponseWriter, r *http.Request) {
	l := logger.FromContext(r.Context())
	id := r.PathValue("id")

	var body struct {
		ClientEmail string `json:"client_email"`
		ClientName  string `json:"client_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.ClientEmail == "" {
		respondError(w, http.StatusBadRequest, "Client email is required")
		return
	}

	invoice, err := h.db.GetInvoice(id)
	if err != nil {
		dbError(w, r, "invoice_send_get_error", err)
		return
	}
	items, err := h.db.GetInvoiceItems(id)
	if err != nil {
		dbError(w, r, "invoice_send_items_error", err)
		return
	}

	if body.ClientName != "" {
		invoice.ClientName = body.ClientName
	}

	if err := h.mail.SendInvoice(body.ClientEmail, invoice, items); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			respondError(w, http.StatusServiceUnavailable, "Email is not configured")
			return
		}
		l.Error("invoice_send_error", "invoice_id", id, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to send invoice email")
		return
	}

	if err := h.db.UpdateInvoiceStatus(id, models.StatusSent); err != nil {
		l.Error("invoice_send_status_error", "invoice_id", id, "error", err.Error())
	}

	l.Info("invoice_sent", "invoice_id", id, "recipient", body.ClientEmail)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Invoice sent successfully"})
}

// InvoicesMerge builds a custom invoice from the items of the given
// source invoices. The sources are left untouched.
func (h *Handler) InvoicesMerge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		InvoiceIDs    []string `json:"invoice_ids"`
		InvoiceNumber string   `json:"invoice_number"`
		InvoiceDate   string   `json:"invoice_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body.InvoiceIDs) < 2 {
		respondError(w, http.StatusBadRequest, "At least two invoices are required")
		return
	}
	if body.InvoiceNumber == "" {
		respondError(w, http.StatusBadRequest, "Invoice number is required")
		return
	}

	mergedID, err := h.db.MergeInvoices(body.InvoiceIDs, body.InvoiceNumber, body.InvoiceDate)
	if err != nil {
		dbError(w, r, "invoice_merge_error", err)
		return
	}

	logger.FromContext(r.Context()).Info("invoices_merged",
		"merged_id", mergedID, "invoice_number", body.InvoiceNumber, "sources", len(body.InvoiceIDs))
	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Invoices merged successfully",
		"invoice_id": mergedID,
	})
}

// InvoicesExport streams the invoice as an XLSX workbook.
func (h *Handler) InvoicesExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	invoice, err := h.db.GetInvoice(id)
	if err != nil {
		dbError(w, r, "invoice_export_get_error", err)
		return
	}
	items, err := h.db.GetInvoiceItems(id)
	if err != nil {
		dbError(w, r, "invoice_export_items_error", err)
		return
	}

	data, err := export.InvoiceWorkbook(*invoice, items)
	if err != nil {
		logger.FromContext(r.Context()).Error("invoice_export_error", "invoice_id", id, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to build workbook")
		return
	}

	filename := fmt.Sprintf("invoice_%s.xlsx", invoice.InvoiceNumber)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}
