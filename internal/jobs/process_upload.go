package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"invoicebooks/internal/assemble"
	"invoicebooks/internal/database"
	"invoicebooks/internal/filestore"
	"invoicebooks/internal/logger"
	"invoicebooks/internal/models"
	"invoicebooks/internal/parser"
	"invoicebooks/internal/pipeline"
)

// ProcessUploadPayload is the JSON payload for process_upload jobs.
type ProcessUploadPayload struct {
	StoredFile   string `json:"stored_file"`
	OriginalName string `json:"original_name"`
}

// ProcessUploadHandler creates a job handler that runs the CSV-to-invoice
// pipeline on an uploaded export file and persists the assembled invoices.
func ProcessUploadHandler(files *filestore.Store) JobHandler {
	return func(ctx context.Context, job *models.Job, db *database.DB) error {
		log := logger.Default().With("job_id", job.ID)

		var payload ProcessUploadPayload
		if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w (%w)", err, ErrPermanent)
		}

		f, err := files.Get(payload.StoredFile)
		if err != nil {
			return fmt.Errorf("open upload: %w", err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("read upload: %w", err)
		}
		db.UpdateJobProgress(job.ID, 10)

		// The directory is refreshed from the database before every batch.
		dir, err := db.LoadDirectory()
		if err != nil {
			return fmt.Errorf("load client directory: %w", err)
		}

		proc := pipeline.New(dir, log)
		items, err := proc.ProcessFile(payload.OriginalName, content)
		if err != nil {
			var malformed *parser.MalformedInputError
			if errors.As(err, &malformed) {
				// Re-running the pipeline cannot fix a file without a table.
				return fmt.Errorf("%w: %w", err, ErrPermanent)
			}
			return err
		}
		db.UpdateJobProgress(job.ID, 50)

		batch := assemble.NewBatch()
		batch.Add(items...)

		var invoiceIDs []string
		for _, business := range batch.Businesses() {
			for _, assembled := range batch.Invoices(business) {
				inv, invItems := toRecords(business, assembled)
				id, err := db.SaveAssembledInvoice(inv, invItems)
				if err != nil {
					return fmt.Errorf("save invoice %s: %w", assembled.Number, err)
				}
				invoiceIDs = append(invoiceIDs, id)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		db.UpdateJobProgress(job.ID, 95)

		resultJSON, _ := json.Marshal(map[string]any{
			"file":        payload.OriginalName,
			"items":       len(items),
			"invoices":    len(invoiceIDs),
			"invoice_ids": invoiceIDs,
		})
		db.CompleteJob(job.ID, string(resultJSON))

		return nil
	}
}

// toRecords converts one assembled invoice into its persistence records. The
// identity fields come from the first item; all items in a group share them.
func toRecords(business models.Business, assembled assemble.Invoice) (*models.Invoice, []models.InvoiceItem) {
	inv := &models.Invoice{
		InvoiceNumber: assembled.Number,
		InvoiceDate:   assembled.InvoiceDate(),
		Business:      business,
		Subtotal:      assembled.Subtotal,
		GrandTotal:    assembled.GrandTotal,
		Status:        models.StatusPending,
	}
	if len(assembled.Items) > 0 {
		first := assembled.Items[0]
		inv.ClientName = first.ClientName
		inv.ClientCode = first.ClientCode
		inv.ClientID = first.ClientID
	}

	items := make([]models.InvoiceItem, 0, len(assembled.Items))
	for _, item := range assembled.Items {
		items = append(items, models.InvoiceItem{
			Company:             item.Company,
			JobKey:              item.JobKey,
			ReferenceNumber:     item.ReferenceNumber,
			JobTitle:            item.JobTitle,
			Location:            item.Location,
			Quantity:            parseNullInt(item.Quantity),
			Unit:                item.Unit,
			AverageCost:         parseNullFloat(item.AverageCost),
			Total:               parseNullFloat(item.Total),
			Currency:            item.Currency,
			OriginalInvoiceDate: item.OriginalInvoiceDate,
		})
	}
	return inv, items
}

// Non-numeric source values stay NULL in the database rather than zero.
func parseNullInt(s string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseNullFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}
