package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"invoicebooks/internal/database"
	"invoicebooks/internal/filestore"
	"invoicebooks/internal/handlers"
	"invoicebooks/internal/mailer"
	"invoicebooks/internal/models"
)

func newTestServer(t *testing.T) (*httptest.Server, *database.DB) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Init(); err != nil {
		t.Fatalf("init db: %v", err)
	}

	files, err := filestore.New(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}

	h := handlers.New(db, files, mailer.New(mailer.Config{}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/upload", h.Upload)
	mux.HandleFunc("GET /api/jobs/{id}", h.JobStatus)
	mux.HandleFunc("GET /api/invoices", h.InvoicesList)
	mux.HandleFunc("GET /api/invoices/{id}", h.InvoicesShow)
	mux.HandleFunc("PATCH /api/invoices/{id}/status", h.InvoicesUpdateStatus)
	mux.HandleFunc("POST /api/invoices/{id}/payments", h.PaymentsCreate)
	mux.HandleFunc("POST /api/invoices/{id}/send", h.InvoicesSend)
	mux.HandleFunc("DELETE /api/invoices/{id}", h.InvoicesDelete)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, db
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func seedInvoice(t *testing.T, db *database.DB, number string) string {
	t.Helper()

	qty := int64(2)
	cost := 50.0
	total := 100.0
	id, err := db.SaveAssembledInvoice(&models.Invoice{
		InvoiceNumber: number,
		InvoiceDate:   "07/01/2025",
		Business:      models.BusinessMcLain,
		ClientName:    "Clint McLain",
		ClientCode:    "MCL",
		Subtotal:      100,
		GrandTotal:    110,
	}, []models.InvoiceItem{{
		Company:         "Acme",
		JobKey:          "JK-1",
		ReferenceNumber: "R-1",
		JobTitle:        "Driver",
		Location:        "Mobile, AL",
		Quantity:        &qty,
		Unit:            "hours",
		AverageCost:     &cost,
		Total:           &total,
	}})
	if err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return id
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status got=%d want=200", resp.StatusCode)
	}
	if body["status"] != "OK" {
		t.Errorf("body status got=%v want=OK", body["status"])
	}
	if body["timestamp"] == "" {
		t.Error("timestamp is empty")
	}
}

func TestJobStatus_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/jobs/abc", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-numeric id status got=%d want=400", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/jobs/99999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing job status got=%d want=404", resp.StatusCode)
	}
	if body["error"] != "Job not found" {
		t.Errorf("error got=%v", body["error"])
	}
}

func TestUpload_RejectsNonCSV(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "report.pdf")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	part.Write([]byte("%PDF-1.4"))
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status got=%d want=400", resp.StatusCode)
	}
}

func TestUpload_QueuesJob(t *testing.T) {
	srv, db := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "export.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	part.Write([]byte("Invoice #INV-1\nCompany,Job Key,Reference Number\n"))
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status got=%d want=200", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			Filename string `json:"filename"`
			Status   string `json:"status"`
			JobID    int64  `json:"job_id"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Results) != 1 {
		t.Fatalf("results got=%d want=1", len(body.Results))
	}
	if body.Results[0].Status != "queued" {
		t.Errorf("result status got=%q want=queued", body.Results[0].Status)
	}

	job, err := db.GetJob(body.Results[0].JobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.JobType != "process_upload" {
		t.Errorf("job type got=%q want=process_upload", job.JobType)
	}
	if job.Status != "pending" {
		t.Errorf("job status got=%q want=pending", job.Status)
	}
}

func TestInvoices_ListShowAndStatus(t *testing.T) {
	srv, db := newTestServer(t)
	id := seedInvoice(t, db, "MCL-00123")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/invoices", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status got=%d want=200", resp.StatusCode)
	}
	invoices, ok := body["invoices"].([]any)
	if !ok || len(invoices) != 1 {
		t.Fatalf("invoices got=%v want one entry", body["invoices"])
	}
	pagination, ok := body["pagination"].(map[string]any)
	if !ok {
		t.Fatalf("pagination missing: %v", body)
	}
	if pagination["total"] != float64(1) {
		t.Errorf("pagination total got=%v want=1", pagination["total"])
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/invoices/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("show status got=%d want=200", resp.StatusCode)
	}
	invoice := body["invoice"].(map[string]any)
	if invoice["invoice_number"] != "MCL-00123" {
		t.Errorf("invoice_number got=%v", invoice["invoice_number"])
	}
	items := body["items"].([]any)
	if len(items) != 1 {
		t.Errorf("items got=%d want=1", len(items))
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/invoices/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing invoice status got=%d want=404", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/invoices/"+id+"/status",
		map[string]string{"status": "shredded"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad status code got=%d want=400", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/invoices/"+id+"/status",
		map[string]string{"status": models.StatusPaid})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status update got=%d want=200", resp.StatusCode)
	}
	inv, err := db.GetInvoice(id)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if inv.Status != models.StatusPaid {
		t.Errorf("status got=%q want=%q", inv.Status, models.StatusPaid)
	}
}

func TestPaymentsCreate(t *testing.T) {
	srv, db := newTestServer(t)
	id := seedInvoice(t, db, "MCL-00124")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/invoices/"+id+"/payments",
		map[string]any{"amount": -5})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative amount status got=%d want=400", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/invoices/"+id+"/payments",
		map[string]any{"amount": 110.0, "notes": "wire"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("payment status got=%d want=200", resp.StatusCode)
	}
	if body["fully_paid"] != true {
		t.Errorf("fully_paid got=%v want=true", body["fully_paid"])
	}

	inv, err := db.GetInvoice(id)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if inv.Status != models.StatusPaid {
		t.Errorf("status got=%q want=%q", inv.Status, models.StatusPaid)
	}
}

func TestInvoicesSend_MailNotConfigured(t *testing.T) {
	srv, db := newTestServer(t)
	id := seedInvoice(t, db, "MCL-00125")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/invoices/"+id+"/send",
		map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing email status got=%d want=400", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/invoices/"+id+"/send",
		map[string]string{"client_email": "client@example.com"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("unconfigured mail status got=%d want=503", resp.StatusCode)
	}
	if !strings.Contains(fmt.Sprint(body["error"]), "not configured") {
		t.Errorf("error got=%v", body["error"])
	}
}

func TestInvoicesDelete(t *testing.T) {
	srv, db := newTestServer(t)
	id := seedInvoice(t, db, "MCL-00126")

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/invoices/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status got=%d want=200", resp.StatusCode)
	}

	if _, err := db.GetInvoice(id); err == nil {
		t.Error("invoice still readable after delete")
	}
}
