// Package mailer renders and sends invoice emails over SMTP.
package mailer

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"invoicebooks/internal/models"
)

//go:embed template.html
var invoiceTemplate string

var ErrNotConfigured = errors.New("mail is not configured")

// Config carries the SMTP settings needed to send mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Mailer struct {
	cfg     Config
	tmpl    *template.Template
	printer *message.Printer
}

func New(cfg Config) *Mailer {
	return &Mailer{
		cfg:     cfg,
		tmpl:    template.Must(template.New("invoice").Parse(invoiceTemplate)),
		printer: message.NewPrinter(language.AmericanEnglish),
	}
}

// Enabled reports whether SMTP settings are present. When false,
// SendInvoice returns ErrNotConfigured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

type itemRow struct {
	ReferenceNumber string
	JobTitle        string
	Location        string
	BillingDate     string
	Quantity        string
	Unit            string
	AverageCost     string
	Total           string
}

type emailData struct {
	ClientName string
	DateRange  string
	Items      []itemRow
	Subtotal   string
	BillingFee string
	GrandTotal string
}

// SendInvoice renders the invoice email and delivers it to the recipient.
// The caller is responsible for marking the invoice as sent afterwards.
func (m *Mailer) SendInvoice(to string, invoice *models.Invoice, items []models.InvoiceItem) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}
	if to == "" {
		return errors.New("recipient address is empty")
	}

	clientName := invoice.ClientName
	if clientName == "" {
		clientName = "The Clint McLain Agencies"
	}

	data := emailData{
		ClientName: clientName,
		DateRange:  dateRange(invoice, items),
		Subtotal:   m.currency(invoice.Subtotal),
		BillingFee: m.currency(invoice.BillingFee()),
		GrandTotal: m.currency(invoice.GrandTotal),
	}
	for _, item := range items {
		row := itemRow{
			ReferenceNumber: item.ReferenceNumber,
			JobTitle:        item.JobTitle,
			Location:        item.Location,
			BillingDate:     invoice.InvoiceDate,
			Unit:            item.Unit,
		}
		if item.Quantity != nil {
			row.Quantity = fmt.Sprintf("%d", *item.Quantity)
		}
		if item.AverageCost != nil {
			row.AverageCost = m.currency(*item.AverageCost)
		}
		if item.Total != nil {
			row.Total = m.currency(*item.Total)
		}
		data.Items = append(data.Items, row)
	}

	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render invoice email: %w", err)
	}

	subject := fmt.Sprintf("Invoice %s - %s", invoice.InvoiceNumber, clientName)
	msg := buildMessage(m.cfg.From, to, subject, body.String())

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send invoice email: %w", err)
	}
	return nil
}

func (m *Mailer) currency(v float64) string {
	return m.printer.Sprintf("$%.2f", v)
}

// dateRange mirrors the invoice header line: a single date when the
// invoice covers one billing date, otherwise "from to to".
func dateRange(invoice *models.Invoice, items []models.InvoiceItem) string {
	dates := make(map[string]bool)
	for _, item := range items {
		if item.OriginalInvoiceDate != "" {
			dates[item.OriginalInvoiceDate] = true
		}
	}
	if len(dates) <= 1 {
		if invoice.InvoiceDate != "" {
			return invoice.InvoiceDate
		}
		return time.Now().Format("01/02/2006")
	}
	var min, max string
	for d := range dates {
		if min == "" || d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min + " to " + max
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
