package models

import (
	"strings"
	"time"
)

// Business is the closed set of billing buckets a line item can be routed to.
// The zero value is BusinessOthers so unclassified items fall through safely.
type Business int

const (
	BusinessOthers Business = iota
	BusinessEverett
	BusinessWhittingham
	BusinessMcLain
)

// businessKeys maps the enum to the legacy string keys used in the database
// and the client directory.
var businessKeys = map[Business]string{
	BusinessOthers:      "others",
	BusinessEverett:     "everett",
	BusinessWhittingham: "whittingham",
	BusinessMcLain:      "mclain",
}

var businessDisplay = map[Business]string{
	BusinessOthers:      "Others",
	BusinessEverett:     "Everett",
	BusinessWhittingham: "Whittingham",
	BusinessMcLain:      "McLain",
}

// Key returns the legacy string key ("everett", "whittingham", "mclain",
// "others") used at the persistence boundary.
func (b Business) Key() string {
	if k, ok := businessKeys[b]; ok {
		return k
	}
	return "others"
}

// Display returns the human-readable name, used for output file names and
// workbook sheets.
func (b Business) Display() string {
	if d, ok := businessDisplay[b]; ok {
		return d
	}
	return "Others"
}

func (b Business) String() string { return b.Key() }

// ParseBusinessKey maps a legacy string key back to the enum. Unknown keys
// resolve to BusinessOthers.
func ParseBusinessKey(key string) Business {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "everett":
		return BusinessEverett
	case "whittingham":
		return BusinessWhittingham
	case "mclain":
		return BusinessMcLain
	default:
		return BusinessOthers
	}
}

// AllBusinesses returns the buckets in stable output order.
func AllBusinesses() []Business {
	return []Business{BusinessEverett, BusinessWhittingham, BusinessMcLain, BusinessOthers}
}

// LineItem is one normalized, classified, client-resolved billable row from a
// CSV export. Quantity, AverageCost and Total stay strings: numeric source
// values are reformatted in place (two decimals, truncated integer) while
// non-numeric values pass through untouched, exactly as the export demands.
type LineItem struct {
	Company         string
	JobKey          string
	ReferenceNumber string
	JobTitle        string
	Location        string
	Quantity        string
	Unit            string
	AverageCost     string
	Total           string
	Currency        string

	// Invoice metadata extracted from the free-text header of the source file.
	InvoiceNumber       string
	InvoiceDate         string
	OriginalInvoiceDate string

	// Classification and client resolution.
	Business   Business
	ClientName string
	ClientCode string
	ClientID   string
	LastName   string

	// Synthesized invoice key: "<client code>-<cleaned original number>".
	NewInvoiceNumber string
}

// ExportRow is the 11-column output layout shared by CSV and XLSX export.
// Summary/trailer rows carry their label or amount in Total with everything
// else blank.
type ExportRow struct {
	InvoiceNumber   string
	InvoiceDate     string
	Company         string
	JobKey          string
	ReferenceNumber string
	JobTitle        string
	Location        string
	Quantity        string
	Unit            string
	AverageCost     string
	Total           string
}

// ExportHeader is the column order for grouped output files.
var ExportHeader = []string{
	"Invoice Number", "Invoice Date", "Company", "Job Key", "Reference Number",
	"Job Title", "Location", "Quantity", "Unit", "Average Cost", "Total",
}

// Fields returns the row values in ExportHeader order.
func (r ExportRow) Fields() []string {
	return []string{
		r.InvoiceNumber, r.InvoiceDate, r.Company, r.JobKey, r.ReferenceNumber,
		r.JobTitle, r.Location, r.Quantity, r.Unit, r.AverageCost, r.Total,
	}
}

// Client is one billing party in the client directory. Business holds
// whatever the directory was keyed with (id or name); Locations is a
// comma-separated list of "City, ST" or bare-city entries.
type Client struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Business  string
	Locations string
	CreatedAt time.Time
}

// LocationCities returns the city part (text before the first comma) of each
// locations entry, trimmed.
func (c Client) LocationCities() []string {
	if c.Locations == "" {
		return nil
	}
	var cities []string
	for _, tok := range strings.Split(c.Locations, ",") {
		city := strings.TrimSpace(tok)
		if city != "" {
			cities = append(cities, city)
		}
	}
	return cities
}

// Directory maps a business key (id or name, the source data is inconsistent)
// to the clients filed under it.
type Directory map[string][]Client

// BusinessRecord is a row in the businesses table, managed via the API.
type BusinessRecord struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Invoice statuses.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// ValidStatus reports whether s is one of the known invoice statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Invoice is a persisted, assembled billing unit.
type Invoice struct {
	ID            string
	InvoiceNumber string
	InvoiceDate   string
	Business      Business
	ClientName    string
	ClientCode    string
	ClientID      string
	Subtotal      float64
	GrandTotal    float64
	Status        string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Aggregates populated by JOIN on list queries.
	PaymentCount int
	PaidAmount   float64
}

// BillingFee returns the markup portion of the grand total.
func (i Invoice) BillingFee() float64 {
	return i.GrandTotal - i.Subtotal
}

// InvoiceItem is a persisted line item. Quantity, AverageCost and Total are
// nullable because non-numeric source values are stored as NULL.
type InvoiceItem struct {
	ID                  string
	InvoiceID           string
	Company             string
	JobKey              string
	ReferenceNumber     string
	JobTitle            string
	Location            string
	Quantity            *int64
	Unit                string
	AverageCost         *float64
	Total               *float64
	Currency            string
	OriginalInvoiceDate string
}

type Payment struct {
	ID          string
	InvoiceID   string
	Amount      float64
	PaymentDate time.Time
	Notes       string
}

// InvoiceFilter narrows list queries.
type InvoiceFilter struct {
	Status    string
	Business  string // legacy key
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// DashboardStats are the headline numbers for the dashboard endpoint.
type DashboardStats struct {
	TotalInvoices   int     `json:"total_invoices"`
	PendingInvoices int     `json:"pending_invoices"`
	PaidInvoices    int     `json:"paid_invoices"`
	TotalAmount     float64 `json:"total_amount"`
	PendingAmount   float64 `json:"pending_amount"`
	PaidAmount      float64 `json:"paid_amount"`
}

// Job represents a background job in the queue
type Job struct {
	ID          int64
	JobType     string
	Payload     string // JSON payload
	Status      string // pending, running, completed, failed
	Progress    int    // 0-100
	Result      string // JSON result or error message
	Attempts    int
	MaxAttempts int
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}
