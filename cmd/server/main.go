package main

import (
	"fmt"
	"net/http"
	"os"

	"invoicebooks/internal/config"
	"invoicebooks/internal/database"
	"invoicebooks/internal/filestore"
	"invoicebooks/internal/handlers"
	"invoicebooks/internal/jobs"
	"invoicebooks/internal/logger"
	"invoicebooks/internal/mailer"
	"invoicebooks/internal/version"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("InvoiceBooks %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
		os.Exit(0)
	}

	// Initialize logger first
	logger.Init()
	log := logger.Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error("config_load_failed", "path", configPath, "error", err.Error())
		os.Exit(1)
	}

	// Open database
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Error("database_open_failed", "path", cfg.DBPath, "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	// Initialize schema
	if err := db.Init(); err != nil {
		log.Error("database_init_failed", "error", err.Error())
		os.Exit(1)
	}

	// Initialize filestore
	files, err := filestore.New(cfg.UploadsDir)
	if err != nil {
		log.Error("filestore_init_failed", "path", cfg.UploadsDir, "error", err.Error())
		os.Exit(1)
	}

	mail := mailer.New(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	if !mail.Enabled() {
		log.Warn("mail_disabled", "reason", "no SMTP host configured")
	}

	// Initialize and start job worker
	worker := jobs.NewWorker(db, log)
	worker.Register("process_upload", jobs.ProcessUploadHandler(files))
	worker.Start()
	defer worker.Stop()

	// Initialize handlers
	h := handlers.New(db, files, mail)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/version", h.Version)
	mux.HandleFunc("GET /api/dashboard", h.Dashboard)

	// Uploads and background jobs
	mux.HandleFunc("POST /api/upload", h.Upload)
	mux.HandleFunc("GET /api/jobs/{id}", h.JobStatus)

	// Invoices
	mux.HandleFunc("GET /api/invoices", h.InvoicesList)
	mux.HandleFunc("POST /api/invoices/merge", h.InvoicesMerge)
	mux.HandleFunc("GET /api/invoices/{id}", h.InvoicesShow)
	mux.HandleFunc("DELETE /api/invoices/{id}", h.InvoicesDelete)
	mux.HandleFunc("PATCH /api/invoices/{id}/status", h.InvoicesUpdateStatus)
	mux.HandleFunc("POST /api/invoices/{id}/payments", h.PaymentsCreate)
	mux.HandleFunc("POST /api/invoices/{id}/send", h.InvoicesSend)
	mux.HandleFunc("GET /api/invoices/{id}/export", h.InvoicesExport)

	// Client directory
	mux.HandleFunc("GET /api/clients", h.ClientsList)
	mux.HandleFunc("POST /api/clients", h.ClientsCreate)
	mux.HandleFunc("GET /api/clients/{id}", h.ClientsShow)
	mux.HandleFunc("PUT /api/clients/{id}", h.ClientsUpdate)
	mux.HandleFunc("DELETE /api/clients/{id}", h.ClientsDelete)

	// Businesses
	mux.HandleFunc("GET /api/businesses", h.BusinessesList)
	mux.HandleFunc("POST /api/businesses", h.BusinessesCreate)
	mux.HandleFunc("DELETE /api/businesses/{id}", h.BusinessesDelete)

	handler := logger.HTTPMiddleware(mux)

	log.Info("server_starting", "addr", cfg.Addr, "version", version.Version)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}
