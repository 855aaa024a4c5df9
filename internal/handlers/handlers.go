package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"invoicebooks/internal/database"
	"invoicebooks/internal/filestore"
	"invoicebooks/internal/logger"
	"invoicebooks/internal/mailer"
	"invoicebooks/internal/version"
)

type Handler struct {
	db    *database.DB
	files *filestore.Store
	mail  *mailer.Mailer
}

func New(db *database.DB, files *filestore.Store, mail *mailer.Mailer) *Handler {
	return &Handler{
		db:    db,
		files: files,
		mail:  mail,
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// dbError maps a database error onto a 404 or 500 response.
func dbError(w http.ResponseWriter, r *http.Request, event string, err error) {
	logger.FromContext(r.Context()).Error(event, "error", err.Error())
	if strings.Contains(err.Error(), "not found") {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "Database error")
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Version reports the build version.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"build_time": version.BuildTime,
		"git_commit": version.GitCommit,
	})
}

// Dashboard returns the headline invoice and payment numbers.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetDashboardStats()
	if err != nil {
		dbError(w, r, "dashboard_stats_error", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// JobStatus returns the status of a background job as JSON (for polling)
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.db.GetJob(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Job not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":       job.ID,
		"status":   job.Status,
		"progress": job.Progress,
		"result":   job.Result,
		"error":    jobError(job.Status, job.Result),
	})
}

// jobError surfaces the result field as an error message for failed jobs.
func jobError(status, result string) string {
	if status == "failed" {
		return result
	}
	return ""
}
