package handlers

import (
	"encoding/json"
	"net/http"

	"invoicebooks/internal/logger"
	"invoicebooks/internal/models"
)

func clientJSON(c models.Client) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"email":      c.Email,
		"phone":      c.Phone,
		"business":   c.Business,
		"locations":  c.Locations,
		"created_at": c.CreatedAt,
	}
}

type clientBody struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Business  string `json:"business"`
	Locations string `json:"locations"`
}

// ClientsList returns the full client directory.
func (h *Handler) ClientsList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.db.ListClients()
	if err != nil {
		dbError(w, r, "client_list_error", err)
		return
	}
	out := make([]map[string]any, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientJSON(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"clients": out})
}

// ClientsCreate adds a client to the directory.
func (h *Handler) ClientsCreate(w http.ResponseWriter, r *http.Request) {
	var body clientBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	id, err := h.db.CreateClient(&models.Client{
		Name:      body.Name,
		Email:     body.Email,
		Phone:     body.Phone,
		Business:  body.Business,
		Locations: body.Locations,
	})
	if err != nil {
		dbError(w, r, "client_create_error", err)
		return
	}

	logger.FromContext(r.Context()).Info("client_created", "client_id", id, "name", body.Name)
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

// ClientsShow returns a single client.
func (h *Handler) ClientsShow(w http.ResponseWriter, r *http.Request) {
	client, err := h.db.GetClient(r.PathValue("id"))
	if err != nil {
		dbError(w, r, "client_get_error", err)
		return
	}
	respondJSON(w, http.StatusOK, clientJSON(*client))
}

// ClientsUpdate replaces a client's fields.
func (h *Handler) ClientsUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body clientBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	err := h.db.UpdateClient(&models.Client{
		ID:        id,
		Name:      body.Name,
		Email:     body.Email,
		Phone:     body.Phone,
		Business:  body.Business,
		Locations: body.Locations,
	})
	if err != nil {
		dbError(w, r, "client_update_error", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ClientsDelete removes a client from the directory.
func (h *Handler) ClientsDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.db.DeleteClient(id); err != nil {
		dbError(w, r, "client_delete_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("client_deleted", "client_id", id)
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// BusinessesList returns the managed business records.
func (h *Handler) BusinessesList(w http.ResponseWriter, r *http.Request) {
	businesses, err := h.db.ListBusinesses()
	if err != nil {
		dbError(w, r, "business_list_error", err)
		return
	}
	out := make([]map[string]any, 0, len(businesses))
	for _, b := range businesses {
		out = append(out, map[string]any{
			"id":         b.ID,
			"name":       b.Name,
			"created_at": b.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"businesses": out})
}

// BusinessesCreate adds a business record.
func (h *Handler) BusinessesCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	id, err := h.db.CreateBusiness(body.Name)
	if err != nil {
		dbError(w, r, "business_create_error", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

// BusinessesDelete removes a business record.
func (h *Handler) BusinessesDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteBusiness(r.PathValue("id")); err != nil {
		dbError(w, r, "business_delete_error", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
