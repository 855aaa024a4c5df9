package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"invoicebooks/internal/models"
)

// CreateClient inserts a new client and returns its ID.
func (db *DB) CreateClient(c *models.Client) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO clients (id, name, email, phone, business, locations)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Email, c.Phone, c.Business, c.Locations)
	if err != nil {
		return "", fmt.Errorf("insert client: %w", err)
	}
	return c.ID, nil
}

// ListClients returns all clients ordered by business then name.
func (db *DB) ListClients() ([]models.Client, error) {
	rows, err := db.Query(`
		SELECT id, name, email, phone, business, locations, created_at
		FROM clients
		ORDER BY business, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Business, &c.Locations, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// GetClient returns a single client by ID.
func (db *DB) GetClient(id string) (*models.Client, error) {
	var c models.Client
	err := db.QueryRow(`
		SELECT id, name, email, phone, business, locations, created_at
		FROM clients WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Business, &c.Locations, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query client: %w", err)
	}
	return &c, nil
}

// UpdateClient replaces a client's mutable fields.
func (db *DB) UpdateClient(c *models.Client) error {
	result, err := db.Exec(`
		UPDATE clients SET name = ?, email = ?, phone = ?, business = ?, locations = ?
		WHERE id = ?
	`, c.Name, c.Email, c.Phone, c.Business, c.Locations, c.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("client not found")
	}
	return nil
}

// DeleteClient removes a client.
func (db *DB) DeleteClient(id string) error {
	result, err := db.Exec(`DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("client not found")
	}
	return nil
}

// LoadDirectory builds the pipeline's client directory from the clients
// table, keyed by each client's business field. The field historically holds
// either a business id or a business name; the resolver copes with both, so
// the rows are grouped verbatim.
func (db *DB) LoadDirectory() (models.Directory, error) {
	clients, err := db.ListClients()
	if err != nil {
		return nil, err
	}
	dir := make(models.Directory)
	for _, c := range clients {
		dir[c.Business] = append(dir[c.Business], c)
	}
	return dir, nil
}
