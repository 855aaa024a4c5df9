package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"invoicebooks/internal/models"
)

// CreateBusiness inserts a business record and returns its ID.
func (db *DB) CreateBusiness(name string) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO businesses (id, name) VALUES (?, ?)`, id, name)
	if err != nil {
		return "", fmt.Errorf("insert business: %w", err)
	}
	return id, nil
}

// ListBusinesses returns all business records ordered by name.
func (db *DB) ListBusinesses() ([]models.BusinessRecord, error) {
	rows, err := db.Query(`SELECT id, name, created_at FROM businesses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query businesses: %w", err)
	}
	defer rows.Close()

	var businesses []models.BusinessRecord
	for rows.Next() {
		var b models.BusinessRecord
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

// GetBusiness returns a business record by ID.
func (db *DB) GetBusiness(id string) (*models.BusinessRecord, error) {
	var b models.BusinessRecord
	err := db.QueryRow(`SELECT id, name, created_at FROM businesses WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("business not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query business: %w", err)
	}
	return &b, nil
}

// DeleteBusiness removes a business record. Clients filed under it are kept;
// the resolver falls back for them until they are re-filed.
func (db *DB) DeleteBusiness(id string) error {
	result, err := db.Exec(`DELETE FROM businesses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("business not found")
	}
	return nil
}
