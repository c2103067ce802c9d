// Package renovations provides the PostgreSQL-backed renovation store.
package renovations

import (
	"context"
	"fmt"

	"github.com/tuvarna/devicebackend/internal/dbx"
	"github.com/tuvarna/devicebackend/internal/server/models"
)

// PostgresRepository implements renovation storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a renovation. Description and date are stored exactly as
// supplied; database errors propagate with their original detail.
func (r *PostgresRepository) Create(ctx context.Context, ren *models.Renovation) error {
	query := `
		INSERT INTO renovations (id, device_serial_number, description, renovation_date)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		ren.ID, ren.DeviceSerialNumber, ren.Description, ren.RenovationDate)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM renovations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByDeviceSerialNumber(ctx context.Context, serialNumber string) ([]*models.Renovation, error) {
	query := `
		SELECT id, device_serial_number, description, renovation_date
		FROM renovations
		WHERE device_serial_number = $1
		ORDER BY renovation_date NULLS LAST, id
	`
	rows, err := r.db.QueryContext(ctx, query, serialNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to select renovations: %w", err)
	}
	defer rows.Close()

	result := []*models.Renovation{}
	for rows.Next() {
		var ren models.Renovation
		if err := rows.Scan(&ren.ID, &ren.DeviceSerialNumber, &ren.Description, &ren.RenovationDate); err != nil {
			return nil, err
		}
		result = append(result, &ren)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
