// Package devices provides the PostgreSQL-backed device store, including the
// joined owner search used by the back-office device listing.
package devices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tuvarna/devicebackend/internal/common"
	"github.com/tuvarna/devicebackend/internal/dbx"
	"github.com/tuvarna/devicebackend/internal/server/models"
)

// PostgresRepository implements device storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const deviceSelect = `
	SELECT d.serial_number, d.passport_id, d.owner_id,
	       d.purchase_date, d.warranty_expiration_date, d.comment,
	       u.full_name, u.email, u.phone, u.address
	FROM devices d
	LEFT JOIN users u ON u.id = d.owner_id
`

// searchFilter matches serial number or any joined owner contact field,
// case-insensitively. An empty term degenerates to match-all.
const searchFilter = `
	WHERE d.serial_number ILIKE '%' || $1 || '%'
	   OR u.full_name ILIKE '%' || $1 || '%'
	   OR u.email ILIKE '%' || $1 || '%'
	   OR u.phone ILIKE '%' || $1 || '%'
	   OR u.address ILIKE '%' || $1 || '%'
`

func scanDevice(row interface{ Scan(dest ...any) error }) (*models.Device, error) {
	var (
		d        models.Device
		ownerID  sql.NullInt64
		comment  sql.NullString
		fullName sql.NullString
		email    sql.NullString
		phone    sql.NullString
		address  sql.NullString
	)
	err := row.Scan(&d.SerialNumber, &d.PassportID, &ownerID,
		&d.PurchaseDate, &d.WarrantyExpirationDate, &comment,
		&fullName, &email, &phone, &address)
	if err != nil {
		return nil, err
	}
	if comment.Valid {
		d.Comment = &comment.String
	}
	if ownerID.Valid {
		d.OwnerID = &ownerID.Int64
		d.Owner = &models.User{
			ID:       ownerID.Int64,
			FullName: fullName.String,
			Email:    email.String,
			Phone:    phone.String,
			Address:  address.String,
		}
	}
	return &d, nil
}

func (r *PostgresRepository) queryDevices(ctx context.Context, query string, args ...any) ([]*models.Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select devices: %w", err)
	}
	defer rows.Close()

	result := []*models.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) FindBySerialNumber(ctx context.Context, serialNumber string) (*models.Device, error) {
	query := deviceSelect + ` WHERE d.serial_number = $1`

	d, err := scanDevice(r.db.QueryRowContext(ctx, query, serialNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) ExistsBySerialNumber(ctx context.Context, serialNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM devices WHERE serial_number = $1)`, serialNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Create inserts a device. A duplicate serial number trips the primary key
// and surfaces as common.ErrAlreadyExists, covering the race the preceding
// existence check cannot.
func (r *PostgresRepository) Create(ctx context.Context, d *models.Device) error {
	query := `
		INSERT INTO devices (serial_number, passport_id, owner_id, purchase_date, warranty_expiration_date, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		d.SerialNumber, d.PassportID, d.OwnerID, d.PurchaseDate, d.WarrantyExpirationDate, d.Comment)
	if err != nil {
		if dbx.IsConflict(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields (purchase date, expiration, comment) of
// the device identified by serial number.
func (r *PostgresRepository) Update(ctx context.Context, d *models.Device) error {
	query := `
		UPDATE devices
		SET purchase_date = $2, warranty_expiration_date = $3, comment = $4
		WHERE serial_number = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		d.SerialNumber, d.PurchaseDate, d.WarrantyExpirationDate, d.Comment)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteBySerialNumber removes the device; renovations go with it via the
// ON DELETE CASCADE constraint. Deleting an absent serial is a no-op.
func (r *PostgresRepository) DeleteBySerialNumber(ctx context.Context, serialNumber string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE serial_number = $1`, serialNumber); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*models.Device, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM devices`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := deviceSelect + ` ORDER BY d.serial_number OFFSET $1 LIMIT $2`
	items, err := r.queryDevices(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) Search(ctx context.Context, term string, offset, limit int) ([]*models.Device, int64, error) {
	countQuery := `SELECT count(*) FROM devices d LEFT JOIN users u ON u.id = d.owner_id ` + searchFilter

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, term).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := deviceSelect + searchFilter + ` ORDER BY d.serial_number OFFSET $2 LIMIT $3`
	items, err := r.queryDevices(ctx, query, term, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
