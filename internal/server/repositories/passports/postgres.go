// Package passports provides the PostgreSQL-backed passport store, including
// the serial-number range index queries used for overlap validation and
// serial resolution.
package passports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tuvarna/devicebackend/internal/common"
	"github.com/tuvarna/devicebackend/internal/dbx"
	"github.com/tuvarna/devicebackend/internal/server/models"
)

// PostgresRepository implements passport storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const passportColumns = `id, name, model, serial_prefix, from_serial_number, to_serial_number, warranty_months`

func scanPassport(row interface{ Scan(dest ...any) error }) (*models.Passport, error) {
	var p models.Passport
	err := row.Scan(&p.ID, &p.Name, &p.Model, &p.SerialPrefix,
		&p.FromSerialNumber, &p.ToSerialNumber, &p.WarrantyMonths)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) queryPassports(ctx context.Context, query string, args ...any) ([]*models.Passport, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select passports: %w", err)
	}
	defer rows.Close()

	result := []*models.Passport{}
	for rows.Next() {
		p, err := scanPassport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindOverlapping matches the stored serial_prefix against the given LIKE
// pattern and selects passports whose inclusive window intersects [lo,hi]
// (standard interval overlap: from <= hi AND to >= lo).
func (r *PostgresRepository) FindOverlapping(ctx context.Context, prefixPattern string, lo, hi int) ([]*models.Passport, error) {
	query := `
		SELECT ` + passportColumns + ` FROM passports
		WHERE serial_prefix LIKE $1
		  AND from_serial_number <= $3
		  AND to_serial_number >= $2
		ORDER BY id
	`
	return r.queryPassports(ctx, query, prefixPattern, lo, hi)
}

// FindBySerialStartsWith selects passports whose serial_prefix is a literal
// prefix of serialID. Comparison is case-sensitive (database collation).
func (r *PostgresRepository) FindBySerialStartsWith(ctx context.Context, serialID string) ([]*models.Passport, error) {
	query := `
		SELECT ` + passportColumns + ` FROM passports
		WHERE $1 LIKE serial_prefix || '%'
		ORDER BY id
	`
	return r.queryPassports(ctx, query, serialID)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Passport, error) {
	query := `SELECT ` + passportColumns + ` FROM passports WHERE id = $1`

	p, err := scanPassport(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Create inserts a passport and returns it with the generated id. A conflict
// with the range-disjointness constraint surfaces as common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Passport) (*models.Passport, error) {
	query := `
		INSERT INTO passports (name, model, serial_prefix, from_serial_number, to_serial_number, warranty_months)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Model, p.SerialPrefix, p.FromSerialNumber, p.ToSerialNumber, p.WarrantyMonths).Scan(&p.ID)
	if err != nil {
		if dbx.IsConflict(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Update rewrites all mutable fields of the passport identified by p.ID.
func (r *PostgresRepository) Update(ctx context.Context, p *models.Passport) error {
	query := `
		UPDATE passports
		SET name = $2, model = $3, serial_prefix = $4,
		    from_serial_number = $5, to_serial_number = $6, warranty_months = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Model, p.SerialPrefix, p.FromSerialNumber, p.ToSerialNumber, p.WarrantyMonths)
	if err != nil {
		if dbx.IsConflict(err) {
			return common.ErrAlreadyExists
		}
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

func (r *PostgresRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM passports WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns one page of passports in id order together with the total
// passport count.
func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*models.Passport, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM passports`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + passportColumns + ` FROM passports ORDER BY id OFFSET $1 LIMIT $2`
	items, err := r.queryPassports(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
