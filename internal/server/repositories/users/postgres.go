// Package users provides the PostgreSQL-backed user store.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tuvarna/devicebackend/internal/common"
	"github.com/tuvarna/devicebackend/internal/dbx"
	"github.com/tuvarna/devicebackend/internal/server/models"
)

// PostgresRepository implements user storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, full_name, email, phone, address, password_hash, role`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Address, &u.PasswordHash, &u.Role)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
}

func (r *PostgresRepository) FindByEmailOrPhone(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 OR phone = $1`, username)
}

// Create inserts a user and returns it with the generated id. Email and phone
// uniqueness violations surface as common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (full_name, email, phone, address, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		u.FullName, u.Email, u.Phone, u.Address, u.PasswordHash, u.Role).Scan(&u.ID)
	if err != nil {
		if dbx.IsConflict(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET full_name = $2, email = $3, phone = $4, address = $5, password_hash = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		u.ID, u.FullName, u.Email, u.Phone, u.Address, u.PasswordHash)
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

// Search lists non-ADMIN users matching term (nil term matches everyone),
// ordered by full name.
func (r *PostgresRepository) Search(ctx context.Context, term *string, offset, limit int) ([]*models.User, int64, error) {
	filter := `WHERE role <> 'ADMIN'`
	args := []any{}
	if term != nil {
		filter += ` AND (full_name ILIKE '%' || $1 || '%'
			OR email ILIKE '%' || $1 || '%'
			OR phone ILIKE '%' || $1 || '%'
			OR address ILIKE '%' || $1 || '%')`
		args = append(args, *term)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users `+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY full_name OFFSET $%d LIMIT $%d`,
		userColumns, filter, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	result := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}
