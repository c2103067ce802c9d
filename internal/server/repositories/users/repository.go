package users

import (
	"context"

	"github.com/tuvarna/devicebackend/internal/server/models"
)

// Repository is the user store. The device core consumes only FindByID; the
// remaining operations back user registration, profile updates and the
// back-office listing.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)

	// FindByEmailOrPhone resolves a login username that may be either contact
	// field, matched exactly.
	FindByEmailOrPhone(ctx context.Context, username string) (*models.User, error)

	Create(ctx context.Context, u *models.User) (*models.User, error)
	Update(ctx context.Context, u *models.User) error

	// Search returns one page of non-ADMIN users whose name, email, phone or
	// address contains term case-insensitively. A nil term matches everyone.
	Search(ctx context.Context, term *string, offset, limit int) ([]*models.User, int64, error)
}
