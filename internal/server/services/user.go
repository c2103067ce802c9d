package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tuvarna/devicebackend/internal/common"
	"github.com/tuvarna/devicebackend/internal/dbx"
	"github.com/tuvarna/devicebackend/internal/server/auth"
	"github.com/tuvarna/devicebackend/internal/server/config"
	"github.com/tuvarna/devicebackend/internal/server/models"
	"github.com/tuvarna/devicebackend/internal/server/paging"
	"github.com/tuvarna/devicebackend/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles owner accounts: registration (which also registers the
// owner's first device), login, profile and password updates, and the
// back-office user listing.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	devices               *DeviceService
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories, the device
// service and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, devices *DeviceService, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		devices:               devices,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// UserRegisterAttrs carries the registration form: the account fields plus
// the first device being registered to the new owner.
type UserRegisterAttrs struct {
	FullName     string
	Password     string
	Email        string
	Phone        string
	Address      string
	SerialNumber string
	PurchaseDate time.Time
}

// UserUpdateAttrs carries the mutable profile fields.
type UserUpdateAttrs struct {
	FullName string
	Email    string
	Phone    string
	Address  string
}

// Register creates an owner account and registers their device in one
// transaction. Email, phone and device serial number are checked for
// conflicts up front; the storage constraints back the same answers under
// concurrency.
func (s *UserService) Register(ctx context.Context, attrs UserRegisterAttrs) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if err := s.checkEmailFree(ctx, repo.GetByEmail, attrs.Email, 0); err != nil {
		return nil, err
	}
	if err := s.checkPhoneFree(ctx, repo.GetByPhone, attrs.Phone, 0); err != nil {
		return nil, err
	}
	if err := s.devices.AlreadyExist(ctx, attrs.SerialNumber); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(attrs.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		FullName:     attrs.FullName,
		Email:        attrs.Email,
		Phone:        attrs.Phone,
		Address:      attrs.Address,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrAlreadyExists) {
				return common.NewError(common.ErrAlreadyExists, "Email already taken")
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		user = created

		_, err = s.devices.registerDevice(ctx, tx, attrs.SerialNumber, attrs.PurchaseDate, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password for the account matching the username (email or
// phone) and mints an access token. A missing account and a wrong password
// give the same answer.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByEmailOrPhone(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.NewError(common.ErrUnauthorized, "Invalid credentials")
		}
		return "", nil, fmt.Errorf("error searching user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, common.NewError(common.ErrUnauthorized, "Invalid credentials")
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", nil, fmt.Errorf("error generating token: %w", err)
	}
	return token, user, nil
}

// GetUserByID returns the user or the not-found answer.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

// GetUserByUsername resolves an email or phone to the account it belongs to.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByEmailOrPhone(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

// GetUsers returns one page of non-admin users. A nil search term lists
// everyone.
func (s *UserService) GetUsers(ctx context.Context, searchTerm *string, page, size int) (*paging.Page[*models.User], error) {
	items, total, err := s.repomanager.Users(s.db).Search(ctx, searchTerm, paging.Offset(page, size), size)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return paging.NewPage(items, page, size, total), nil
}

// UpdateUser rewrites the profile fields. Email and phone must not belong to
// another account.
func (s *UserService) UpdateUser(ctx context.Context, id int64, attrs UserUpdateAttrs) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkEmailFree(ctx, repo.GetByEmail, attrs.Email, id); err != nil {
		return nil, err
	}
	if err := s.checkPhoneFree(ctx, repo.GetByPhone, attrs.Phone, id); err != nil {
		return nil, err
	}

	user.FullName = attrs.FullName
	user.Email = attrs.Email
	user.Phone = attrs.Phone
	user.Address = attrs.Address

	if err := repo.Update(ctx, user); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.NewError(common.ErrAlreadyExists, "Email already taken")
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the password after verifying the old one.
func (s *UserService) UpdatePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	repo := s.repomanager.Users(s.db)

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return common.NewError(common.ErrUnauthorized, "Old password didn't match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := repo.Update(ctx, user); err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

type userLookup func(ctx context.Context, value string) (*models.User, error)

// checkEmailFree fails when the email belongs to an account other than
// selfID (0 for registration, where no account exists yet).
func (s *UserService) checkEmailFree(ctx context.Context, lookup userLookup, email string, selfID int64) error {
	other, err := lookup(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("error searching user: %w", err)
	}
	if other.ID != selfID {
		return common.NewError(common.ErrAlreadyExists, "Email already taken")
	}
	return nil
}

func (s *UserService) checkPhoneFree(ctx context.Context, lookup userLookup, phone string, selfID int64) error {
	other, err := lookup(ctx, phone)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("error searching user: %w", err)
	}
	if other.ID != selfID {
		return common.NewError(common.ErrAlreadyExists, "Phone already taken")
	}
	return nil
}
