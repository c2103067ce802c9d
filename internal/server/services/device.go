package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tuvarna/devicebackend/internal/common"
	"github.com/tuvarna/devicebackend/internal/dbx"
	"github.com/tuvarna/devicebackend/internal/server/models"
	"github.com/tuvarna/devicebackend/internal/server/paging"
	"github.com/tuvarna/devicebackend/internal/server/repositories/repomanager"
)

// ownerWarrantyBonusMonths is the extra coverage granted when a device is
// registered to a named owner instead of anonymously.
const ownerWarrantyBonusMonths = 12

// warrantyExpiration derives the warranty end date from the purchase date and
// the passport's base coverage, with the owner bonus applied on top.
func warrantyExpiration(purchaseDate time.Time, warrantyMonths int, hasOwner bool) time.Time {
	months := warrantyMonths
	if hasOwner {
		months += ownerWarrantyBonusMonths
	}
	return purchaseDate.AddDate(0, months, 0)
}

// passportResolver is the slice of PassportService the device flows consume.
type passportResolver interface {
	FindPassportBySerialID(ctx context.Context, serialID string) (*models.Passport, error)
}

// DeviceService registers devices against passports and derives their
// warranty expiration dates.
type DeviceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	passports   passportResolver
}

// NewDeviceService constructs a DeviceService using repositories and the
// passport resolver.
func NewDeviceService(db *sql.DB, m repomanager.RepositoryManager, passports passportResolver) *DeviceService {
	return &DeviceService{
		db:          db,
		repomanager: m,
		passports:   passports,
	}
}

// DeviceUpdateAttrs carries the mutable device fields. A nil Comment clears
// the stored comment.
type DeviceUpdateAttrs struct {
	PurchaseDate time.Time
	Comment      *string
}

// RegisterDevice resolves the serial number to a passport, computes the
// warranty expiration and stores the device. Any resolution failure collapses
// into the invalid-serial-number answer so callers cannot distinguish an
// unknown prefix from an out-of-range tail.
func (s *DeviceService) RegisterDevice(ctx context.Context, serialNumber string, purchaseDate time.Time, owner *models.User) (*models.Device, error) {
	return s.registerDevice(ctx, s.db, serialNumber, purchaseDate, owner)
}

// registerDevice is RegisterDevice bound to an explicit DBTX so user
// registration can run it inside its transaction.
func (s *DeviceService) registerDevice(ctx context.Context, db dbx.DBTX, serialNumber string, purchaseDate time.Time, owner *models.User) (*models.Device, error) {
	passport, err := s.passports.FindPassportBySerialID(ctx, serialNumber)
	if err != nil {
		return nil, common.WrapError(common.ErrInvalidSerialNumber, "Invalid serial number", err)
	}

	device := &models.Device{
		SerialNumber:           serialNumber,
		PassportID:             passport.ID,
		PurchaseDate:           purchaseDate,
		WarrantyExpirationDate: warrantyExpiration(purchaseDate, passport.WarrantyMonths, owner != nil),
	}
	if owner != nil {
		device.OwnerID = &owner.ID
		device.Owner = owner
	}

	if err := s.repomanager.Devices(db).Create(ctx, device); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.NewError(common.ErrAlreadyExists, "Device already registered")
		}
		return nil, fmt.Errorf("error creating device: %w", err)
	}
	return device, nil
}

// RegisterNewDevice registers a device to an existing user identified by id.
func (s *DeviceService) RegisterNewDevice(ctx context.Context, serialNumber string, purchaseDate time.Time, ownerID int64) (*models.Device, error) {
	if err := s.AlreadyExist(ctx, serialNumber); err != nil {
		return nil, err
	}

	owner, err := s.repomanager.Users(s.db).FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	return s.RegisterDevice(ctx, serialNumber, purchaseDate, owner)
}

// AddAnonymousDevice registers a device without an owner; the warranty bonus
// does not apply.
func (s *DeviceService) AddAnonymousDevice(ctx context.Context, serialNumber string, purchaseDate time.Time) (*models.Device, error) {
	if err := s.AlreadyExist(ctx, serialNumber); err != nil {
		return nil, err
	}
	return s.RegisterDevice(ctx, serialNumber, purchaseDate, nil)
}

// AlreadyExist fails when a device with the serial number is already
// registered. The check runs before passport resolution so a duplicate
// serial answers as a duplicate, never as an invalid serial number.
func (s *DeviceService) AlreadyExist(ctx context.Context, serialNumber string) error {
	exists, err := s.repomanager.Devices(s.db).ExistsBySerialNumber(ctx, serialNumber)
	if err != nil {
		return fmt.Errorf("error searching device: %w", err)
	}
	if exists {
		return common.NewError(common.ErrAlreadyExists, "Device already registered")
	}
	return nil
}

// FindDevice returns the device with its owner, or (nil, nil) when no device
// carries the serial number.
func (s *DeviceService) FindDevice(ctx context.Context, serialNumber string) (*models.Device, error) {
	device, err := s.repomanager.Devices(s.db).FindBySerialNumber(ctx, serialNumber)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error searching device: %w", err)
	}
	return device, nil
}

// IsDeviceExists returns the device or the not-registered answer dependent
// flows (renovations, attachments) surface to their callers.
func (s *DeviceService) IsDeviceExists(ctx context.Context, serialNumber string) (*models.Device, error) {
	device, err := s.repomanager.Devices(s.db).FindBySerialNumber(ctx, serialNumber)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotRegistered, "Device not registered")
		}
		return nil, fmt.Errorf("error searching device: %w", err)
	}
	return device, nil
}

// UpdateDevice rewrites the purchase date and comment of a registered device
// and recomputes the warranty expiration from the device's passport, keeping
// the owner bonus if the device has an owner.
func (s *DeviceService) UpdateDevice(ctx context.Context, serialNumber string, attrs DeviceUpdateAttrs) (*models.Device, error) {
	repo := s.repomanager.Devices(s.db)

	device, err := repo.FindBySerialNumber(ctx, serialNumber)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "Device not found")
		}
		return nil, fmt.Errorf("error searching device: %w", err)
	}

	passport, err := s.repomanager.Passports(s.db).FindByID(ctx, device.PassportID)
	if err != nil {
		return nil, fmt.Errorf("error searching passport: %w", err)
	}

	device.PurchaseDate = attrs.PurchaseDate
	device.WarrantyExpirationDate = warrantyExpiration(attrs.PurchaseDate, passport.WarrantyMonths, device.OwnerID != nil)
	device.Comment = attrs.Comment

	if err := repo.Update(ctx, device); err != nil {
		return nil, fmt.Errorf("error updating device: %w", err)
	}
	return device, nil
}

// DeleteDevice removes a device together with its renovations. Any storage
// failure collapses into a single operation-failed answer.
func (s *DeviceService) DeleteDevice(ctx context.Context, serialNumber string) error {
	if err := s.repomanager.Devices(s.db).DeleteBySerialNumber(ctx, serialNumber); err != nil {
		return common.WrapError(common.ErrOperationFailed, "Can't delete device", err)
	}
	return nil
}

// GetDevices returns one page of devices. A nil search term lists everything;
// a non-nil term (the empty string included) filters by serial number and
// owner contact fields.
func (s *DeviceService) GetDevices(ctx context.Context, searchTerm *string, page, size int) (*paging.Page[*models.Device], error) {
	repo := s.repomanager.Devices(s.db)

	var (
		items []*models.Device
		total int64
		err   error
	)
	if searchTerm == nil {
		items, total, err = repo.List(ctx, paging.Offset(page, size), size)
	} else {
		items, total, err = repo.Search(ctx, *searchTerm, paging.Offset(page, size), size)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing devices: %w", err)
	}
	return paging.NewPage(items, page, size, total), nil
}
