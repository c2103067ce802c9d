package devices

import (
	"context"

	"github.com/tuvarna/devicebackend/internal/server/models"
)

// Repository is the device store consumed by the registration service.
type Repository interface {
	// FindBySerialNumber returns the device with its owner joined, or
	// common.ErrNotFound.
	FindBySerialNumber(ctx context.Context, serialNumber string) (*models.Device, error)

	ExistsBySerialNumber(ctx context.Context, serialNumber string) (bool, error)
	Create(ctx context.Context, d *models.Device) error
	Update(ctx context.Context, d *models.Device) error
	DeleteBySerialNumber(ctx context.Context, serialNumber string) error

	// List returns one page of all devices in serial-number order.
	List(ctx context.Context, offset, limit int) ([]*models.Device, int64, error)

	// Search returns one page of devices whose serial number or owner
	// name/email/phone/address contains term, case-insensitively. An empty
	// term matches everything.
	Search(ctx context.Context, term string, offset, limit int) ([]*models.Device, int64, error)
}
