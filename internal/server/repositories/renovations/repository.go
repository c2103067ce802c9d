package renovations

import (
	"context"

	"github.com/tuvarna/devicebackend/internal/server/models"
)

// Repository is the renovation store. Renovations are only ever created
// attached to an existing device; bulk removal happens through the device
// cascade, not through this interface.
type Repository interface {
	Create(ctx context.Context, r *models.Renovation) error
	DeleteByID(ctx context.Context, id string) error
	ListByDeviceSerialNumber(ctx context.Context, serialNumber string) ([]*models.Renovation, error)
}
