package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tuvarna/devicebackend/internal/server/models"
	"github.com/tuvarna/devicebackend/internal/server/repositories/repomanager"
)

// deviceChecker is the slice of DeviceService the dependent flows consume:
// an existence check that already answers not-registered on a miss.
type deviceChecker interface {
	IsDeviceExists(ctx context.Context, serialNumber string) (*models.Device, error)
}

// RenovationService records repairs against registered devices.
type RenovationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	devices     deviceChecker
}

// NewRenovationService constructs a RenovationService using repositories and
// the device existence check.
func NewRenovationService(db *sql.DB, m repomanager.RepositoryManager, devices deviceChecker) *RenovationService {
	return &RenovationService{
		db:          db,
		repomanager: m,
		devices:     devices,
	}
}

// Save records a renovation for a registered device. Description and date are
// stored exactly as supplied: an unset date stays unset and an empty
// description stays empty. The device check error passes through unchanged.
func (s *RenovationService) Save(ctx context.Context, serialNumber string, description *string, renovationDate *time.Time) (*models.Renovation, error) {
	device, err := s.devices.IsDeviceExists(ctx, serialNumber)
	if err != nil {
		return nil, err
	}

	renovation := &models.Renovation{
		ID:                 uuid.NewString(),
		DeviceSerialNumber: device.SerialNumber,
		Description:        description,
		RenovationDate:     renovationDate,
	}

	if err := s.repomanager.Renovations(s.db).Create(ctx, renovation); err != nil {
		return nil, fmt.Errorf("error creating renovation: %w", err)
	}
	return renovation, nil
}

// ListForDevice returns the repair history of a registered device, oldest
// first.
func (s *RenovationService) ListForDevice(ctx context.Context, serialNumber string) ([]*models.Renovation, error) {
	device, err := s.devices.IsDeviceExists(ctx, serialNumber)
	if err != nil {
		return nil, err
	}

	renovations, err := s.repomanager.Renovations(s.db).ListByDeviceSerialNumber(ctx, device.SerialNumber)
	if err != nil {
		return nil, fmt.Errorf("error listing renovations: %w", err)
	}
	return renovations, nil
}

// Delete removes a single renovation record.
func (s *RenovationService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Renovations(s.db).DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("error deleting renovation: %w", err)
	}
	return nil
}
