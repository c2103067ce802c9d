// Package services contains server-side business logic. This file implements
// PassportService: passport lifecycle plus the serial-number range resolution
// the device flows depend on.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/tuvarna/devicebackend/internal/common"
	"github.com/tuvarna/devicebackend/internal/server/models"
	"github.com/tuvarna/devicebackend/internal/server/paging"
	"github.com/tuvarna/devicebackend/internal/server/repositories/repomanager"
)

// PassportService manages warranty passports. Each passport covers an
// inclusive serial-number window under a prefix, and windows under the same
// prefix must stay disjoint.
type PassportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewPassportService constructs a PassportService using repositories.
func NewPassportService(db *sql.DB, m repomanager.RepositoryManager) *PassportService {
	return &PassportService{
		db:          db,
		repomanager: m,
	}
}

// PassportAttrs carries the caller-supplied passport fields, shared by
// create and update.
type PassportAttrs struct {
	Name             string
	Model            string
	SerialPrefix     string
	FromSerialNumber int
	ToSerialNumber   int
	WarrantyMonths   int
}

// Create stores a new passport after verifying that no existing passport
// under the same prefix intersects the requested window.
func (s *PassportService) Create(ctx context.Context, attrs PassportAttrs) (*models.Passport, error) {
	repo := s.repomanager.Passports(s.db)

	overlapping, err := repo.FindOverlapping(ctx, attrs.SerialPrefix, attrs.FromSerialNumber, attrs.ToSerialNumber)
	if err != nil {
		return nil, fmt.Errorf("error searching passports: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, common.NewError(common.ErrAlreadyExists, "Serial number already exists")
	}

	passport := &models.Passport{
		Name:             attrs.Name,
		Model:            attrs.Model,
		SerialPrefix:     attrs.SerialPrefix,
		FromSerialNumber: attrs.FromSerialNumber,
		ToSerialNumber:   attrs.ToSerialNumber,
		WarrantyMonths:   attrs.WarrantyMonths,
	}

	created, err := repo.Create(ctx, passport)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			// lost the race to a concurrent insert; same answer as the check
			return nil, common.NewError(common.ErrAlreadyExists, "Serial number already exists")
		}
		return nil, fmt.Errorf("error creating passport: %w", err)
	}
	return created, nil
}

// Update rewrites an existing passport. The overlap check ignores the
// passport being updated, so shrinking or moving its own window is allowed.
func (s *PassportService) Update(ctx context.Context, id int64, attrs PassportAttrs) (*models.Passport, error) {
	repo := s.repomanager.Passports(s.db)

	passport, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "Passport not found")
		}
		return nil, fmt.Errorf("error searching passport: %w", err)
	}

	overlapping, err := repo.FindOverlapping(ctx, attrs.SerialPrefix, attrs.FromSerialNumber, attrs.ToSerialNumber)
	if err != nil {
		return nil, fmt.Errorf("error searching passports: %w", err)
	}
	for _, other := range overlapping {
		if other.ID != id {
			return nil, common.NewError(common.ErrAlreadyExists, "Serial number already exists")
		}
	}

	passport.Name = attrs.Name
	passport.Model = attrs.Model
	passport.SerialPrefix = attrs.SerialPrefix
	passport.FromSerialNumber = attrs.FromSerialNumber
	passport.ToSerialNumber = attrs.ToSerialNumber
	passport.WarrantyMonths = attrs.WarrantyMonths

	if err := repo.Update(ctx, passport); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.NewError(common.ErrAlreadyExists, "Serial number already exists")
		}
		return nil, fmt.Errorf("error updating passport: %w", err)
	}
	return passport, nil
}

// FindPassportByID returns the passport or (nil, nil) when it does not exist.
func (s *PassportService) FindPassportByID(ctx context.Context, id int64) (*models.Passport, error) {
	repo := s.repomanager.Passports(s.db)

	passport, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error searching passport: %w", err)
	}
	return passport, nil
}

// FindPassportBySerialID resolves a full device serial number to the single
// passport covering it: the prefix must literally start the serial number and
// the numeric tail must fall inside the passport's window. Candidates are
// tried in storage order and the first hit wins.
func (s *PassportService) FindPassportBySerialID(ctx context.Context, serialID string) (*models.Passport, error) {
	candidates, err := s.repomanager.Passports(s.db).FindBySerialStartsWith(ctx, serialID)
	if err != nil {
		return nil, fmt.Errorf("error searching passports: %w", err)
	}

	if number, ok := serialNumberTail(serialID); ok {
		for _, p := range candidates {
			if number >= p.FromSerialNumber && number <= p.ToSerialNumber {
				return p, nil
			}
		}
	}
	return nil, common.NewError(common.ErrNotFound, "Passport not found for serial number: "+serialID)
}

// GetPassportsBySerialPrefix returns every passport whose prefix starts the
// given serial id, without the numeric window check.
func (s *PassportService) GetPassportsBySerialPrefix(ctx context.Context, serialID string) ([]*models.Passport, error) {
	passports, err := s.repomanager.Passports(s.db).FindBySerialStartsWith(ctx, serialID)
	if err != nil {
		return nil, fmt.Errorf("error searching passports: %w", err)
	}
	return passports, nil
}

// GetPassports returns one page of passports. Page numbers are 1-based.
func (s *PassportService) GetPassports(ctx context.Context, page, size int) (*paging.Page[*models.Passport], error) {
	items, total, err := s.repomanager.Passports(s.db).List(ctx, paging.Offset(page, size), size)
	if err != nil {
		return nil, fmt.Errorf("error listing passports: %w", err)
	}
	return paging.NewPage(items, page, size, total), nil
}

// Delete removes a passport. Any storage failure (devices still referencing
// the passport included) collapses into a single operation-failed answer.
func (s *PassportService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Passports(s.db).DeleteByID(ctx, id); err != nil {
		return common.WrapError(common.ErrOperationFailed, "Can't delete passport", err)
	}
	return nil
}

// serialNumberTail extracts the longest run of trailing decimal digits from a
// serial number. It reports false when the serial number has no digit tail or
// the tail does not parse.
func serialNumberTail(serialID string) (int, bool) {
	i := len(serialID)
	for i > 0 && serialID[i-1] >= '0' && serialID[i-1] <= '9' {
		i--
	}
	if i == len(serialID) {
		return 0, false
	}
	n, err := strconv.Atoi(serialID[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}
