package services

import (
	"context"
	"database/sql"

	"github.com/tuvarna/devicebackend/internal/dbx"
	"github.com/tuvarna/devicebackend/internal/server/models"
	"github.com/tuvarna/devicebackend/internal/server/repositories/devices"
	"github.com/tuvarna/devicebackend/internal/server/repositories/passports"
	"github.com/tuvarna/devicebackend/internal/server/repositories/renovations"
	"github.com/tuvarna/devicebackend/internal/server/repositories/users"
)

// fakePassportRepo implements passports.Repository with per-method hooks.
type fakePassportRepo struct {
	findOverlapping        func(ctx context.Context, prefixPattern string, lo, hi int) ([]*models.Passport, error)
	findBySerialStartsWith func(ctx context.Context, serialID string) ([]*models.Passport, error)
	findByID               func(ctx context.Context, id int64) (*models.Passport, error)
	create                 func(ctx context.Context, p *models.Passport) (*models.Passport, error)
	update                 func(ctx context.Context, p *models.Passport) error
	deleteByID             func(ctx context.Context, id int64) error
	list                   func(ctx context.Context, offset, limit int) ([]*models.Passport, int64, error)
}

func (f *fakePassportRepo) FindOverlapping(ctx context.Context, prefixPattern string, lo, hi int) ([]*models.Passport, error) {
	return f.findOverlapping(ctx, prefixPattern, lo, hi)
}

func (f *fakePassportRepo) FindBySerialStartsWith(ctx context.Context, serialID string) ([]*models.Passport, error) {
	return f.findBySerialStartsWith(ctx, serialID)
}

func (f *fakePassportRepo) FindByID(ctx context.Context, id int64) (*models.Passport, error) {
	return f.findByID(ctx, id)
}

func (f *fakePassportRepo) Create(ctx context.Context, p *models.Passport) (*models.Passport, error) {
	return f.create(ctx, p)
}

func (f *fakePassportRepo) Update(ctx context.Context, p *models.Passport) error {
	return f.update(ctx, p)
}

func (f *fakePassportRepo) DeleteByID(ctx context.Context, id int64) error {
	return f.deleteByID(ctx, id)
}

func (f *fakePassportRepo) List(ctx context.Context, offset, limit int) ([]*models.Passport, int64, error) {
	return f.list(ctx, offset, limit)
}

// fakeDeviceRepo implements devices.Repository with per-method hooks.
type fakeDeviceRepo struct {
	findBySerialNumber   func(ctx context.Context, serialNumber string) (*models.Device, error)
	existsBySerialNumber func(ctx context.Context, serialNumber string) (bool, error)
	create               func(ctx context.Context, d *models.Device) error
	update               func(ctx context.Context, d *models.Device) error
	deleteBySerialNumber func(ctx context.Context, serialNumber string) error
	list                 func(ctx context.Context, offset, limit int) ([]*models.Device, int64, error)
	search               func(ctx context.Context, term string, offset, limit int) ([]*models.Device, int64, error)
}

func (f *fakeDeviceRepo) FindBySerialNumber(ctx context.Context, serialNumber string) (*models.Device, error) {
	return f.findBySerialNumber(ctx, serialNumber)
}

func (f *fakeDeviceRepo) ExistsBySerialNumber(ctx context.Context, serialNumber string) (bool, error) {
	return f.existsBySerialNumber(ctx, serialNumber)
}

func (f *fakeDeviceRepo) Create(ctx context.Context, d *models.Device) error {
	return f.create(ctx, d)
}

func (f *fakeDeviceRepo) Update(ctx context.Context, d *models.Device) error {
	return f.update(ctx, d)
}

func (f *fakeDeviceRepo) DeleteBySerialNumber(ctx context.Context, serialNumber string) error {
	return f.deleteBySerialNumber(ctx, serialNumber)
}

func (f *fakeDeviceRepo) List(ctx context.Context, offset, limit int) ([]*models.Device, int64, error) {
	return f.list(ctx, offset, limit)
}

func (f *fakeDeviceRepo) Search(ctx context.Context, term string, offset, limit int) ([]*models.Device, int64, error) {
	return f.search(ctx, term, offset, limit)
}

// fakeRenovationRepo implements renovations.Repository with per-method hooks.
type fakeRenovationRepo struct {
	create                   func(ctx context.Context, r *models.Renovation) error
	deleteByID               func(ctx context.Context, id string) error
	listByDeviceSerialNumber func(ctx context.Context, serialNumber string) ([]*models.Renovation, error)
}

func (f *fakeRenovationRepo) Create(ctx context.Context, r *models.Renovation) error {
	return f.create(ctx, r)
}

func (f *fakeRenovationRepo) DeleteByID(ctx context.Context, id string) error {
	return f.deleteByID(ctx, id)
}

func (f *fakeRenovationRepo) ListByDeviceSerialNumber(ctx context.Context, serialNumber string) ([]*models.Renovation, error) {
	return f.listByDeviceSerialNumber(ctx, serialNumber)
}

// fakeUserRepo implements users.Repository with per-method hooks.
type fakeUserRepo struct {
	findByID           func(ctx context.Context, id int64) (*models.User, error)
	getByEmail         func(ctx context.Context, email string) (*models.User, error)
	getByPhone         func(ctx context.Context, phone string) (*models.User, error)
	findByEmailOrPhone func(ctx context.Context, username string) (*models.User, error)
	create             func(ctx context.Context, u *models.User) (*models.User, error)
	update             func(ctx context.Context, u *models.User) error
	search             func(ctx context.Context, term *string, offset, limit int) ([]*models.User, int64, error)
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return f.findByID(ctx, id)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getByEmail(ctx, email)
}

func (f *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return f.getByPhone(ctx, phone)
}

func (f *fakeUserRepo) FindByEmailOrPhone(ctx context.Context, username string) (*models.User, error) {
	return f.findByEmailOrPhone(ctx, username)
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return f.create(ctx, u)
}

func (f *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	return f.update(ctx, u)
}

func (f *fakeUserRepo) Search(ctx context.Context, term *string, offset, limit int) ([]*models.User, int64, error) {
	return f.search(ctx, term, offset, limit)
}

// fakeRepoManager vends the fakes above regardless of the DBTX handed in.
type fakeRepoManager struct {
	passports   *fakePassportRepo
	devices     *fakeDeviceRepo
	renovations *fakeRenovationRepo
	users       *fakeUserRepo
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeRepoManager) Passports(db dbx.DBTX) passports.Repository { return m.passports }

func (m *fakeRepoManager) Devices(db dbx.DBTX) devices.Repository { return m.devices }

func (m *fakeRepoManager) Renovations(db dbx.DBTX) renovations.Repository { return m.renovations }

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return m.users }

// fakeResolver implements passportResolver with a hook.
type fakeResolver struct {
	findPassportBySerialID func(ctx context.Context, serialID string) (*models.Passport, error)
}

func (f *fakeResolver) FindPassportBySerialID(ctx context.Context, serialID string) (*models.Passport, error) {
	return f.findPassportBySerialID(ctx, serialID)
}

// fakeDeviceChecker implements deviceChecker with a hook.
type fakeDeviceChecker struct {
	isDeviceExists func(ctx context.Context, serialNumber string) (*models.Device, error)
}

func (f *fakeDeviceChecker) IsDeviceExists(ctx context.Context, serialNumber string) (*models.Device, error) {
	return f.isDeviceExists(ctx, serialNumber)
}
