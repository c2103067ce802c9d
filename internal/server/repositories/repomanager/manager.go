package repomanager

import (
	"context"
	"database/sql"

	"github.com/tuvarna/devicebackend/internal/dbx"
	"github.com/tuvarna/devicebackend/internal/server/repositories/devices"
	"github.com/tuvarna/devicebackend/internal/server/repositories/passports"
	"github.com/tuvarna/devicebackend/internal/server/repositories/renovations"
	"github.com/tuvarna/devicebackend/internal/server/repositories/users"
)

// RepositoryManager vends store implementations bound to a DBTX, so services
// can run the same repositories against either the pool or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Passports(db dbx.DBTX) passports.Repository
	Devices(db dbx.DBTX) devices.Repository
	Renovations(db dbx.DBTX) renovations.Repository
	Users(db dbx.DBTX) users.Repository
}
