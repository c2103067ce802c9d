package passports

import (
	"context"

	"github.com/tuvarna/devicebackend/internal/server/models"
)

// Repository is the passport store consumed by the lifecycle service. The two
// Find* range queries form the serial-number range index: both are pure reads
// and return an empty slice when nothing matches.
type Repository interface {
	// FindOverlapping returns every passport whose serial_prefix matches the
	// given pattern (the pattern may carry a trailing LIKE wildcard) and whose
	// inclusive [from,to] window intersects [lo,hi].
	FindOverlapping(ctx context.Context, prefixPattern string, lo, hi int) ([]*models.Passport, error)

	// FindBySerialStartsWith returns every passport whose stored serial prefix
	// is a literal prefix of serialID, in storage (id) order. Matching is
	// case-sensitive: it inherits the database collation, which is the
	// documented behavior of serial resolution.
	FindBySerialStartsWith(ctx context.Context, serialID string) ([]*models.Passport, error)

	FindByID(ctx context.Context, id int64) (*models.Passport, error)
	Create(ctx context.Context, p *models.Passport) (*models.Passport, error)
	Update(ctx context.Context, p *models.Passport) error
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int) ([]*models.Passport, int64, error)
}
